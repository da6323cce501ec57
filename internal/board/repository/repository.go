package repository

import (
	"context"

	"teatime-live/internal/board/domain"
)

// Repository reads boards. Boards are written by the board subsystem; Create exists for seeding.
type Repository interface {
	// GetByID returns the board, or nil if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Board, error)
	Create(ctx context.Context, b *domain.Board) error
}
