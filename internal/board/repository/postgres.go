package repository

import (
	"context"
	"database/sql"
	"errors"

	"teatime-live/internal/board/domain"
	"teatime-live/internal/db/sqlc/gen"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a board repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the board for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Board, error) {
	b, err := r.queries.GetBoard(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genBoardToDomain(&b), nil
}

// Create inserts b and sets its ID from the database.
func (r *PostgresRepository) Create(ctx context.Context, b *domain.Board) error {
	row, err := r.queries.CreateBoard(ctx, gen.CreateBoardParams{
		OwnerID:     b.OwnerID,
		Title:       b.Title,
		MaxAudience: int32(b.MaxAudience),
		BroadcastAt: b.BroadcastAt,
		EndsAt:      b.EndsAt,
		Activated:   b.Activated,
	})
	if err != nil {
		return err
	}
	b.ID = row.ID
	return nil
}

func genBoardToDomain(b *gen.Board) *domain.Board {
	if b == nil {
		return nil
	}
	return &domain.Board{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Title:       b.Title,
		MaxAudience: int(b.MaxAudience),
		BroadcastAt: b.BroadcastAt,
		EndsAt:      b.EndsAt,
		Activated:   b.Activated,
	}
}
