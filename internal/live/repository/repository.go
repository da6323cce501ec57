// Package repository is the session registry: the shadow record of which boards have an open live room.
package repository

import (
	"context"

	"teatime-live/internal/live/domain"
)

// Registry defines persistence for live sessions. At most one session exists per board.
type Registry interface {
	// Exists reports whether boardID has an open session.
	Exists(ctx context.Context, boardID int64) (bool, error)
	// Create records a new session atomically. Returns domain.ErrConflict when boardID already has one.
	Create(ctx context.Context, boardID int64, sessionID string) (*domain.Session, error)
	// Get returns the session for boardID or domain.ErrSessionNotFound.
	Get(ctx context.Context, boardID int64) (*domain.Session, error)
	// GetBySessionID returns the session with the given room name or domain.ErrSessionNotFound.
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Session, error)
	// Remove deletes the session. Removing an absent session is a no-op.
	Remove(ctx context.Context, sessionID string) error
}
