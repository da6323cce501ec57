package repository

import "context"

// Repository answers roster questions for boards.
type Repository interface {
	// IsMember reports whether userID is on the roster of boardID.
	IsMember(ctx context.Context, boardID int64, userID string) (bool, error)
	// Add puts userID on the roster. Adding an existing member is a no-op.
	Add(ctx context.Context, boardID int64, userID string) error
}
