package repository

import (
	"context"
	"database/sql"

	"teatime-live/internal/db/sqlc/gen"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a roster repository that reads board_participants.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// IsMember reports whether userID is on the roster of boardID.
func (r *PostgresRepository) IsMember(ctx context.Context, boardID int64, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return r.queries.IsBoardParticipant(ctx, gen.IsBoardParticipantParams{BoardID: boardID, UserID: userID})
}

// Add puts userID on the roster of boardID.
func (r *PostgresRepository) Add(ctx context.Context, boardID int64, userID string) error {
	return r.queries.AddBoardParticipant(ctx, gen.AddBoardParticipantParams{BoardID: boardID, UserID: userID})
}
