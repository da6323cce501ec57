package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"teatime-live/internal/db/sqlc/gen"
	"teatime-live/internal/live/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
	nowF    func() time.Time
}

// NewPostgresRepository returns a registry backed by the live_sessions table.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db), nowF: time.Now}
}

func (r *PostgresRepository) Exists(ctx context.Context, boardID int64) (bool, error) {
	return r.queries.LiveSessionExistsForBoard(ctx, boardID)
}

// Create inserts the session with ON CONFLICT DO NOTHING; no returned row means the board is taken.
func (r *PostgresRepository) Create(ctx context.Context, boardID int64, sessionID string) (*domain.Session, error) {
	s, err := r.queries.CreateLiveSession(ctx, gen.CreateLiveSessionParams{
		ID:        sessionID,
		BoardID:   boardID,
		CreatedAt: r.nowF().UTC(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create live session: %w", err)
	}
	return genSessionToDomain(&s), nil
}

func (r *PostgresRepository) Get(ctx context.Context, boardID int64) (*domain.Session, error) {
	s, err := r.queries.GetLiveSessionByBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return genSessionToDomain(&s), nil
}

func (r *PostgresRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Session, error) {
	s, err := r.queries.GetLiveSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return genSessionToDomain(&s), nil
}

func (r *PostgresRepository) Remove(ctx context.Context, sessionID string) error {
	_, err := r.queries.DeleteLiveSession(ctx, sessionID)
	return err
}

func genSessionToDomain(s *gen.LiveSession) *domain.Session {
	if s == nil {
		return nil
	}
	return &domain.Session{ID: s.ID, BoardID: s.BoardID, CreatedAt: s.CreatedAt}
}
