package repository

import (
	"context"
	"database/sql"
	"errors"

	"teatime-live/internal/audit/domain"
	"teatime-live/internal/db/sqlc/gen"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	a, err := r.queries.GetAuditLog(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genAuditLogToDomain(&a), nil
}

// ListByBoard returns the board's audit logs, newest first.
func (r *PostgresRepository) ListByBoard(ctx context.Context, boardID int64, limit, offset int32) ([]*domain.AuditLog, error) {
	list, err := r.queries.ListAuditLogsByBoard(ctx, gen.ListAuditLogsByBoardParams{
		BoardID: sql.NullInt64{Int64: boardID, Valid: true},
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.AuditLog, len(list))
	for i := range list {
		out[i] = genAuditLogToDomain(&list[i])
	}
	return out, nil
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.queries.CreateAuditLog(ctx, gen.CreateAuditLogParams{
		ID:        a.ID,
		BoardID:   sql.NullInt64{Int64: a.BoardID, Valid: a.BoardID != 0},
		UserID:    sql.NullString{String: a.UserID, Valid: a.UserID != ""},
		Action:    a.Action,
		Resource:  a.Resource,
		Ip:        a.IP,
		Metadata:  sql.NullString{String: a.Metadata, Valid: a.Metadata != ""},
		CreatedAt: a.CreatedAt,
	})
	return err
}

func genAuditLogToDomain(a *gen.AuditLog) *domain.AuditLog {
	if a == nil {
		return nil
	}
	return &domain.AuditLog{
		ID:        a.ID,
		BoardID:   a.BoardID.Int64,
		UserID:    a.UserID.String,
		Action:    a.Action,
		Resource:  a.Resource,
		IP:        a.Ip,
		Metadata:  a.Metadata.String,
		CreatedAt: a.CreatedAt,
	}
}
