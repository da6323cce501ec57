package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"teatime-live/internal/audit/domain"
	auditrepo "teatime-live/internal/audit/repository"
	"teatime-live/internal/logging"
)

// ResourceLive is the resource every live action is recorded against.
const ResourceLive = "live_session"

// Audit actions.
const (
	ActionLiveOpened        = "live_opened"
	ActionLiveJoined        = "live_joined"
	ActionParticipantKicked = "participant_kicked"
	ActionTrackMuted        = "track_muted"
	ActionLiveClosed        = "live_closed"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event for a board.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, boardID int64, userID, action, metadata string)
}

// Logger implements AuditLogger using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	log         zerolog.Logger
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor, log: logging.Module("audit")}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, boardID int64, userID, action, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := ""
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	if ip == "" {
		ip = "unknown"
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		BoardID:   boardID,
		UserID:    userID,
		Action:    action,
		Resource:  ResourceLive,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.Error().Err(err).Int64("board_id", boardID).Str("action", action).Msg("failed to log event")
	}
}
