package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"teatime-live/internal/telemetry/domain"
)

// Source is stamped on every event this service emits.
const Source = "teatime-live"

// EventEmitter emits live lifecycle events (e.g. to OTel Logs or Kafka). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.LiveEvent) error
}

// NewEvent returns an event with a fresh ULID and timestamp.
func NewEvent(typ domain.EventType, boardID int64, sessionID, actorID string) *domain.LiveEvent {
	now := time.Now().UTC()
	return &domain.LiveEvent{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Type:      typ,
		BoardID:   boardID,
		SessionID: sessionID,
		ActorID:   actorID,
		Source:    Source,
		CreatedAt: now,
	}
}

// Fanout sends each event to every non-nil emitter and joins their errors.
type Fanout []EventEmitter

func (f Fanout) Emit(ctx context.Context, event *domain.LiveEvent) error {
	var errs []error
	for _, e := range f {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
