package otel

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"teatime-live/internal/telemetry"
	"teatime-live/internal/telemetry/domain"
)

// recordEmitter is the part of otellog.Logger the emitter uses.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("teatime.live")}
}

// NewEventEmitterWithLogger wraps an arbitrary record sink. Used in tests.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.LiveEvent) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the event to an OTel log record. The body is the event's attrs as JSON.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.LiveEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	if len(event.Attrs) > 0 {
		if body, err := json.Marshal(event.Attrs); err == nil {
			rec.SetBody(otellog.BytesValue(body))
		}
	}
	rec.AddAttributes(
		otellog.String("event_id", event.ID),
		otellog.String("event_type", string(event.Type)),
		otellog.String("board_id", strconv.FormatInt(event.BoardID, 10)),
	)
	if event.SessionID != "" {
		rec.AddAttributes(otellog.String("session_id", event.SessionID))
	}
	if event.ActorID != "" {
		rec.AddAttributes(otellog.String("actor_id", event.ActorID))
	}
	if event.TargetID != "" {
		rec.AddAttributes(otellog.String("target_id", event.TargetID))
	}
	if event.Source != "" {
		rec.AddAttributes(otellog.String("source", event.Source))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
