// Package webhook reconciles the session registry with asynchronous control plane events.
// Events arrive unordered and at least once; every path here is idempotent.
package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"teatime-live/internal/audit"
	boarddomain "teatime-live/internal/board/domain"
	"teatime-live/internal/live/domain"
	"teatime-live/internal/live/repository"
	"teatime-live/internal/logging"
	"teatime-live/internal/telemetry"
	telemetrydomain "teatime-live/internal/telemetry/domain"
)

// Outcome is what Handle did with a webhook. The HTTP caller always gets 200 regardless.
type Outcome int

const (
	OutcomeInvalid Outcome = iota
	OutcomeIgnored
	OutcomeNoSession
	OutcomeNotOwner
	OutcomeClosed
	OutcomeTeardownFailed
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeNoSession:
		return "no_session"
	case OutcomeNotOwner:
		return "not_owner"
	case OutcomeClosed:
		return "closed"
	case OutcomeTeardownFailed:
		return "teardown_failed"
	}
	return "error"
}

// Teardown causes recorded on live_closed.
const (
	CauseOwnerLeft   = "owner_left"
	CauseOwnerClosed = "owner_closed"
	CauseOperator    = "operator"
)

// BoardReader loads a board; nil when it does not exist.
type BoardReader interface {
	GetByID(ctx context.Context, id int64) (*boarddomain.Board, error)
}

// RoomDeleter ends a control plane room.
type RoomDeleter interface {
	DeleteRoom(ctx context.Context, sessionID string) error
}

// Reconciler applies participant_left events and owns the teardown path.
type Reconciler struct {
	verifier Verifier
	registry repository.Registry
	boards   BoardReader
	rooms    RoomDeleter
	audit    audit.AuditLogger
	events   telemetry.EventEmitter
	outcomes metric.Int64Counter
	log      zerolog.Logger
}

// NewReconciler wires a Reconciler. auditLogger and events may be nil.
func NewReconciler(verifier Verifier, registry repository.Registry, boards BoardReader, rooms RoomDeleter, auditLogger audit.AuditLogger, events telemetry.EventEmitter) *Reconciler {
	outcomes, _ := otel.Meter("teatime-live/webhook").Int64Counter(
		"live.webhook.outcomes",
		metric.WithDescription("Webhooks handled, by outcome"),
	)
	return &Reconciler{
		verifier: verifier,
		registry: registry,
		boards:   boards,
		rooms:    rooms,
		audit:    auditLogger,
		events:   events,
		outcomes: outcomes,
		log:      logging.Module("webhook"),
	}
}

// Handle verifies and applies one webhook. It never fails the caller.
func (r *Reconciler) Handle(ctx context.Context, body []byte, authHeader string) Outcome {
	o := r.handle(ctx, body, authHeader)
	if r.outcomes != nil {
		r.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", o.String())))
	}
	return o
}

func (r *Reconciler) handle(ctx context.Context, body []byte, authHeader string) Outcome {
	v := r.verifier.Verify(body, authHeader)
	switch v.Status {
	case StatusInvalid:
		r.log.Warn().Str("reason", v.Reason).Msg("rejected webhook")
		return OutcomeInvalid
	case StatusUnknownEvent:
		r.log.Debug().Str("event", v.Reason).Msg("ignored webhook event")
		return OutcomeIgnored
	}

	sessionID := v.Event.GetRoom().GetName()
	identity := v.Event.GetParticipant().GetIdentity()
	if sessionID == "" || identity == "" {
		r.log.Warn().Str("event_id", v.Event.GetId()).Msg("participant_left without room or identity")
		return OutcomeIgnored
	}
	logger := r.log.With().Str("session_id", sessionID).Str("identity", identity).Logger()

	s, err := r.registry.GetBySessionID(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		logger.Debug().Msg("no open session for room")
		return OutcomeNoSession
	}
	if err != nil {
		logger.Error().Err(err).Msg("registry lookup failed")
		return OutcomeError
	}

	board, err := r.boards.GetByID(ctx, s.BoardID)
	if err != nil {
		logger.Error().Err(err).Int64("board_id", s.BoardID).Msg("board lookup failed")
		return OutcomeError
	}
	if !board.IsOwner(identity) {
		return OutcomeNotOwner
	}

	if err := r.Teardown(ctx, s, identity, CauseOwnerLeft); err != nil {
		logger.Error().Err(err).Msg("teardown failed, session kept for retry")
		return OutcomeTeardownFailed
	}
	logger.Info().Int64("board_id", s.BoardID).Msg("owner left, live closed")
	return OutcomeClosed
}

// Teardown deletes the control plane room and then removes the session. The record is kept if the
// delete fails so a later webhook, close or operator retry can finish the job.
func (r *Reconciler) Teardown(ctx context.Context, s *domain.Session, actorID, cause string) error {
	if err := r.rooms.DeleteRoom(ctx, s.ID); err != nil {
		return err
	}
	if err := r.registry.Remove(ctx, s.ID); err != nil {
		return fmt.Errorf("remove live session: %w", err)
	}
	if r.audit != nil {
		r.audit.LogEvent(ctx, s.BoardID, actorID, audit.ActionLiveClosed, fmt.Sprintf(`{"session_id":%q,"cause":%q}`, s.ID, cause))
	}
	ev := telemetry.NewEvent(telemetrydomain.EventLiveClosed, s.BoardID, s.ID, actorID)
	ev.Attrs = map[string]string{"cause": cause}
	telemetry.EmitAsync(r.events, ctx, ev)
	return nil
}
