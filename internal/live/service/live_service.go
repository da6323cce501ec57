// Package service orchestrates live actions: it asks the gate, consults the registry,
// then drives the credential issuer and the room controller.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"teatime-live/internal/audit"
	boarddomain "teatime-live/internal/board/domain"
	"teatime-live/internal/live/domain"
	"teatime-live/internal/live/gate"
	"teatime-live/internal/live/repository"
	"teatime-live/internal/live/webhook"
	"teatime-live/internal/logging"
	"teatime-live/internal/policy/engine"
	"teatime-live/internal/telemetry"
	telemetrydomain "teatime-live/internal/telemetry/domain"
)

const instrumentationName = "teatime-live/live"

// BoardReader is the minimal board repository needed by the live service.
type BoardReader interface {
	GetByID(ctx context.Context, id int64) (*boarddomain.Board, error)
}

// RosterReader is the minimal roster repository needed by the live service.
type RosterReader interface {
	IsMember(ctx context.Context, boardID int64, userID string) (bool, error)
}

// CredentialIssuer signs room-join credentials.
type CredentialIssuer interface {
	Issue(sessionID, identity, displayName string) (*domain.Credential, error)
}

// RoomController is the subset of roomctl.Controller the service drives.
type RoomController interface {
	RemoveParticipant(ctx context.Context, sessionID, identity string) error
	MuteTrack(ctx context.Context, sessionID, identity, trackID string, muted bool) error
	CountAudience(ctx context.Context, sessionID, excludeIdentity string) (int, error)
}

// Teardowner ends a live. The webhook reconciler implements it; Close shares its path.
type Teardowner interface {
	Teardown(ctx context.Context, s *domain.Session, actorID, cause string) error
}

// MuteRequest targets one published track.
type MuteRequest struct {
	UserID   string
	TrackSID string
	Muted    bool
}

// Options carries optional collaborators. Nil fields disable the feature.
type Options struct {
	// Admission, when set, is consulted on Join by non-owners.
	Admission engine.Admitter
	Audit     audit.AuditLogger
	Events    telemetry.EventEmitter
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// LiveService implements open, is-open, join, kick, mute and close for board lives.
type LiveService struct {
	boards     BoardReader
	roster     RosterReader
	registry   repository.Registry
	gate       gate.Gate
	issuer     CredentialIssuer
	rooms      RoomController
	teardowner Teardowner

	admission engine.Admitter
	audit     audit.AuditLogger
	events    telemetry.EventEmitter
	now       func() time.Time
	newID     func() string

	tracer  trace.Tracer
	actions metric.Int64Counter
	log     zerolog.Logger
}

// NewLiveService returns a LiveService with the given dependencies.
func NewLiveService(
	boards BoardReader,
	roster RosterReader,
	registry repository.Registry,
	g gate.Gate,
	issuer CredentialIssuer,
	rooms RoomController,
	teardowner Teardowner,
	opts Options,
) *LiveService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	actions, _ := otel.Meter(instrumentationName).Int64Counter(
		"live.actions",
		metric.WithDescription("Live actions handled, by action and result"),
	)
	return &LiveService{
		boards:     boards,
		roster:     roster,
		registry:   registry,
		gate:       g,
		issuer:     issuer,
		rooms:      rooms,
		teardowner: teardowner,
		admission:  opts.Admission,
		audit:      opts.Audit,
		events:     opts.Events,
		now:        opts.Now,
		newID:      opts.NewID,
		tracer:     otel.Tracer(instrumentationName),
		actions:    actions,
		log:        logging.Module("live"),
	}
}

// Open starts a live for the board and returns the owner's credential.
func (s *LiveService) Open(ctx context.Context, actor domain.Actor, boardID int64) (cred *domain.Credential, err error) {
	ctx, done := s.start(ctx, domain.ActionOpen, actor, boardID)
	defer func() { done(err) }()

	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Decide(domain.ActionOpen, board, actor.ID, s.now(), false).Err(); err != nil {
		return nil, err
	}

	session, err := s.registry.Create(ctx, boardID, s.newID())
	if err != nil {
		return nil, err
	}
	cred, err = s.issuer.Issue(session.ID, actor.ID, actor.DisplayName)
	if err != nil {
		// No room exists yet (rooms are created on first join), so dropping the record undoes Open.
		if rmErr := s.registry.Remove(ctx, session.ID); rmErr != nil {
			s.log.Error().Err(rmErr).Str("session_id", session.ID).Msg("failed to roll back session")
		}
		return nil, fmt.Errorf("issue owner credential: %w", err)
	}

	s.record(ctx, audit.ActionLiveOpened, telemetrydomain.EventLiveOpened, boardID, session.ID, actor.ID, "")
	return cred, nil
}

// IsOpen reports whether the board has a live. Owner and roster members may ask.
func (s *LiveService) IsOpen(ctx context.Context, actor domain.Actor, boardID int64) (open bool, err error) {
	ctx, done := s.start(ctx, domain.ActionIsOpen, actor, boardID)
	defer func() { done(err) }()

	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return false, err
	}
	if err := s.authorize(ctx, domain.ActionIsOpen, board, actor); err != nil {
		return false, err
	}
	return s.registry.Exists(ctx, boardID)
}

// Join returns a credential for the board's open live.
func (s *LiveService) Join(ctx context.Context, actor domain.Actor, boardID int64) (cred *domain.Credential, err error) {
	ctx, done := s.start(ctx, domain.ActionJoin, actor, boardID)
	defer func() { done(err) }()

	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, domain.ActionJoin, board, actor); err != nil {
		return nil, err
	}
	session, err := s.registry.Get(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.admit(ctx, board, session, actor); err != nil {
		return nil, err
	}
	cred, err = s.issuer.Issue(session.ID, actor.ID, actor.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	s.record(ctx, audit.ActionLiveJoined, telemetrydomain.EventLiveJoined, boardID, session.ID, actor.ID, "")
	return cred, nil
}

// Kick removes targetID from the board's live. Owner only; the owner check runs before targetID is validated.
func (s *LiveService) Kick(ctx context.Context, actor domain.Actor, boardID int64, targetID string) (err error) {
	ctx, done := s.start(ctx, domain.ActionKick, actor, boardID)
	defer func() { done(err) }()

	session, err := s.ownedSession(ctx, domain.ActionKick, actor, boardID)
	if err != nil {
		return err
	}
	if targetID == "" {
		return fmt.Errorf("%w: userId is required", domain.ErrInvalidArgument)
	}
	if err := s.rooms.RemoveParticipant(ctx, session.ID, targetID); err != nil {
		return err
	}

	s.record(ctx, audit.ActionParticipantKicked, telemetrydomain.EventParticipantKicked, boardID, session.ID, actor.ID, targetID)
	return nil
}

// Mute sets the muted state of a participant's track. Owner only.
func (s *LiveService) Mute(ctx context.Context, actor domain.Actor, boardID int64, req MuteRequest) (err error) {
	ctx, done := s.start(ctx, domain.ActionMute, actor, boardID)
	defer func() { done(err) }()

	session, err := s.ownedSession(ctx, domain.ActionMute, actor, boardID)
	if err != nil {
		return err
	}
	if req.UserID == "" || req.TrackSID == "" {
		return fmt.Errorf("%w: userId and trackSid are required", domain.ErrInvalidArgument)
	}
	if err := s.rooms.MuteTrack(ctx, session.ID, req.UserID, req.TrackSID, req.Muted); err != nil {
		return err
	}

	s.record(ctx, audit.ActionTrackMuted, telemetrydomain.EventTrackMuted, boardID, session.ID, actor.ID, req.UserID)
	return nil
}

// Close ends the board's live through the same teardown path as an owner-left webhook. Owner only.
func (s *LiveService) Close(ctx context.Context, actor domain.Actor, boardID int64) (err error) {
	ctx, done := s.start(ctx, domain.ActionClose, actor, boardID)
	defer func() { done(err) }()

	session, err := s.ownedSession(ctx, domain.ActionClose, actor, boardID)
	if err != nil {
		return err
	}
	return s.teardowner.Teardown(ctx, session, actor.ID, webhook.CauseOwnerClosed)
}

func (s *LiveService) loadBoard(ctx context.Context, boardID int64) (*boarddomain.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	if board == nil {
		return nil, domain.ErrBoardNotFound
	}
	return board, nil
}

// authorize runs the gate, looking up the roster only when the actor is not the owner.
func (s *LiveService) authorize(ctx context.Context, action domain.Action, board *boarddomain.Board, actor domain.Actor) error {
	member := false
	if !action.OwnerOnly() && board.Activated && !board.IsOwner(actor.ID) && actor.ID != "" {
		var err error
		member, err = s.roster.IsMember(ctx, board.ID, actor.ID)
		if err != nil {
			return fmt.Errorf("roster lookup: %w", err)
		}
	}
	return s.gate.Decide(action, board, actor.ID, s.now(), member).Err()
}

func (s *LiveService) ownedSession(ctx context.Context, action domain.Action, actor domain.Actor, boardID int64) (*domain.Session, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Decide(action, board, actor.ID, s.now(), false).Err(); err != nil {
		return nil, err
	}
	return s.registry.Get(ctx, boardID)
}

// admit applies the audience limit to non-owners. Failures to count fall back to admitting.
func (s *LiveService) admit(ctx context.Context, board *boarddomain.Board, session *domain.Session, actor domain.Actor) error {
	if s.admission == nil || board.IsOwner(actor.ID) {
		return nil
	}
	count, err := s.rooms.CountAudience(ctx, session.ID, board.OwnerID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("audience count failed, admitting")
		return nil
	}
	res, err := s.admission.EvaluateAdmission(ctx, engine.AdmissionInput{
		MaxAudience:   board.MaxAudience,
		AudienceCount: count,
		IsOwner:       false,
	})
	if err != nil || res.Admit {
		return nil
	}
	return domain.Deny(domain.ReasonRoomFull, "").Err()
}

func (s *LiveService) record(ctx context.Context, auditAction string, eventType telemetrydomain.EventType, boardID int64, sessionID, actorID, targetID string) {
	if s.audit != nil {
		meta := fmt.Sprintf(`{"session_id":%q}`, sessionID)
		if targetID != "" {
			meta = fmt.Sprintf(`{"session_id":%q,"target_id":%q}`, sessionID, targetID)
		}
		s.audit.LogEvent(ctx, boardID, actorID, auditAction, meta)
	}
	ev := telemetry.NewEvent(eventType, boardID, sessionID, actorID)
	ev.TargetID = targetID
	telemetry.EmitAsync(s.events, ctx, ev)
}

// start opens a span for action and returns a func that ends it and counts the result.
func (s *LiveService) start(ctx context.Context, action domain.Action, actor domain.Actor, boardID int64) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "live."+string(action), trace.WithAttributes(
		attribute.String("live.action", string(action)),
		attribute.Int64("board.id", boardID),
		attribute.String("actor.id", actor.ID),
	))
	return ctx, func(err error) {
		result := resultOf(err)
		if err != nil && result == "error" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("live.result", result))
		span.End()
		if s.actions != nil {
			s.actions.Add(ctx, 1, metric.WithAttributes(
				attribute.String("action", string(action)),
				attribute.String("result", result),
			))
		}
		if result == "error" {
			s.log.Error().Err(err).Str("action", string(action)).Int64("board_id", boardID).Msg("live action failed")
		}
	}
}

func resultOf(err error) string {
	var deny *domain.DenyError
	var adapter *domain.AdapterError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &deny):
		return "denied"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrBoardNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	case errors.As(err, &adapter):
		return "control_plane"
	}
	return "error"
}
