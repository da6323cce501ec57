// Package roomctl issues control calls to the realtime media backend (LiveKit room service).
// Every failure comes back as *domain.AdapterError. The adapter never retries.
package roomctl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/rs/zerolog"
	"github.com/twitchtv/twirp"
	"golang.org/x/time/rate"

	"teatime-live/internal/live/domain"
	"teatime-live/internal/logging"
)

// Controller is the room control surface the orchestrator and reconciler depend on.
type Controller interface {
	DeleteRoom(ctx context.Context, sessionID string) error
	RemoveParticipant(ctx context.Context, sessionID, identity string) error
	MuteTrack(ctx context.Context, sessionID, identity, trackID string, muted bool) error
	// CountAudience returns the participants in the room, not counting excludeIdentity.
	CountAudience(ctx context.Context, sessionID, excludeIdentity string) (int, error)
}

// roomService is the subset of *lksdk.RoomServiceClient used here.
type roomService interface {
	DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error)
	RemoveParticipant(ctx context.Context, req *livekit.RoomParticipantIdentity) (*livekit.RemoveParticipantResponse, error)
	MutePublishedTrack(ctx context.Context, req *livekit.MuteRoomTrackRequest) (*livekit.MuteRoomTrackResponse, error)
	ListParticipants(ctx context.Context, req *livekit.ListParticipantsRequest) (*livekit.ListParticipantsResponse, error)
}

const (
	OpDeleteRoom        = "delete_room"
	OpRemoveParticipant = "remove_participant"
	OpMuteTrack         = "mute_track"
	OpListParticipants  = "list_participants"
)

// Options tune the adapter. Zero values mean a 5s timeout and no pacing.
type Options struct {
	Timeout        time.Duration
	CallsPerSecond int
}

// LiveKit implements Controller against a LiveKit server.
type LiveKit struct {
	svc     roomService
	timeout time.Duration
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewLiveKit returns a Controller for the LiveKit server at url.
func NewLiveKit(url, apiKey, apiSecret string, opts Options) *LiveKit {
	return newLiveKit(lksdk.NewRoomServiceClient(url, apiKey, apiSecret), opts)
}

func newLiveKit(svc roomService, opts Options) *LiveKit {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	var lim *rate.Limiter
	if opts.CallsPerSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(opts.CallsPerSecond), opts.CallsPerSecond)
	}
	return &LiveKit{svc: svc, timeout: opts.Timeout, limiter: lim, log: logging.Module("roomctl")}
}

// DeleteRoom ends the room. A room the server no longer knows counts as deleted.
func (c *LiveKit) DeleteRoom(ctx context.Context, sessionID string) error {
	err := c.call(ctx, OpDeleteRoom, func(ctx context.Context) error {
		_, err := c.svc.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: sessionID})
		if isNotFound(err) {
			c.log.Debug().Str("session_id", sessionID).Msg("room already gone")
			return nil
		}
		return err
	})
	return err
}

// RemoveParticipant disconnects identity from the room.
func (c *LiveKit) RemoveParticipant(ctx context.Context, sessionID, identity string) error {
	return c.call(ctx, OpRemoveParticipant, func(ctx context.Context) error {
		_, err := c.svc.RemoveParticipant(ctx, &livekit.RoomParticipantIdentity{Room: sessionID, Identity: identity})
		return err
	})
}

// MuteTrack sets the muted state of one published track.
func (c *LiveKit) MuteTrack(ctx context.Context, sessionID, identity, trackID string, muted bool) error {
	return c.call(ctx, OpMuteTrack, func(ctx context.Context) error {
		_, err := c.svc.MutePublishedTrack(ctx, &livekit.MuteRoomTrackRequest{
			Room:     sessionID,
			Identity: identity,
			TrackSid: trackID,
			Muted:    muted,
		})
		return err
	})
}

// CountAudience lists the room's participants. A room that does not exist yet has no audience.
func (c *LiveKit) CountAudience(ctx context.Context, sessionID, excludeIdentity string) (int, error) {
	var n int
	err := c.call(ctx, OpListParticipants, func(ctx context.Context) error {
		res, err := c.svc.ListParticipants(ctx, &livekit.ListParticipantsRequest{Room: sessionID})
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, p := range res.GetParticipants() {
			if p.GetIdentity() != excludeIdentity {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (c *LiveKit) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(op, err)
		}
	}
	if err := fn(ctx); err != nil {
		return c.fail(op, err)
	}
	return nil
}

func (c *LiveKit) fail(op string, err error) error {
	ae := &domain.AdapterError{Op: op, Detail: detail(err), Err: err}
	c.log.Warn().Err(err).Str("op", op).Msg("control plane call failed")
	return ae
}

func detail(err error) string {
	var terr twirp.Error
	if errors.As(err, &terr) {
		if terr.Msg() != "" {
			return fmt.Sprintf("%s: %s", terr.Code(), terr.Msg())
		}
		return string(terr.Code())
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline exceeded"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return err.Error()
}

func isNotFound(err error) bool {
	var terr twirp.Error
	return errors.As(err, &terr) && terr.Code() == twirp.NotFound
}
