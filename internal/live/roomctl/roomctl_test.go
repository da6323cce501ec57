package roomctl

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/livekit/protocol/livekit"
	"github.com/twitchtv/twirp"

	"teatime-live/internal/live/domain"
)

type mockRoomService struct {
	deleteErr error
	removeErr error
	muteErr   error
	listErr   error
	listed    []*livekit.ParticipantInfo
	block     bool

	deleted []string
	removed []*livekit.RoomParticipantIdentity
	muted   []*livekit.MuteRoomTrackRequest
}

func (m *mockRoomService) wait(ctx context.Context) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (m *mockRoomService) DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.deleted = append(m.deleted, req.Room)
	return &livekit.DeleteRoomResponse{}, m.deleteErr
}

func (m *mockRoomService) RemoveParticipant(ctx context.Context, req *livekit.RoomParticipantIdentity) (*livekit.RemoveParticipantResponse, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.removed = append(m.removed, req)
	return &livekit.RemoveParticipantResponse{}, m.removeErr
}

func (m *mockRoomService) MutePublishedTrack(ctx context.Context, req *livekit.MuteRoomTrackRequest) (*livekit.MuteRoomTrackResponse, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.muted = append(m.muted, req)
	return &livekit.MuteRoomTrackResponse{}, m.muteErr
}

func (m *mockRoomService) ListParticipants(ctx context.Context, req *livekit.ListParticipantsRequest) (*livekit.ListParticipantsResponse, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return &livekit.ListParticipantsResponse{Participants: m.listed}, nil
}

func TestDeleteRoom(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"success", nil, false},
		{"not found is success", twirp.NotFoundError("room not found"), false},
		{"internal error", twirp.InternalError("boom"), true},
		{"plain error", errors.New("connection refused"), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRoomService{deleteErr: tc.err}
			c := newLiveKit(svc, Options{})
			err := c.DeleteRoom(context.Background(), "room-1")
			if (err != nil) != tc.wantErr {
				t.Fatalf("DeleteRoom err = %v, wantErr %v", err, tc.wantErr)
			}
			if len(svc.deleted) != 1 || svc.deleted[0] != "room-1" {
				t.Errorf("deleted = %v", svc.deleted)
			}
			if err != nil {
				var ae *domain.AdapterError
				if !errors.As(err, &ae) {
					t.Fatalf("err = %T, want *domain.AdapterError", err)
				}
				if ae.Op != OpDeleteRoom || ae.Detail == "" {
					t.Errorf("AdapterError = %+v", ae)
				}
			}
		})
	}
}

func TestRemoveParticipant(t *testing.T) {
	svc := &mockRoomService{}
	c := newLiveKit(svc, Options{})
	if err := c.RemoveParticipant(context.Background(), "room-1", "user-2"); err != nil {
		t.Fatalf("RemoveParticipant: %v", err)
	}
	if len(svc.removed) != 1 || svc.removed[0].Room != "room-1" || svc.removed[0].Identity != "user-2" {
		t.Errorf("removed = %v", svc.removed)
	}

	svc.removeErr = twirp.NotFoundError("participant not found")
	err := c.RemoveParticipant(context.Background(), "room-1", "ghost")
	var ae *domain.AdapterError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want AdapterError", err)
	}
	if !strings.Contains(ae.Detail, "participant not found") {
		t.Errorf("Detail = %q, want control plane message", ae.Detail)
	}
}

func TestMuteTrack(t *testing.T) {
	svc := &mockRoomService{}
	c := newLiveKit(svc, Options{})
	if err := c.MuteTrack(context.Background(), "room-1", "user-2", "TR_abc", true); err != nil {
		t.Fatalf("MuteTrack: %v", err)
	}
	got := svc.muted[0]
	if got.Room != "room-1" || got.Identity != "user-2" || got.TrackSid != "TR_abc" || !got.Muted {
		t.Errorf("mute request = %v", got)
	}

	svc.muteErr = errors.New("track not published")
	if err := c.MuteTrack(context.Background(), "room-1", "user-2", "TR_abc", false); err == nil {
		t.Error("MuteTrack should surface control plane failure")
	}
}

func TestCall_Timeout(t *testing.T) {
	svc := &mockRoomService{block: true}
	c := newLiveKit(svc, Options{Timeout: 20 * time.Millisecond})

	err := c.DeleteRoom(context.Background(), "room-1")
	var ae *domain.AdapterError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want AdapterError", err)
	}
	if ae.Detail != "deadline exceeded" {
		t.Errorf("Detail = %q, want deadline exceeded", ae.Detail)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("AdapterError should unwrap to context.DeadlineExceeded")
	}
}

func TestCountAudience(t *testing.T) {
	svc := &mockRoomService{listed: []*livekit.ParticipantInfo{
		{Identity: "owner"}, {Identity: "a"}, {Identity: "b"},
	}}
	c := newLiveKit(svc, Options{CallsPerSecond: 100})

	n, err := c.CountAudience(context.Background(), "room-1", "owner")
	if err != nil {
		t.Fatalf("CountAudience: %v", err)
	}
	if n != 2 {
		t.Errorf("CountAudience = %d, want 2", n)
	}

	svc.listErr = twirp.NotFoundError("room not found")
	n, err = c.CountAudience(context.Background(), "room-1", "owner")
	if err != nil || n != 0 {
		t.Errorf("CountAudience on missing room = %d, %v; want 0, nil", n, err)
	}
}

func TestNewLiveKit_Defaults(t *testing.T) {
	c := newLiveKit(&mockRoomService{}, Options{})
	if c.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.timeout)
	}
	if c.limiter != nil {
		t.Error("limiter should be nil when CallsPerSecond is 0")
	}
}
