package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"teatime-live/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.LiveEvent
	emitErr error
	delay   time.Duration
	done    chan struct{}
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *domain.LiveEvent) error {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*domain.LiveEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	EmitAsync(nil, context.Background(), NewEvent(domain.EventLiveOpened, 1, "s", "u"))
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := &mockEventEmitter{}
	EmitAsync(emitter, context.Background(), nil)
	time.Sleep(10 * time.Millisecond)
	if len(emitter.getEvents()) != 0 {
		t.Error("nil event should not be emitted")
	}
}

func TestEmitAsync_SurvivesCanceledRequest(t *testing.T) {
	emitter := &mockEventEmitter{delay: 10 * time.Millisecond, done: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	EmitAsync(emitter, ctx, NewEvent(domain.EventLiveClosed, 3, "s", "u"))

	select {
	case <-emitter.done:
	case <-time.After(time.Second):
		t.Fatal("event was not emitted")
	}
	if got := emitter.getEvents(); len(got) != 1 || got[0].Type != domain.EventLiveClosed {
		t.Errorf("events = %+v", got)
	}
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(domain.EventLiveJoined, 5, "room", "user")
	b := NewEvent(domain.EventLiveJoined, 5, "room", "user")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("event IDs should be unique and non-empty: %q %q", a.ID, b.ID)
	}
	if len(a.ID) != 26 {
		t.Errorf("ID %q is not a ULID", a.ID)
	}
	if a.Source != Source || a.BoardID != 5 || a.SessionID != "room" || a.ActorID != "user" {
		t.Errorf("event = %+v", a)
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestFanout(t *testing.T) {
	ok := &mockEventEmitter{}
	failing := &mockEventEmitter{emitErr: errors.New("kafka down")}
	f := Fanout{ok, nil, failing}

	err := f.Emit(context.Background(), NewEvent(domain.EventTrackMuted, 1, "s", "u"))
	if err == nil {
		t.Fatal("Fanout should report the failing emitter")
	}
	if len(ok.getEvents()) != 1 || len(failing.getEvents()) != 1 {
		t.Error("every emitter should receive the event")
	}
}
