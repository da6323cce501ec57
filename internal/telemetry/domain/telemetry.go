package domain

import "time"

// EventType names a live lifecycle event.
type EventType string

const (
	EventLiveOpened        EventType = "live_opened"
	EventLiveJoined        EventType = "live_joined"
	EventParticipantKicked EventType = "participant_kicked"
	EventTrackMuted        EventType = "track_muted"
	EventLiveClosed        EventType = "live_closed"
)

// LiveEvent is a lifecycle event for a board's live session. It is the Kafka message value.
type LiveEvent struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"eventType"`
	BoardID   int64             `json:"boardId"`
	SessionID string            `json:"sessionId,omitempty"`
	ActorID   string            `json:"actorId,omitempty"`
	TargetID  string            `json:"targetId,omitempty"`
	Source    string            `json:"source"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
