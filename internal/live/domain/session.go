package domain

import "time"

// Session is the shadow record of an open LiveKit room for a board.
// ID doubles as the room name and is never reused.
type Session struct {
	ID        string
	BoardID   int64
	CreatedAt time.Time
}

// Actor is the authenticated caller of a live action.
type Actor struct {
	ID          string
	DisplayName string
}

// Credential is a signed room-join token handed to a client.
type Credential struct {
	SessionID string
	Identity  string
	Token     string
	ExpiresAt time.Time
}

// Action names a live operation checked by the gate.
type Action string

const (
	ActionOpen   Action = "open"
	ActionIsOpen Action = "is_open"
	ActionJoin   Action = "join"
	ActionKick   Action = "kick"
	ActionMute   Action = "mute"
	ActionClose  Action = "close"
)

// OwnerOnly reports whether only the board owner may perform a.
func (a Action) OwnerOnly() bool {
	switch a {
	case ActionOpen, ActionKick, ActionMute, ActionClose:
		return true
	}
	return false
}
