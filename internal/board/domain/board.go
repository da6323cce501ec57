package domain

import "time"

// Board is a scheduled teatime board that may host one live broadcast.
// Owned by the board subsystem; read-only here.
type Board struct {
	ID          int64
	OwnerID     string
	Title       string
	MaxAudience int
	BroadcastAt time.Time
	EndsAt      time.Time
	Activated   bool // false once soft-deleted
}

// IsOwner reports whether userID wrote the board.
func (b *Board) IsOwner(userID string) bool {
	return b != nil && userID != "" && b.OwnerID == userID
}
