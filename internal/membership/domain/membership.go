package domain

import "time"

// Membership puts a user on a board's roster. Roster members may watch the board's live.
type Membership struct {
	BoardID   int64
	UserID    string
	CreatedAt time.Time
}
