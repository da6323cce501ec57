package domain

import "time"

// AuditLog records one successful live action. BoardID 0 means no board.
type AuditLog struct {
	ID        string
	BoardID   int64
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
