package repository

import (
	"context"
	"sync"
	"time"

	"teatime-live/internal/membership/domain"
)

type rosterKey struct {
	boardID int64
	userID  string
}

// MemoryRepository is an in-process roster.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[rosterKey]domain.Membership
}

// NewMemoryRepository returns an empty roster.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[rosterKey]domain.Membership)}
}

func (r *MemoryRepository) IsMember(ctx context.Context, boardID int64, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[rosterKey{boardID, userID}]
	return ok, nil
}

func (r *MemoryRepository) Add(ctx context.Context, boardID int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := rosterKey{boardID, userID}
	if _, ok := r.entries[k]; ok {
		return nil
	}
	r.entries[k] = domain.Membership{BoardID: boardID, UserID: userID, CreatedAt: time.Now().UTC()}
	return nil
}
