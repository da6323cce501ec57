package repository

import (
	"context"
	"sync"
	"time"

	"teatime-live/internal/live/domain"
)

// MemoryRepository is a process-local registry. The mutex makes Create's check-and-insert atomic.
type MemoryRepository struct {
	mu      sync.RWMutex
	byBoard map[int64]domain.Session
	boardOf map[string]int64
	nowF    func() time.Time
}

// NewMemoryRepository returns an empty in-memory registry.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byBoard: make(map[int64]domain.Session),
		boardOf: make(map[string]int64),
		nowF:    time.Now,
	}
}

func (r *MemoryRepository) Exists(ctx context.Context, boardID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byBoard[boardID]
	return ok, nil
}

func (r *MemoryRepository) Create(ctx context.Context, boardID int64, sessionID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byBoard[boardID]; ok {
		return nil, domain.ErrConflict
	}
	if _, ok := r.boardOf[sessionID]; ok {
		return nil, domain.ErrConflict
	}
	s := domain.Session{ID: sessionID, BoardID: boardID, CreatedAt: r.nowF().UTC()}
	r.byBoard[boardID] = s
	r.boardOf[sessionID] = boardID
	return &s, nil
}

func (r *MemoryRepository) Get(ctx context.Context, boardID int64) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byBoard[boardID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	boardID, ok := r.boardOf[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s := r.byBoard[boardID]
	return &s, nil
}

func (r *MemoryRepository) Remove(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	boardID, ok := r.boardOf[sessionID]
	if !ok {
		return nil
	}
	delete(r.boardOf, sessionID)
	delete(r.byBoard, boardID)
	return nil
}
