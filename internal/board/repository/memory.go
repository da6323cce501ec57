package repository

import (
	"context"
	"sync"

	"teatime-live/internal/board/domain"
)

// MemoryRepository keeps boards in process. Used when DATABASE_URL is empty and in tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	boards map[int64]domain.Board
	nextID int64
}

// NewMemoryRepository returns an empty in-memory board repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{boards: make(map[int64]domain.Board)}
}

// GetByID returns a copy of the board, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*domain.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boards[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// Create stores b. A zero ID is assigned the next free one.
func (r *MemoryRepository) Create(ctx context.Context, b *domain.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == 0 {
		r.nextID++
		b.ID = r.nextID
	} else if b.ID > r.nextID {
		r.nextID = b.ID
	}
	r.boards[b.ID] = *b
	return nil
}
