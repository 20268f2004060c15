package cache

import (
	"context"
	"sync"

	"trading-backend/src/models"
)

// MemoryStore keeps entries in process memory.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]models.MCacheEntry[T]
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{entries: make(map[string]models.MCacheEntry[T])}
}

// -----------------------------------------------------------------------------

func (s *MemoryStore[T]) Load(_ context.Context, key string) (models.MCacheEntry[T], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

// -----------------------------------------------------------------------------

func (s *MemoryStore[T]) Save(_ context.Context, key string, entry models.MCacheEntry[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}
