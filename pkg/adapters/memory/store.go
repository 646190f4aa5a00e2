package memory

import (
	"context"
	"sync"

	"github.com/aretw0/fatefinder/pkg/domain"
)

// Store implements ports.ResultStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.FortuneResult
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.FortuneResult),
	}
}

// Save stores a copy of the result, replacing any previous value.
func (s *Store) Save(ctx context.Context, key string, result *domain.FortuneResult) error {
	copied := result.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load returns a copy so callers can't mutate store state through the pointer.
func (s *Store) Load(ctx context.Context, key string) (*domain.FortuneResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.data[key]
	if !ok {
		return nil, domain.ErrResultNotFound
	}
	return result.Clone(), nil
}

// Delete removes the value.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
