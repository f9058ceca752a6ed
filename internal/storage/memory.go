package storage

import (
	"context"
	"sync"
)

// MemoryStore is a process-local domain.KVStore. Used by tests and
// by the --ephemeral flag.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	// Writes counts Set calls so tests can assert write-through.
	Writes int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.Writes++
	return nil
}

func (s *MemoryStore) Close() error { return nil }
