package cachestore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory cache store for tests and the memory
// configuration. It counts saves so tests can assert flush cadence.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]string
	saveCount int
	saveErr   error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Load(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCount++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries = make(map[string]string, len(entries))
	for k, v := range entries {
		s.entries[k] = v
	}
	return nil
}

// Seed pre-populates the store, for tests.
func (s *MemoryStore) Seed(entries map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.entries[k] = v
	}
}

// FailSaves makes subsequent saves return err (nil restores normal
// behavior).
func (s *MemoryStore) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// SaveCount reports how many saves were attempted.
func (s *MemoryStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount
}
