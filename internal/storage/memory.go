package storage

import (
	"context"
	"sync"
)

type memoryKey struct {
	learnerID int64
	key       string
}

// MemoryStore provides in-memory blob storage.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[memoryKey][]byte
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[memoryKey][]byte),
	}
}

// Get retrieves the value stored under key.
func (s *MemoryStore) Get(_ context.Context, learnerID int64, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[memoryKey{learnerID, key}]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set saves value under key.
func (s *MemoryStore) Set(_ context.Context, learnerID int64, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[memoryKey{learnerID, key}] = v
	return nil
}

// Delete removes keys under a single lock.
func (s *MemoryStore) Delete(_ context.Context, learnerID int64, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, memoryKey{learnerID, key})
	}
	return nil
}
