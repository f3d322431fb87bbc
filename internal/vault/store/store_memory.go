package store

import (
	"bytes"
	"context"
	"sync"

	"zkvault/pkg/platform/sentinel"
)

// InMemoryStore holds the single root secret record.
type InMemoryStore struct {
	mu     sync.Mutex
	record []byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil, sentinel.ErrNotFound
	}
	return bytes.Clone(s.record), nil
}

// CreateIfAbsent stores raw only when no record exists and reports whether it did.
func (s *InMemoryStore) CreateIfAbsent(_ context.Context, raw []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record != nil {
		return false, nil
	}
	s.record = bytes.Clone(raw)
	return true, nil
}

// CompareAndSwap replaces the record only if it still equals old.
func (s *InMemoryStore) CompareAndSwap(_ context.Context, old, next []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil || !bytes.Equal(s.record, old) {
		return false, nil
	}
	s.record = bytes.Clone(next)
	return true, nil
}

func (s *InMemoryStore) Put(_ context.Context, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = bytes.Clone(raw)
	return nil
}
