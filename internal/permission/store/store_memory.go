package store

import (
	"context"
	"sort"
	"sync"

	"zkvault/internal/permission/models"
	"zkvault/pkg/domain"
)

// InMemoryStore keeps grants in a map keyed by origin then claim type.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[domain.Origin]map[domain.ClaimType]models.Grant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[domain.Origin]map[domain.ClaimType]models.Grant)}
}

// Put inserts the grant unless one already exists.
func (s *InMemoryStore) Put(_ context.Context, grant models.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byClaim, ok := s.grants[grant.Origin]
	if !ok {
		byClaim = make(map[domain.ClaimType]models.Grant)
		s.grants[grant.Origin] = byClaim
	}
	if _, exists := byClaim[grant.ClaimType]; !exists {
		byClaim[grant.ClaimType] = grant
	}
	return nil
}

// Delete removes the grant; the origin entry goes with its last grant.
func (s *InMemoryStore) Delete(_ context.Context, origin domain.Origin, claim domain.ClaimType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byClaim, ok := s.grants[origin]
	if !ok {
		return nil
	}
	delete(byClaim, claim)
	if len(byClaim) == 0 {
		delete(s.grants, origin)
	}
	return nil
}

func (s *InMemoryStore) Exists(_ context.Context, origin domain.Origin, claim domain.ClaimType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[origin][claim]
	return ok, nil
}

func (s *InMemoryStore) ListByOrigin(_ context.Context, origin domain.Origin) ([]models.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Grant, 0, len(s.grants[origin]))
	for _, g := range s.grants[origin] {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimType < out[j].ClaimType })
	return out, nil
}

func (s *InMemoryStore) ListOrigins(_ context.Context) ([]domain.Origin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Origin, 0, len(s.grants))
	for o := range s.grants {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
