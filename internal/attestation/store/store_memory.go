package store

import (
	"context"
	"sync"

	"zkvault/internal/attestation/models"
	"zkvault/pkg/domain"
	"zkvault/pkg/platform/sentinel"
)

// InMemoryStore keeps one attestation per claim type.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.ClaimType]*models.Attestation
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.ClaimType]*models.Attestation)}
}

func (s *InMemoryStore) Load(_ context.Context, claim domain.ClaimType) (*models.Attestation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	att, ok := s.records[claim]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return att.Clone(), nil
}

// Save replaces any prior attestation for the same claim type.
func (s *InMemoryStore) Save(_ context.Context, att *models.Attestation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[att.ClaimType] = att.Clone()
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, claim domain.ClaimType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, claim)
	return nil
}

// List returns the stored attestations in claim type display order.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Attestation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Attestation, 0, len(s.records))
	for _, claim := range domain.ClaimTypes {
		if att, ok := s.records[claim]; ok {
			out = append(out, att.Clone())
		}
	}
	return out, nil
}
