package audit

import (
	"context"
	"sync"
)

// DefaultRetention is how many events an InMemoryStore keeps when no
// capacity is given.
const DefaultRetention = 1000

// InMemoryStore keeps the most recent events in a fixed-size ring. Once full,
// each Append overwrites the oldest event.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultRetention
	}
	return &InMemoryStore{events: make([]Event, capacity)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.next] = event
	s.next = (s.next + 1) % len(s.events)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// ordered returns the retained events, oldest first. Callers hold the lock.
func (s *InMemoryStore) ordered() []Event {
	if !s.full {
		return append([]Event{}, s.events[:s.next]...)
	}
	out := make([]Event, 0, len(s.events))
	out = append(out, s.events[s.next:]...)
	return append(out, s.events[:s.next]...)
}

// ListByOrigin returns the retained events for one origin, oldest first.
func (s *InMemoryStore) ListByOrigin(_ context.Context, origin string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.ordered() {
		if e.Origin == origin {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecent returns at most limit events, most recent last. A non-positive
// limit returns everything retained.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.ordered()
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}
