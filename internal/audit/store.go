package audit

import (
	"context"
	"sync"

	id "taskboard/pkg/domain"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByBoard(ctx context.Context, boardID id.BoardID) ([]Event, error)
}

// InMemoryStore keeps events in process, in append order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.BoardID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.BoardID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.BoardID] = append(s.events[event.BoardID], event)
	return nil
}

func (s *InMemoryStore) ListByBoard(_ context.Context, boardID id.BoardID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events[boardID]...), nil
}
