package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"taskboard/internal/board/models"
	id "taskboard/pkg/domain"
	"taskboard/pkg/platform/sentinel"
)

// InMemory keeps board snapshots in a map. Every read and write copies the
// snapshot so callers never share column or card slices with the store.
type InMemory struct {
	mu     sync.RWMutex
	boards map[id.BoardID]models.BoardSnapshot
}

func NewInMemory() *InMemory {
	return &InMemory{boards: make(map[id.BoardID]models.BoardSnapshot)}
}

func (s *InMemory) Create(_ context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.boards[snap.ID]; exists {
		return models.BoardSnapshot{}, fmt.Errorf("board %s already exists: %w", snap.ID, sentinel.ErrConflict)
	}
	stored := snap.Clone()
	stored.Version = 1
	s.boards[snap.ID] = stored
	return stored.Clone(), nil
}

func (s *InMemory) FindByID(_ context.Context, boardID id.BoardID) (models.BoardSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.boards[boardID]
	if !ok {
		return models.BoardSnapshot{}, sentinel.ErrNotFound
	}
	return snap.Clone(), nil
}

// ListByUser returns the user's boards ordered by title, then id.
func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]models.BoardSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.BoardSnapshot, 0)
	for _, snap := range s.boards {
		if snap.UserID == userID {
			out = append(out, snap.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// Save replaces the stored board if snap.Version matches the stored version.
func (s *InMemory) Save(_ context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.boards[snap.ID]
	if !ok {
		return models.BoardSnapshot{}, sentinel.ErrNotFound
	}
	if current.Version != snap.Version {
		return models.BoardSnapshot{}, fmt.Errorf("board %s is at version %d, not %d: %w",
			snap.ID, current.Version, snap.Version, sentinel.ErrConflict)
	}
	stored := snap.Clone()
	stored.Version = current.Version + 1
	s.boards[snap.ID] = stored
	return stored.Clone(), nil
}
