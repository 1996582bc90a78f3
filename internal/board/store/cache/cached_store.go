package cache

import (
	"context"
	"errors"
	"log/slog"

	"taskboard/internal/board/metrics"
	"taskboard/internal/board/models"
	id "taskboard/pkg/domain"
	"taskboard/pkg/platform/sentinel"
)

// Store is the persistence contract CachedStore wraps.
type Store interface {
	Create(ctx context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error)
	FindByID(ctx context.Context, boardID id.BoardID) (models.BoardSnapshot, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]models.BoardSnapshot, error)
	Save(ctx context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error)
}

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// CachedStore reads boards through a RedisCache. Saves write the persisted
// snapshot through; a save that loses a version race refreshes the entry from
// the wrapped store. Every cache write is version-guarded, so the entry only
// moves forward. Cache failures are logged and the call falls through to the
// wrapped store.
type CachedStore struct {
	next    Store
	cache   *RedisCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*CachedStore)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *CachedStore) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *CachedStore) { s.logger = logger }
}

func NewCachedStore(next Store, cache *RedisCache, opts ...Option) *CachedStore {
	s := &CachedStore{
		next:   next,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CachedStore) Create(ctx context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error) {
	return s.next.Create(ctx, snap)
}

func (s *CachedStore) ListByUser(ctx context.Context, userID id.UserID) ([]models.BoardSnapshot, error) {
	return s.next.ListByUser(ctx, userID)
}

func (s *CachedStore) FindByID(ctx context.Context, boardID id.BoardID) (models.BoardSnapshot, error) {
	snap, err := s.cache.Get(ctx, boardID)
	switch {
	case err == nil:
		s.record(resultHit)
		return snap, nil
	case errors.Is(err, sentinel.ErrNotFound):
		s.record(resultMiss)
	default:
		s.record(resultError)
		s.logger.WarnContext(ctx, "board cache read failed", "board_id", boardID.String(), "error", err)
	}

	snap, err = s.next.FindByID(ctx, boardID)
	if err != nil {
		return models.BoardSnapshot{}, err
	}
	if _, err := s.cache.Set(ctx, snap); err != nil {
		s.logger.WarnContext(ctx, "board cache fill failed", "board_id", boardID.String(), "error", err)
	}
	return snap, nil
}

func (s *CachedStore) Save(ctx context.Context, snap models.BoardSnapshot) (models.BoardSnapshot, error) {
	saved, err := s.next.Save(ctx, snap)
	switch {
	case err == nil:
		s.refresh(ctx, saved)
		return saved, nil
	case errors.Is(err, sentinel.ErrConflict):
		// The cached copy may be the stale one the caller loaded.
		if latest, findErr := s.next.FindByID(ctx, snap.ID); findErr == nil {
			s.refresh(ctx, latest)
		} else {
			s.evict(ctx, snap.ID)
		}
		return models.BoardSnapshot{}, err
	default:
		return models.BoardSnapshot{}, err
	}
}

// refresh writes snap through. If Redis refuses, the entry is dropped so a
// reader cannot keep serving the previous version.
func (s *CachedStore) refresh(ctx context.Context, snap models.BoardSnapshot) {
	if _, err := s.cache.Set(ctx, snap); err != nil {
		s.logger.WarnContext(ctx, "board cache write-through failed", "board_id", snap.ID.String(), "error", err)
		s.evict(ctx, snap.ID)
	}
}

func (s *CachedStore) evict(ctx context.Context, boardID id.BoardID) {
	if err := s.cache.Delete(ctx, boardID); err != nil {
		s.logger.WarnContext(ctx, "board cache invalidation failed", "board_id", boardID.String(), "error", err)
	}
}

func (s *CachedStore) record(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCacheLookup(result)
}
