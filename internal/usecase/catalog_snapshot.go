package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"shiprate-backend/internal/domain"
	"shiprate-backend/pkg/cache"
	"shiprate-backend/pkg/logger"
	"shiprate-backend/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

// CatalogSnapshot hands out the current catalog. The snapshot is loaded from
// the store at most once per TTL and shared read-only by every request.
type CatalogSnapshot struct {
	repo    domain.CatalogRepository
	cache   cache.CacheService
	ttl     time.Duration
	metrics *metrics.Metrics
	group   singleflight.Group

	// generation is bumped by Invalidate; a load started before the bump is
	// returned to its callers but not cached.
	generation atomic.Uint64
}

func NewCatalogSnapshot(repo domain.CatalogRepository, cache cache.CacheService, ttl time.Duration, m *metrics.Metrics) *CatalogSnapshot {
	return &CatalogSnapshot{
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
	}
}

// Get returns the cached snapshot or loads it. Concurrent misses share a
// single load.
func (s *CatalogSnapshot) Get(ctx context.Context) (*domain.Catalog, error) {
	if val, found := s.cache.Get(cache.KeyCatalogSnapshot); found {
		s.metrics.CatalogLoadsTotal.WithLabelValues("cache").Inc()
		return val.(*domain.Catalog), nil
	}

	v, err, _ := s.group.Do(cache.KeyCatalogSnapshot, func() (interface{}, error) {
		// A load that finished between the miss above and this call already filled the cache.
		if val, found := s.cache.Get(cache.KeyCatalogSnapshot); found {
			return val, nil
		}
		gen := s.generation.Load()
		start := time.Now()
		cat, err := s.repo.LoadCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		s.metrics.CatalogLoadDuration.Observe(time.Since(start).Seconds())
		s.metrics.CatalogLoadsTotal.WithLabelValues("store").Inc()
		s.metrics.CatalogCarriers.Set(float64(len(cat.Carriers)))

		if err := cat.Validate(); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Msg("Catalog snapshot violates an invariant")
		}

		if s.generation.Load() == gen {
			s.cache.Set(cache.KeyCatalogSnapshot, cat, s.ttl)
		}
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Catalog), nil
}

// Invalidate drops the cached snapshot so the next Get reloads it.
func (s *CatalogSnapshot) Invalidate() {
	s.generation.Add(1)
	s.group.Forget(cache.KeyCatalogSnapshot)
	s.cache.Delete(cache.KeyCatalogSnapshot)
}
