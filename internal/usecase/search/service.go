// Package search implements the server-side query coordinator: cache-aside
// over the result cache with single-flight deduplication of concurrent
// identical misses.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/crimedex/crimedex/internal/domain"
	"github.com/crimedex/crimedex/internal/domain/search/request"
	"github.com/crimedex/crimedex/internal/domain/search/result"
)

// Service coordinates search queries against the cache and the index.
//
// Request validation happens at construction (request.New), so a Service
// only ever sees well-formed requests; a ValidationError fails before any
// cache or index work.
type Service struct {
	cache   Cache
	index   Index
	flights *flightGroup
	logger  *zap.Logger

	sharedTotal prometheus.Counter
	indexTotal  *prometheus.CounterVec
}

// New creates a search service.
func New(cache Cache, index Index, logger *zap.Logger) *Service {
	return &Service{
		cache:   cache,
		index:   index,
		flights: newFlightGroup(),
		logger:  logger,
	}
}

// WithMetrics attaches the single-flight and index outcome counters.
// sharedTotal counts callers that attached to an in-flight query; indexTotal
// is a counter vec with label "outcome".
func (s *Service) WithMetrics(sharedTotal prometheus.Counter, indexTotal *prometheus.CounterVec) *Service {
	s.sharedTotal = sharedTotal
	s.indexTotal = indexTotal
	return s
}

// Search returns the result page for a request: from cache when fresh,
// otherwise from the index with at most one upstream call per cache key at
// any instant. All concurrent callers for one key observe the same result or
// the same error. The returned result is immutable; callers must not modify
// it.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Result, error) {
	key := req.CacheKey()

	if res, ok := s.cache.Get(ctx, key); ok {
		return res, nil
	}

	res, shared, err := s.flights.Do(ctx, key, func() (result.Result, error) {
		r, qerr := s.index.Query(ctx, req)
		if qerr != nil {
			s.incIndex(outcomeOf(qerr))
			// Failures are never cached: the next request retries upstream.
			return result.Result{}, fmt.Errorf("query index: %w", qerr)
		}
		s.incIndex("ok")
		s.cache.Set(ctx, key, r)
		return r, nil
	})
	if shared {
		if s.sharedTotal != nil {
			s.sharedTotal.Inc()
		}
		s.logger.Debug("search joined in-flight query", zap.String("cache_key", key))
	}
	if err != nil {
		return result.Result{}, err
	}
	return res, nil
}

// Invalidate drops the cached entry for a request shape. The same normalizer
// derives the key, so an invalidation always hits the entry its request
// produced.
func (s *Service) Invalidate(ctx context.Context, req request.Request) error {
	if err := s.cache.Invalidate(ctx, req.CacheKey()); err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}
	return nil
}

// FlushCache drops every cached result page.
func (s *Service) FlushCache(ctx context.Context) error {
	if err := s.cache.FlushAll(ctx); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	return nil
}

func (s *Service) incIndex(outcome string) {
	if s.indexTotal != nil {
		s.indexTotal.WithLabelValues(outcome).Inc()
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
