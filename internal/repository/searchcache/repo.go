// Package searchcache stores search result pages in a key-value store.
//
// The cache is a pure performance layer, never a system of record: every
// backend failure degrades to a miss and is logged, so correctness never
// depends on cache availability.
package searchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/crimedex/crimedex/internal/db"
	"github.com/crimedex/crimedex/internal/domain/search/result"
)

const keyPrefix = "crimedex:search:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	FlushAll(ctx context.Context) error
}

// envelope is the stored wire form of a cache entry. StoredAt lets Get apply
// lazy expiry itself even when the backend's own TTL is coarser.
type envelope struct {
	StoredAt int64         `json:"stored_at_unix_ms"`
	Result   result.Result `json:"result"`
}

// Cache is the search result cache repository.
type Cache struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a result cache with a fixed TTL.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the cached result for a key, or ok=false on miss, expiry, or
// any backend failure.
func (c *Cache) Get(ctx context.Context, key string) (result.Result, bool) {
	data, err := c.store.Get(ctx, keyPrefix+key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("cache backend get failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		}
		c.incCache("miss")
		return result.Result{}, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("failed to decode cache entry, treating as miss",
			zap.String("key", key), zap.Error(err))
		c.incCache("miss")
		return result.Result{}, false
	}

	if c.expired(env.StoredAt) {
		// Best effort: the backend TTL should have collected it already.
		_ = c.store.Del(ctx, keyPrefix+key)
		c.incCache("miss")
		return result.Result{}, false
	}

	c.incCache("hit")
	return env.Result, true
}

// Set stores a result page under the key with the configured TTL.
// Failures are logged and swallowed: a write that never lands costs one
// extra index call later, nothing more.
func (c *Cache) Set(ctx context.Context, key string, res result.Result) {
	env := envelope{
		StoredAt: c.now().UnixMilli(),
		Result:   res,
	}
	data, err := json.Marshal(env)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, keyPrefix+key, data, c.ttl); err != nil {
		c.logger.Warn("cache backend set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.store.Del(ctx, keyPrefix+key); err != nil {
		return fmt.Errorf("invalidate cache entry: %w", err)
	}
	return nil
}

// FlushAll drops every cached entry.
func (c *Cache) FlushAll(ctx context.Context) error {
	if err := c.store.FlushAll(ctx); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	return nil
}

func (c *Cache) expired(storedAtUnixMilli int64) bool {
	if c.ttl <= 0 {
		return false
	}
	storedAt := time.UnixMilli(storedAtUnixMilli)
	return c.now().Sub(storedAt) > c.ttl
}

func (c *Cache) incCache(outcome string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(outcome).Inc()
	}
}
