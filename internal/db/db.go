// Package db defines the key-value store facade backing the search cache.
package db

import (
	"context"
	"time"
)

// Store is the cache backing store. The cache layer never depends on a
// concrete driver: memory for single-process deployments, redis for shared
// ones.
type Store interface {
	KVStore
	Pinger
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// KVStore provides key-value operations with per-entry TTL.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	FlushAll(ctx context.Context) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
