// Package cache stores rendered storefront responses between writes.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a byte-oriented key/value store with expiry and counters.
type Cache interface {
	// Get returns the value for key or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value for ttl; a non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Incr atomically increments the counter at key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	// Counter returns the current counter at key, or 0 if unset.
	Counter(ctx context.Context, key string) (int64, error)
	// Close releases resources held by the cache.
	Close() error
}
