// Package cache provides byte caches backed by Redis or process memory and
// a caching decorator for the reference directory.
package cache

import (
	"context"
	"time"
)

// Store is a byte cache with per-entry expiry
type Store interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl; a zero ttl keeps it until deleted
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
