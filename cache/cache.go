// Package cache holds record caches that sit in front of Model.Find.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized records by key.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores val under key. A ttl <= 0 keeps the entry until deleted.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Delete removes key; removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the cache's resources.
	Close() error
}
