// Package cache stores rendered augmentation results and box traces.
//
// A [Cache] is a byte store with per-entry TTLs. Three backends are provided:
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys are produced by a [Keyer] so that every component agrees on how an
// image, a recipe and a box map to a cache entry. [ScopedKeyer] adds a prefix
// when several tenants share one backend.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	// TTLArtifact is how long an encoded output image stays cached.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLTrace is how long a box-only trace stays cached.
	TTLTrace = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with ok == false and a nil error. A ttl of zero means
// the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
