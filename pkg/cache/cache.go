// Package cache stores pipeline outputs keyed by content hashes.
//
// Three backends implement [Cache]:
//
//   - [NullCache] never stores anything; used with --no-cache and in tests.
//   - [FileCache] keeps JSON-wrapped entries under a directory, the default
//     for the CLI (~/.cache/serdegraph).
//   - [RedisCache] shares entries between machines through Redis.
//
// Keys come from a [Keyer] so that callers never build key strings by hand.
// Reports are keyed by the hash of the model, the rules and the build
// options; artifacts by the hash of the report plus the render options. A
// changed input therefore never hits a stale entry, and TTLs only bound
// disk usage.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry type.
const (
	TTLReport   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with optional expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. A zero ttl passed to Set stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear drops every entry of c if the backend supports it and reports
// whether it did.
func Clear(ctx context.Context, c Cache) (bool, error) {
	cl, ok := c.(Clearer)
	if !ok {
		return false, nil
	}
	return true, cl.Clear(ctx)
}

// Counter is implemented by backends that can count their entries.
type Counter interface {
	Len() (int, error)
}

// Len counts the entries of c and reports whether the backend can count.
func Len(c Cache) (int, bool, error) {
	cn, ok := c.(Counter)
	if !ok {
		return 0, false, nil
	}
	n, err := cn.Len()
	return n, true, err
}
