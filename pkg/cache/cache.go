// Package cache provides the local key-value cache that backs the
// persistence gateway.
//
// # Overview
//
// Every completed drag is written to the local cache synchronously before
// the remote store is contacted, so a layout survives restarts even when the
// remote backend is unreachable. Values are opaque bytes; the gateway stores
// JSON-encoded layout records.
//
// # Implementations
//
//   - [FileCache]: one JSON file per key under a hashed two-level directory
//   - [SQLiteCache]: a single SQLite database file (pure Go driver)
//   - [NullCache]: never stores anything
//
// # Keys
//
// A [Keyer] builds keys for the two things that are cached: persisted
// layouts ("layout:three-columns/main") and compiled geometry
// ("compile:<sha256>"). [ScopedKeyer] prefixes keys for per-user isolation.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte-oriented key-value cache with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// keyType returns the prefix of key up to the first colon, used to label
// cache hook events.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
