// Package cache stores serialized lattices and query results between runs.
//
// # Backends
//
//   - [FileCache]: JSON entries on disk, for the CLI (~/.cache/pathlattice)
//   - [MemoryCache]: a bounded LRU, for tests and single-process servers
//   - [RedisCache]: shared across server instances
//   - [NullCache]: caching disabled
//
// All backends store opaque bytes under string keys produced by a [Keyer],
// with a per-entry TTL. A zero TTL means the entry never expires.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Default TTLs.
const (
	// TTLLattice is how long a built lattice stays cached. Lattices depend
	// only on their inputs, so they can live long.
	TTLLattice = 7 * 24 * time.Hour

	// TTLResults is how long top-K results stay cached.
	TTLResults = 24 * time.Hour

	// TTLArtifact is how long rendered diagrams stay cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// NullCache discards every entry. Runners without a cache and the CLI's
// --no-cache flag use it, so every stage recomputes.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
