// Package store defines the key-value storage abstraction used by cachefan.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended
// metadata, no re-encoding, no mutation).
//
// Every operation is advisory. An unreachable backend surfaces as Ready() ==
// false and miss-shaped results, never as a fault the write path has to
// handle: cached reads fall through to the authoritative data source.
package store

import (
	"context"
	"time"
)

// Store is a minimal byte store with TTLs and glob scan-delete.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// Implementations backed by a remote server degrade transport errors
	// to misses after their retry budget is spent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL (0 => implementation default).
	// Returns ok=false when the write was rejected or the store was not
	// ready.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// ScanDelete removes every key matching the glob pattern and returns
	// how many went. Implementations enumerate keys in bounded batches via
	// cursor iteration; they never issue one unbounded delete. A pattern
	// matching nothing is a no-op, not an error.
	ScanDelete(ctx context.Context, pattern string) (deleted int, err error)

	// Ready reports whether the backend is reachable. Not-ready stores
	// treat all operations as no-ops.
	Ready(ctx context.Context) bool

	// Close releases resources.
	Close(ctx context.Context) error
}
