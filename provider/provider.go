// Package provider defines the byte-store abstraction store/bytestore sits
// on.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no
// prepended/appended metadata, no re-encoding, no mutation). If a store
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Set.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent
// use.
//
// bytestore relies on read-your-write semantics: a Get directly after a
// successful Set must see the written bytes. Stores with asynchronous or
// lossy admission (e.g. ristretto) are not suitable backends - a rejected
// optimistic write would silently undo the whole point of the mutation.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry (or
	// the store's global window when per-entry TTLs are unsupported).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
