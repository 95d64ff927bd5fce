package optcache

import "context"

// Accessor is the injected cache collaborator every lifecycle operates
// against. Implementations must be safe for concurrent use.
//
// The keyspace semantics mirror a query cache: one Entry per Key, reads
// return a snapshot, writes replace the whole entry. Writing the zero
// Entry clears the key (that is how rollback of a previously-absent entry
// is expressed).
//
// Reference implementations: store/memstore (typed, in-process, sturdyc
// backed) and store/bytestore (Codec + byte Provider, e.g. bigcache/redis).
type Accessor[T any] interface {
	// CancelRefetch stops any in-flight background refetch for key so a
	// late fetch result cannot clobber the optimistic write. Best-effort;
	// a no-op when nothing is in flight.
	CancelRefetch(ctx context.Context, key Key) error

	// Read returns the current entry snapshot. ok=false means the key is
	// absent. Errors are I/O-level only; absence is not an error.
	Read(ctx context.Context, key Key) (e Entry[T], ok bool, err error)

	// Write replaces the entry under key. A zero Entry deletes the key.
	Write(ctx context.Context, key Key, e Entry[T]) error
}
