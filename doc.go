// Package optcache implements optimistic mutation helpers for client-side
// query caches. Cached collections are updated before the remote write
// settles; on success the entry is reconciled with the server result, on
// failure it is restored to the pre-mutation snapshot.
//
// Components:
//   - Accessor[T]: the injected cache collaborator (cancel refetch, read
//     snapshot, write snapshot). Reference implementations live in
//     store/memstore (typed, in-process) and store/bytestore (serialized
//     via Codec over a byte Provider).
//   - Entry[T] / Page[T]: closed tagged union over the two cache shapes,
//     a flat item sequence or pages plus page params ("infinite" shape).
//   - Pure transforms: FindByID, ReplaceByID, RemoveByID, Prepend,
//     ReplaceTempID, each available on flat sequences and on whole entries.
//   - Lifecycles: Create, Update, Delete, DeleteWithUndo. Each exposes
//     Begin/OnSuccess/OnError/OnSettle and a Run helper that drives the
//     whole protocol around a caller-supplied write function.
//
// Lifecycle pattern:
//
//	cr, _ := optcache.NewCreate(optcache.CreateOptions[Todo]{Cache: store, Key: key})
//	todo, err := cr.Run(ctx, draft, api.CreateTodo) // optimistic insert, then reconcile
//
// A failed write always leaves the entry exactly as it was before Begin.
// Two overlapping mutations on one key race last-writer-wins; the only
// cross-mutation guard is that Begin cancels in-flight refetches for its key.
package optcache
