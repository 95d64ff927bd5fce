package optcache

import "context"

// Updater derives the optimistic next version of an item. Must be pure.
type Updater[T any] func(current T) T

// UpdateOptions configure an Update lifecycle.
type UpdateOptions[T any] struct {
	Cache    Accessor[T]
	Key      Key
	Resolver Resolver[T]
	Logger   Logger
	Hooks    Hooks
	Settle   SettleFn

	// FallbackID is the target identity used when Begin is given no item.
	FallbackID ID
}

// Update rewrites a cached item optimistically, then accepts the server's
// returned item verbatim once the write settles.
type Update[T any] struct {
	lifecycle[T]
	fallbackID ID
}

func NewUpdate[T any](opts UpdateOptions[T]) (*Update[T], error) {
	lc, err := newLifecycle("update", opts.Cache, opts.Key, opts.Resolver, opts.Logger, opts.Hooks, opts.Settle)
	if err != nil {
		return nil, err
	}
	return &Update[T]{lifecycle: lc, fallbackID: opts.FallbackID}, nil
}

// UpdateContext is the state one update run threads between phases.
type UpdateContext[T any] struct {
	Snapshot Entry[T]
	HadEntry bool

	// ID is the resolved target identity.
	ID ID

	// Applied is false when the target was not found: the cache was left
	// unchanged and the mutation proceeds regardless.
	Applied bool

	// Item is the optimistically updated item, valid when Applied.
	Item T
}

// Begin resolves the target (from item, else FallbackID), finds it in the
// entry, applies the pure updater and replaces it in place. A missing
// target skips the optimistic step silently.
func (u *Update[T]) Begin(ctx context.Context, item *T, apply Updater[T]) (*UpdateContext[T], error) {
	id, err := u.targetID(item, u.fallbackID)
	if err != nil {
		return nil, err
	}

	snap, had, err := u.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	mctx := &UpdateContext[T]{Snapshot: snap, HadEntry: had, ID: id}
	if !had {
		u.hooks.OptimisticSkipped(u.key.String(), "update", "not_found")
		return mctx, nil
	}

	found, pos, err := snap.Find(id, u.resolver)
	if err != nil {
		return nil, err
	}
	if !pos.Found() {
		u.hooks.OptimisticSkipped(u.key.String(), "update", "not_found")
		return mctx, nil
	}

	updated := found
	switch {
	case apply != nil:
		updated = apply(found)
	case item != nil:
		updated = *item
	}

	next, err := snap.Replace(id, updated, u.resolver)
	if err != nil {
		return nil, err
	}
	if err := u.cache.Write(ctx, u.key, next); err != nil {
		return nil, err
	}
	mctx.Applied = true
	mctx.Item = updated
	u.hooks.OptimisticApplied(u.key.String(), "update")
	u.log.Debug("optimistic update applied", Fields{"key": u.key.String(), "id": id})
	return mctx, nil
}

// OnSuccess replaces the cached item with the server-returned one, keyed by
// the identity the server result itself resolves to - not the original
// request identity.
func (u *Update[T]) OnSuccess(ctx context.Context, _ *UpdateContext[T], result T) error {
	serverID, err := ResolveID(result, u.resolver)
	if err != nil {
		return err
	}
	cur, ok, err := u.cache.Read(ctx, u.key)
	if err != nil || !ok {
		return err
	}
	next, err := cur.Replace(serverID, result, u.resolver)
	if err != nil {
		return err
	}
	if err := u.cache.Write(ctx, u.key, next); err != nil {
		return err
	}
	u.log.Debug("update reconciled", Fields{"key": u.key.String(), "server_id": serverID})
	return nil
}

// OnError restores the snapshot captured at Begin.
func (u *Update[T]) OnError(ctx context.Context, mctx *UpdateContext[T], _ error) error {
	return u.restore(ctx, mctx.Snapshot, mctx.HadEntry, "update")
}

// OnSettle runs after success or failure alike. Default no-op.
func (u *Update[T]) OnSettle(ctx context.Context, _ *UpdateContext[T], runErr error) error {
	return u.onSettle(ctx, runErr)
}

// Run drives the full lifecycle. The write receives the optimistically
// updated item when the optimistic step applied, else the given item.
func (u *Update[T]) Run(ctx context.Context, item *T, apply Updater[T], write WriteFn[T]) (T, error) {
	var zero T
	mctx, err := u.Begin(ctx, item, apply)
	if err != nil {
		return zero, err
	}
	payload := zero
	switch {
	case mctx.Applied:
		payload = mctx.Item
	case item != nil:
		payload = *item
	}
	result, werr := write(ctx, payload)
	if werr != nil {
		if err := u.OnError(ctx, mctx, werr); err != nil {
			u.log.Error("rollback failed", Fields{"key": u.key.String(), "err": err})
		}
		_ = u.OnSettle(ctx, mctx, werr)
		return zero, werr
	}
	if err := u.OnSuccess(ctx, mctx, result); err != nil {
		_ = u.OnSettle(ctx, mctx, err)
		return result, err
	}
	return result, u.OnSettle(ctx, mctx, nil)
}
