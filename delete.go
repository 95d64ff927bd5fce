package optcache

import "context"

// DeleteOptions configure a Delete lifecycle.
type DeleteOptions[T any] struct {
	Cache    Accessor[T]
	Key      Key
	Resolver Resolver[T]
	Logger   Logger
	Hooks    Hooks
	Settle   SettleFn

	// FallbackID is the target identity used when Begin is given no item.
	FallbackID ID
}

// Delete removes a cached item optimistically; a confirmed write needs no
// further cache action, a failed one restores the snapshot.
type Delete[T any] struct {
	lifecycle[T]
	fallbackID ID
}

func NewDelete[T any](opts DeleteOptions[T]) (*Delete[T], error) {
	lc, err := newLifecycle("delete", opts.Cache, opts.Key, opts.Resolver, opts.Logger, opts.Hooks, opts.Settle)
	if err != nil {
		return nil, err
	}
	return &Delete[T]{lifecycle: lc, fallbackID: opts.FallbackID}, nil
}

// DeleteContext is the state one delete run threads between phases.
type DeleteContext[T any] struct {
	Snapshot Entry[T]
	HadEntry bool
	ID       ID
}

// Begin resolves the target (from item, else FallbackID) and removes it
// from the entry, flat or paginated alike.
func (d *Delete[T]) Begin(ctx context.Context, item *T) (*DeleteContext[T], error) {
	id, err := d.targetID(item, d.fallbackID)
	if err != nil {
		return nil, err
	}

	snap, had, err := d.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	mctx := &DeleteContext[T]{Snapshot: snap, HadEntry: had, ID: id}
	if !had {
		return mctx, nil
	}

	next, err := snap.Remove(id, d.resolver)
	if err != nil {
		return nil, err
	}
	if err := d.cache.Write(ctx, d.key, next); err != nil {
		return nil, err
	}
	d.hooks.OptimisticApplied(d.key.String(), "delete")
	d.log.Debug("optimistic delete applied", Fields{"key": d.key.String(), "id": id})
	return mctx, nil
}

// OnSuccess is a no-op: the item is already gone from the cache.
func (d *Delete[T]) OnSuccess(ctx context.Context, mctx *DeleteContext[T]) error {
	d.log.Debug("delete confirmed", Fields{"key": d.key.String(), "id": mctx.ID})
	return nil
}

// OnError restores the snapshot captured at Begin.
func (d *Delete[T]) OnError(ctx context.Context, mctx *DeleteContext[T], _ error) error {
	return d.restore(ctx, mctx.Snapshot, mctx.HadEntry, "delete")
}

// OnSettle runs after success or failure alike. Default no-op.
func (d *Delete[T]) OnSettle(ctx context.Context, _ *DeleteContext[T], runErr error) error {
	return d.onSettle(ctx, runErr)
}

// Run drives the full lifecycle around the caller's delete write.
func (d *Delete[T]) Run(ctx context.Context, item *T, del DeleteFn) error {
	mctx, err := d.Begin(ctx, item)
	if err != nil {
		return err
	}
	if werr := del(ctx, mctx.ID); werr != nil {
		if err := d.OnError(ctx, mctx, werr); err != nil {
			d.log.Error("rollback failed", Fields{"key": d.key.String(), "err": err})
		}
		_ = d.OnSettle(ctx, mctx, werr)
		return werr
	}
	if err := d.OnSuccess(ctx, mctx); err != nil {
		_ = d.OnSettle(ctx, mctx, err)
		return err
	}
	return d.OnSettle(ctx, mctx, nil)
}
