package optcache

import "context"

// CreateOptions configure a Create lifecycle.
// Cache and Key are required; the rest default sensibly.
type CreateOptions[T any] struct {
	Cache    Accessor[T]
	Key      Key
	Resolver Resolver[T] // nil => default id convention
	Logger   Logger      // nil => NopLogger
	Hooks    Hooks       // nil => NopHooks
	Settle   SettleFn    // nil => no-op
}

// Create inserts an item optimistically under a temporary identity, then
// swaps in the server-assigned identity once the write settles.
type Create[T any] struct {
	lifecycle[T]
}

func NewCreate[T any](opts CreateOptions[T]) (*Create[T], error) {
	lc, err := newLifecycle("create", opts.Cache, opts.Key, opts.Resolver, opts.Logger, opts.Hooks, opts.Settle)
	if err != nil {
		return nil, err
	}
	return &Create[T]{lifecycle: lc}, nil
}

// CreateContext is the state one create run threads from Begin to its
// success/error handling. It is owned by that single run.
type CreateContext[T any] struct {
	// Snapshot is the entry as captured before the optimistic insert;
	// HadEntry is false when the key was absent.
	Snapshot Entry[T]
	HadEntry bool

	// TempID is the placeholder identity stamped into the optimistic item.
	// nil when the item carried no settable id field - reconciliation then
	// falls back to replacing by the server result's own identity.
	TempID ID

	// Item is the optimistic item as inserted into the cache.
	Item T
}

// Begin cancels in-flight refetches, snapshots the entry, stamps item with
// a fresh temporary id and inserts it at the head (flat), the head of page
// 0 (paginated) or as a fresh one-item entry (absent).
func (c *Create[T]) Begin(ctx context.Context, item T) (*CreateContext[T], error) {
	snap, had, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	mctx := &CreateContext[T]{Snapshot: snap, HadEntry: had}

	tempID := NewTempID()
	optimistic, ok := setItemID(item, tempID)
	if ok {
		mctx.TempID = tempID
	} else {
		c.hooks.OptimisticSkipped(c.key.String(), "create", "id_not_settable")
		optimistic = item
	}
	mctx.Item = optimistic

	var cur Entry[T]
	if had {
		cur = snap
	}
	if err := c.cache.Write(ctx, c.key, cur.Prepend(optimistic)); err != nil {
		return nil, err
	}
	c.hooks.OptimisticApplied(c.key.String(), "create")
	c.log.Debug("optimistic create applied", Fields{"key": c.key.String(), "temp_id": mctx.TempID})
	return mctx, nil
}

// OnSuccess reconciles the cache with the server result. When the context
// carries a recognized temporary id, that id is rewritten in place to the
// server-assigned one; otherwise the item matching the result's own
// identity is replaced wholesale (update-in-place fallback).
func (c *Create[T]) OnSuccess(ctx context.Context, mctx *CreateContext[T], result T) error {
	cur, ok, err := c.cache.Read(ctx, c.key)
	if err != nil {
		return err
	}
	if !ok {
		return nil // entry vanished since Begin; nothing to reconcile
	}

	serverID, err := ResolveID(result, c.resolver)
	if err != nil {
		return err
	}

	var next Entry[T]
	if mctx.TempID != nil && IsTempID(mctx.TempID) {
		next, err = cur.ReplaceTempID(mctx.TempID, serverID, c.resolver)
		if err == nil {
			c.hooks.TempIDReconciled(c.key.String(), mctx.TempID, serverID)
		}
	} else {
		next, err = cur.Replace(serverID, result, c.resolver)
	}
	if err != nil {
		return err
	}
	if err := c.cache.Write(ctx, c.key, next); err != nil {
		return err
	}
	c.log.Debug("create reconciled", Fields{"key": c.key.String(), "server_id": serverID})
	return nil
}

// OnError restores the snapshot captured at Begin. The write error itself
// is the caller's to handle; it is never swallowed here.
func (c *Create[T]) OnError(ctx context.Context, mctx *CreateContext[T], _ error) error {
	return c.restore(ctx, mctx.Snapshot, mctx.HadEntry, "create")
}

// OnSettle runs after success or failure alike. Default no-op.
func (c *Create[T]) OnSettle(ctx context.Context, _ *CreateContext[T], runErr error) error {
	return c.onSettle(ctx, runErr)
}

// Run drives the full lifecycle: Begin, await write, reconcile or roll
// back, settle. The write receives the caller's original item (without the
// temporary id). The write's error, if any, is returned verbatim.
func (c *Create[T]) Run(ctx context.Context, item T, write WriteFn[T]) (T, error) {
	var zero T
	mctx, err := c.Begin(ctx, item)
	if err != nil {
		return zero, err
	}
	result, werr := write(ctx, item)
	if werr != nil {
		if err := c.OnError(ctx, mctx, werr); err != nil {
			c.log.Error("rollback failed", Fields{"key": c.key.String(), "err": err})
		}
		_ = c.OnSettle(ctx, mctx, werr)
		return zero, werr
	}
	if err := c.OnSuccess(ctx, mctx, result); err != nil {
		_ = c.OnSettle(ctx, mctx, err)
		return result, err
	}
	return result, c.OnSettle(ctx, mctx, nil)
}
