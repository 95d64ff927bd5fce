package optcache

import (
	"context"
	"sync"
	"time"
)

// DefaultUndoWindow is how long an optimistic delete stays undoable.
const DefaultUndoWindow = 5 * time.Second

// DeleteWithUndoOptions configure a DeleteWithUndo lifecycle.
type DeleteWithUndoOptions[T any] struct {
	Cache    Accessor[T]
	Key      Key
	Resolver Resolver[T]
	Logger   Logger
	Hooks    Hooks
	Settle   SettleFn

	// FallbackID is the target identity used when Begin is given no item.
	FallbackID ID

	// Window is the undo window; 0 => DefaultUndoWindow. When it elapses
	// the delete commits: the flag flips and undo is refused, but no cache
	// action runs - the removal already happened optimistically at Begin.
	Window time.Duration
}

// DeleteWithUndo behaves like Delete but captures the removed item and
// keeps it restorable until the undo window commits.
//
// The underlying write is NOT cancelled by an undo; callers are expected to
// invoke Restore only before commit and to ignore the write's own
// settlement afterwards. A late-arriving success after an undo only flips
// the committed flag and performs no further cache mutation.
type DeleteWithUndo[T any] struct {
	lifecycle[T]
	fallbackID ID
	window     time.Duration
}

func NewDeleteWithUndo[T any](opts DeleteWithUndoOptions[T]) (*DeleteWithUndo[T], error) {
	lc, err := newLifecycle("delete_undo", opts.Cache, opts.Key, opts.Resolver, opts.Logger, opts.Hooks, opts.Settle)
	if err != nil {
		return nil, err
	}
	return &DeleteWithUndo[T]{
		lifecycle:  lc,
		fallbackID: opts.FallbackID,
		window:     coalesce(opts.Window, DefaultUndoWindow),
	}, nil
}

// UndoContext is the state of one delete-with-undo run. Unlike the other
// contexts it outlives the write settlement: it stays relevant until the
// undo timer fires or Restore is called, whichever happens first. The
// timer fires on its own goroutine, so the commit state is mutex-guarded.
type UndoContext[T any] struct {
	Snapshot Entry[T]
	HadEntry bool
	ID       ID

	mu        sync.Mutex
	deleted   *T
	timer     *time.Timer
	committed bool
	restored  bool
}

// DeletedItem returns the item captured at Begin, ok=false when the target
// could not be located (undo then has nothing to reinsert).
func (u *UndoContext[T]) DeletedItem() (T, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.deleted == nil {
		var zero T
		return zero, false
	}
	return *u.deleted, true
}

// Committed reports whether the delete is final and undo no longer honored.
func (u *UndoContext[T]) Committed() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.committed
}

// commit flips the flag and clears the timer. Idempotent; reports whether
// this call was the one that committed.
func (u *UndoContext[T]) commit() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.commitLocked()
}

func (u *UndoContext[T]) commitLocked() bool {
	if u.committed {
		return false
	}
	u.committed = true
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
	return true
}

// Begin locates and captures the target item, removes it exactly as Delete
// does, and arms the one-shot undo timer. When the target cannot be
// located the context still returns, with no captured item.
func (d *DeleteWithUndo[T]) Begin(ctx context.Context, item *T) (*UndoContext[T], error) {
	id, err := d.targetID(item, d.fallbackID)
	if err != nil {
		return nil, err
	}

	snap, had, err := d.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	mctx := &UndoContext[T]{Snapshot: snap, HadEntry: had, ID: id}

	if had {
		found, pos, err := snap.Find(id, d.resolver)
		if err != nil {
			return nil, err
		}
		if pos.Found() {
			mctx.deleted = &found
		}
		next, err := snap.Remove(id, d.resolver)
		if err != nil {
			return nil, err
		}
		if err := d.cache.Write(ctx, d.key, next); err != nil {
			return nil, err
		}
		d.hooks.OptimisticApplied(d.key.String(), "delete")
	}

	mctx.timer = time.AfterFunc(d.window, func() {
		if mctx.commit() {
			d.hooks.UndoExpired(d.key.String())
			d.log.Debug("undo window elapsed", Fields{"key": d.key.String(), "id": id})
		}
	})
	d.log.Debug("optimistic delete applied (undoable)", Fields{"key": d.key.String(), "id": id, "window": d.window})
	return mctx, nil
}

// OnSuccess commits: server confirmed, no more undo needed. Safe to call
// more than once.
func (d *DeleteWithUndo[T]) OnSuccess(ctx context.Context, mctx *UndoContext[T]) error {
	mctx.commit()
	d.log.Debug("delete confirmed", Fields{"key": d.key.String(), "id": mctx.ID})
	return nil
}

// OnError commits (the restored snapshot holds the item again, undo is
// meaningless) and puts the snapshot back.
func (d *DeleteWithUndo[T]) OnError(ctx context.Context, mctx *UndoContext[T], _ error) error {
	mctx.commit()
	return d.restore(ctx, mctx.Snapshot, mctx.HadEntry, "delete")
}

// OnSettle runs after success or failure alike. Default no-op.
func (d *DeleteWithUndo[T]) OnSettle(ctx context.Context, _ *UndoContext[T], runErr error) error {
	return d.onSettle(ctx, runErr)
}

// Restore undoes the optimistic delete: the captured item goes back to the
// head of the collection (or first page, or a fresh one-item entry).
// Refused with ErrCommitted once the window committed or after a previous
// restore; the later timer firing then cannot re-remove anything - it only
// ever flips the flag.
func (d *DeleteWithUndo[T]) Restore(ctx context.Context, mctx *UndoContext[T]) error {
	mctx.mu.Lock()
	if mctx.committed || mctx.restored {
		mctx.mu.Unlock()
		d.hooks.RestoreRejected(d.key.String())
		return ErrCommitted
	}
	mctx.restored = true
	if mctx.timer != nil {
		mctx.timer.Stop()
		mctx.timer = nil
	}
	deleted := mctx.deleted
	mctx.mu.Unlock()

	if deleted == nil {
		return nil // nothing was captured at Begin
	}
	if err := RestoreDeleted(ctx, d.cache, d.key, *deleted); err != nil {
		return err
	}
	d.log.Debug("delete undone", Fields{"key": d.key.String(), "id": mctx.ID})
	return nil
}

// Run drives the full lifecycle around the caller's delete write. Note Run
// returns when the write settles; the undo window may still be open.
func (d *DeleteWithUndo[T]) Run(ctx context.Context, item *T, del DeleteFn) (*UndoContext[T], error) {
	mctx, err := d.Begin(ctx, item)
	if err != nil {
		return nil, err
	}
	if werr := del(ctx, mctx.ID); werr != nil {
		if err := d.OnError(ctx, mctx, werr); err != nil {
			d.log.Error("rollback failed", Fields{"key": d.key.String(), "err": err})
		}
		_ = d.OnSettle(ctx, mctx, werr)
		return mctx, werr
	}
	if err := d.OnSuccess(ctx, mctx); err != nil {
		_ = d.OnSettle(ctx, mctx, err)
		return mctx, err
	}
	return mctx, d.OnSettle(ctx, mctx, nil)
}

// RestoreDeleted re-inserts a previously deleted item at the head of the
// entry under key: head of the flat sequence, head of the first page, or a
// fresh one-item entry when none exists. Callers own the pre-commit check;
// this function performs the insert unconditionally.
func RestoreDeleted[T any](ctx context.Context, cache Accessor[T], key Key, item T) error {
	cur, ok, err := cache.Read(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		cur = Entry[T]{}
	}
	return cache.Write(ctx, key, cur.Prepend(item))
}
