package optcache

import (
	"context"
	"fmt"
)

// WriteFn is the caller-supplied asynchronous write operation for create and
// update lifecycles. Errors are never retried here and always surface to the
// caller verbatim; retry policy belongs to the write function.
type WriteFn[T any] func(ctx context.Context, payload T) (T, error)

// DeleteFn is the caller-supplied write operation for the delete lifecycles.
type DeleteFn func(ctx context.Context, id ID) error

// SettleFn is the OnSettle extension point, invoked after every run
// regardless of outcome (runErr is nil on success). Typical use: schedule a
// cache invalidation/refetch. The default is a no-op.
type SettleFn func(ctx context.Context, runErr error) error

// lifecycle carries the collaborators every orchestrator shares. The cache
// accessor is always explicit - there is no ambient lookup; environments
// with a context-scoped accessor can wrap the constructors themselves.
type lifecycle[T any] struct {
	cache    Accessor[T]
	key      Key
	resolver Resolver[T]
	log      Logger
	hooks    Hooks
	settle   SettleFn
}

func newLifecycle[T any](op string, cache Accessor[T], key Key, resolver Resolver[T], log Logger, hooks Hooks, settle SettleFn) (lifecycle[T], error) {
	if cache == nil {
		return lifecycle[T]{}, fmt.Errorf("optcache: %s: cache accessor is required", op)
	}
	if len(key) == 0 {
		return lifecycle[T]{}, fmt.Errorf("optcache: %s: cache key is required", op)
	}
	return lifecycle[T]{
		cache:    cache,
		key:      key,
		resolver: resolver,
		log:      coalesce[Logger](log, NopLogger{}),
		hooks:    coalesce[Hooks](hooks, NopHooks{}),
		settle:   settle,
	}, nil
}

// snapshot cancels in-flight refetches for the key and reads the current
// entry. Begin of every lifecycle starts here, before any transform.
func (l lifecycle[T]) snapshot(ctx context.Context) (Entry[T], bool, error) {
	if err := l.cache.CancelRefetch(ctx, l.key); err != nil {
		return Entry[T]{}, false, err
	}
	l.hooks.RefetchCanceled(l.key.String())
	return l.cache.Read(ctx, l.key)
}

// restore puts the entry back exactly as captured at Begin. An absent
// snapshot clears the key (zero Entry).
func (l lifecycle[T]) restore(ctx context.Context, snap Entry[T], had bool, op string) error {
	var e Entry[T]
	if had {
		e = snap
	}
	if err := l.cache.Write(ctx, l.key, e); err != nil {
		return err
	}
	l.hooks.RolledBack(l.key.String(), op)
	l.log.Debug("restored pre-mutation snapshot", Fields{"key": l.key.String(), "op": op})
	return nil
}

func (l lifecycle[T]) onSettle(ctx context.Context, runErr error) error {
	if l.settle == nil {
		return nil
	}
	return l.settle(ctx, runErr)
}

// targetID resolves the operation target: from the item when given,
// otherwise from the configured fallback identifier.
func (l lifecycle[T]) targetID(target *T, fallback ID) (ID, error) {
	if target != nil {
		return ResolveID(*target, l.resolver)
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, errInvalidItem()
}
