// Package asynchook decouples Hooks from the mutation path: events go into
// a bounded queue and are delivered by worker goroutines. When the queue is
// full, events are dropped rather than blocking a lifecycle.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{AppliedEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cr, _ := optcache.NewCreate(optcache.CreateOptions[Todo]{
//	    Cache: store,
//	    Key:   key,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/optcache"
)

type Hooks struct {
	inner optcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ optcache.Hooks = (*Hooks)(nil)

func New(inner optcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) OptimisticApplied(key, op string) {
	h.try(func() { h.inner.OptimisticApplied(key, op) })
}
func (h *Hooks) OptimisticSkipped(key, op, reason string) {
	h.try(func() { h.inner.OptimisticSkipped(key, op, reason) })
}
func (h *Hooks) RolledBack(key, op string) { h.try(func() { h.inner.RolledBack(key, op) }) }
func (h *Hooks) TempIDReconciled(key string, tempID, serverID optcache.ID) {
	h.try(func() { h.inner.TempIDReconciled(key, tempID, serverID) })
}
func (h *Hooks) UndoExpired(key string)      { h.try(func() { h.inner.UndoExpired(key) }) }
func (h *Hooks) RestoreRejected(key string)  { h.try(func() { h.inner.RestoreRejected(key) }) }
func (h *Hooks) RefetchCanceled(key string)  { h.try(func() { h.inner.RefetchCanceled(key) }) }
