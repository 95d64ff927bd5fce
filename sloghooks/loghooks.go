// Package sloghooks bridges optcache.Hooks onto log/slog with sampling for
// the chatty events.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/optcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	AppliedEvery uint64 // OptimisticApplied events
	RefetchEvery uint64 // RefetchCanceled events
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	appliedCtr atomic.Uint64
	refetchCtr atomic.Uint64
}

var _ optcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) OptimisticApplied(key, op string) {
	if h.l == nil || !sample(h.opts.AppliedEvery, &h.appliedCtr) {
		return
	}
	h.l.Debug("optcache.optimistic_applied",
		"key", key,
		"op", op)
}

func (h *Hooks) OptimisticSkipped(key, op, reason string) {
	if h.l == nil {
		return
	}
	h.l.Debug("optcache.optimistic_skipped",
		"key", key,
		"op", op,
		"reason", reason)
}

func (h *Hooks) RolledBack(key, op string) {
	if h.l == nil {
		return
	}
	h.l.Warn("optcache.rolled_back",
		"key", key,
		"op", op)
}

func (h *Hooks) TempIDReconciled(key string, tempID, serverID optcache.ID) {
	if h.l == nil {
		return
	}
	h.l.Debug("optcache.temp_id_reconciled",
		"key", key,
		"temp_id", tempID,
		"server_id", serverID)
}

func (h *Hooks) UndoExpired(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("optcache.undo_expired",
		"key", key)
}

func (h *Hooks) RestoreRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("optcache.restore_rejected",
		"key", key,
		"msg", "undo requested after commit; item is gone for good")
}

func (h *Hooks) RefetchCanceled(key string) {
	if h.l == nil || !sample(h.opts.RefetchEvery, &h.refetchCtr) {
		return
	}
	h.l.Debug("optcache.refetch_canceled",
		"key", key)
}
