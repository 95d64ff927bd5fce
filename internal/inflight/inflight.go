// Package inflight tracks cancelable background refetches per storage key.
// Shared by the store implementations so CancelRefetch has real semantics:
// a canceled refetch must never write its late result over an optimistic
// entry.
package inflight

import (
	"context"
	"sync"
)

// Token identifies one registered refetch.
type Token struct {
	cancel context.CancelFunc
}

type Registry struct {
	mu sync.Mutex
	m  map[string]*Token
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]*Token)}
}

// Start registers a refetch for key and returns a context canceled by
// Cancel(key). A previous refetch for the same key is canceled first; last
// one wins.
func (r *Registry) Start(parent context.Context, key string) (context.Context, *Token) {
	ctx, cancel := context.WithCancel(parent)
	tok := &Token{cancel: cancel}
	r.mu.Lock()
	if prev, ok := r.m[key]; ok {
		prev.cancel()
	}
	r.m[key] = tok
	r.mu.Unlock()
	return ctx, tok
}

// Finish releases the refetch's resources and forgets it, unless a newer
// refetch already replaced it under the same key.
func (r *Registry) Finish(key string, tok *Token) {
	r.mu.Lock()
	if cur, ok := r.m[key]; ok && cur == tok {
		delete(r.m, key)
	}
	r.mu.Unlock()
	tok.cancel()
}

// Cancel stops the in-flight refetch for key, if any.
func (r *Registry) Cancel(key string) {
	r.mu.Lock()
	tok, ok := r.m[key]
	if ok {
		delete(r.m, key)
	}
	r.mu.Unlock()
	if ok {
		tok.cancel()
	}
}
