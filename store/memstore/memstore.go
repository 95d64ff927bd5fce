// Package memstore is an in-process, typed Accessor backed by
// viccon/sturdyc. Entries are stored as live values - no serialization -
// which gives the strict read-your-write behaviour optimistic mutations
// depend on.
package memstore

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/unkn0wn-root/optcache"
	"github.com/unkn0wn-root/optcache/internal/inflight"
)

// Config holds the sturdyc sizing knobs.
type Config struct {
	// Capacity defines the maximum number of entries the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent
	// access. Must be greater than 0.
	NumShards int

	// TTL is the time-to-live for cached entries. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired
	// entries. Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "memstore config error in field " + e.Field + ": " + e.Message
}

// FetchFn loads a fresh entry from the source of truth during Refetch.
type FetchFn[T any] func(ctx context.Context) (optcache.Entry[T], error)

// Store implements optcache.Accessor[T] over a sturdyc client plus an
// in-flight refetch registry.
type Store[T any] struct {
	client   *sturdyc.Client[optcache.Entry[T]]
	inflight *inflight.Registry
}

var _ optcache.Accessor[any] = (*Store[any])(nil)

func New[T any](cfg Config) (*Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}
	client := sturdyc.New[optcache.Entry[T]](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		opts...,
	)
	return &Store[T]{client: client, inflight: inflight.NewRegistry()}, nil
}

// Read returns the current entry snapshot; ok=false on miss.
func (s *Store[T]) Read(_ context.Context, key optcache.Key) (optcache.Entry[T], bool, error) {
	e, ok := s.client.Get(key.String())
	return e, ok, nil
}

// Write replaces the entry. A zero entry clears the key.
func (s *Store[T]) Write(_ context.Context, key optcache.Key, e optcache.Entry[T]) error {
	k := key.String()
	if e.IsZero() {
		s.client.Delete(k)
		return nil
	}
	s.client.Set(k, e)
	return nil
}

// CancelRefetch stops the in-flight background refetch for key, if any. A
// refetch launched via Refetch observes the cancellation and drops its
// result instead of writing it.
func (s *Store[T]) CancelRefetch(_ context.Context, key optcache.Key) error {
	s.inflight.Cancel(key.String())
	return nil
}

// Refetch runs fetch on a background goroutine and writes its result into
// the store - unless CancelRefetch (or a newer Refetch for the same key)
// fires first, in which case the late result is discarded. Returns
// immediately.
func (s *Store[T]) Refetch(ctx context.Context, key optcache.Key, fetch FetchFn[T]) {
	k := key.String()
	fctx, tok := s.inflight.Start(ctx, k)
	go func() {
		defer s.inflight.Finish(k, tok)
		e, err := fetch(fctx)
		if err != nil || fctx.Err() != nil {
			return
		}
		_ = s.Write(fctx, key, e)
	}()
}
