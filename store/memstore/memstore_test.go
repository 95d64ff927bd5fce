package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/unkn0wn-root/optcache"
)

type note struct {
	ID   any
	Body string
}

func newStore(t *testing.T) *Store[note] {
	t.Helper()
	s, err := New[note](DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }},
		{"zero shards", func(c *Config) { c.NumShards = 0 }},
		{"zero ttl", func(c *Config) { c.TTL = 0 }},
		{"eviction percentage out of range", func(c *Config) { c.EvictionPercentage = 101 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mod(&cfg)
			if _, err := New[note](cfg); err == nil {
				t.Fatalf("want config error")
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestReadYourWrite(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	key := optcache.NewKey("notes", "all")

	if _, ok, _ := s.Read(ctx, key); ok {
		t.Fatalf("fresh store must miss")
	}

	want := optcache.Flat([]note{{ID: 1, Body: "a"}})
	if err := s.Write(ctx, key, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, ok, err := s.Read(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Read after Write: ok=%v err=%v", ok, err)
	}
	if len(got.Items()) != 1 || got.Items()[0].Body != "a" {
		t.Fatalf("read back %+v", got.Items())
	}
}

func TestZeroEntryClears(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	key := optcache.NewKey("notes", "all")

	_ = s.Write(ctx, key, optcache.Flat([]note{{ID: 1}}))
	if err := s.Write(ctx, key, optcache.Entry[note]{}); err != nil {
		t.Fatalf("clearing write: %v", err)
	}
	if _, ok, _ := s.Read(ctx, key); ok {
		t.Fatalf("zero entry must clear the key")
	}
}

func TestRefetchWritesResult(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	key := optcache.NewKey("notes", "all")

	s.Refetch(ctx, key, func(context.Context) (optcache.Entry[note], error) {
		return optcache.Flat([]note{{ID: 7}}), nil
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if e, ok, _ := s.Read(ctx, key); ok && len(e.Items()) == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("refetch result never landed")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCancelRefetchDropsLateResult(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	key := optcache.NewKey("notes", "all")

	// the fetch holds until its context is canceled, then still returns a
	// value - the store must discard it
	s.Refetch(ctx, key, func(fctx context.Context) (optcache.Entry[note], error) {
		<-fctx.Done()
		return optcache.Flat([]note{{ID: 99}}), nil
	})

	if err := s.CancelRefetch(ctx, key); err != nil {
		t.Fatalf("CancelRefetch: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if _, ok, _ := s.Read(ctx, key); ok {
		t.Fatalf("canceled refetch still wrote its result")
	}
}

func TestNewerRefetchWins(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	key := optcache.NewKey("notes", "all")

	first := make(chan struct{})
	s.Refetch(ctx, key, func(fctx context.Context) (optcache.Entry[note], error) {
		<-first
		return optcache.Flat([]note{{ID: "stale"}}), nil
	})
	// starting a newer refetch for the same key cancels the first
	s.Refetch(ctx, key, func(context.Context) (optcache.Entry[note], error) {
		return optcache.Flat([]note{{ID: "fresh"}}), nil
	})
	close(first)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if e, ok, _ := s.Read(ctx, key); ok {
			time.Sleep(20 * time.Millisecond) // let the stale goroutine finish
			e, _, _ = s.Read(ctx, key)
			if e.Items()[0].ID != "fresh" {
				t.Fatalf("stale refetch overwrote the newer one: %v", e.Items())
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("refetch result never landed")
		}
		time.Sleep(time.Millisecond)
	}
}
