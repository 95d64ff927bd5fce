// Package bytestore is an Accessor that keeps entries serialized: each
// Entry[T] is converted to an exported Record[T], encoded by a pluggable
// Codec and stored in a byte Provider (bigcache, redis, ...).
//
// Corrupt payloads are deleted on read and reported as a miss, so one bad
// entry self-heals instead of poisoning every later mutation.
//
// Round-trip note: opaque pages whose sequence is locatable come back as
// wrapped pages (see Page.Normalize); transform behaviour is unchanged.
// Codecs that go through JSON decode numeric ids to float64 - optcache
// identity comparison normalizes numerics, so lookups still match.
package bytestore

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/optcache"
	"github.com/unkn0wn-root/optcache/codec"
	"github.com/unkn0wn-root/optcache/internal/inflight"
	pr "github.com/unkn0wn-root/optcache/provider"
)

// Record is the serialized form of an optcache.Entry.
// Kind: 0 absent (never stored), 1 flat, 2 paginated.
type Record[T any] struct {
	Kind   uint8           `json:"kind" msgpack:"kind"`
	Items  []T             `json:"items,omitempty" msgpack:"items,omitempty"`
	Pages  []RecordPage[T] `json:"pages,omitempty" msgpack:"pages,omitempty"`
	Params []any           `json:"params,omitempty" msgpack:"params,omitempty"`
}

// RecordPage is the serialized form of one page. For wrapped pages Fields
// holds only the sibling fields; the sequence itself lives in Seq.
type RecordPage[T any] struct {
	Seq     []T            `json:"seq,omitempty" msgpack:"seq,omitempty"`
	HasSeq  bool           `json:"has_seq" msgpack:"has_seq"`
	WrapKey string         `json:"wrap_key,omitempty" msgpack:"wrap_key,omitempty"`
	Fields  map[string]any `json:"fields,omitempty" msgpack:"fields,omitempty"`
}

// Options tune the store. Namespace and Provider are required.
type Options[T any] struct {
	// Namespace isolates this store's keyspace, e.g. "app:prod:todos".
	Namespace string

	Provider pr.Provider

	// Codec serializes records; nil => codec.JSON.
	Codec codec.Codec[Record[T]]

	// TTL for stored entries; 0 => no expiry (provider semantics apply).
	TTL time.Duration

	Logger optcache.Logger // nil => NopLogger
}

type Store[T any] struct {
	ns       string
	provider pr.Provider
	codec    codec.Codec[Record[T]]
	ttl      time.Duration
	log      optcache.Logger
	inflight *inflight.Registry
}

var _ optcache.Accessor[any] = (*Store[any])(nil)

func New[T any](opts Options[T]) (*Store[T], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("bytestore: provider is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("bytestore: namespace is required")
	}
	s := &Store[T]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		ttl:      opts.TTL,
		inflight: inflight.NewRegistry(),
	}
	if opts.Codec != nil {
		s.codec = opts.Codec
	} else {
		s.codec = codec.JSON[Record[T]]{}
	}
	if opts.Logger != nil {
		s.log = opts.Logger
	} else {
		s.log = optcache.NopLogger{}
	}
	return s, nil
}

func (s *Store[T]) storageKey(key optcache.Key) string {
	return "entry:" + s.ns + ":" + key.String()
}

// Read decodes the stored record. Corrupt payloads self-heal: delete, log,
// report a miss.
func (s *Store[T]) Read(ctx context.Context, key optcache.Key) (optcache.Entry[T], bool, error) {
	k := s.storageKey(key)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil || !ok {
		return optcache.Entry[T]{}, false, err
	}
	rec, err := s.codec.Decode(raw)
	if err != nil {
		_ = s.provider.Del(ctx, k) // self-heal corrupt
		s.log.Warn("dropped corrupt entry", optcache.Fields{"key": key.String(), "err": err})
		return optcache.Entry[T]{}, false, nil
	}
	e, err := toEntry(rec)
	if err != nil {
		_ = s.provider.Del(ctx, k) // self-heal
		s.log.Warn("dropped invalid entry record", optcache.Fields{"key": key.String(), "err": err})
		return optcache.Entry[T]{}, false, nil
	}
	return e, true, nil
}

// Write encodes and stores the entry. A zero entry clears the key.
func (s *Store[T]) Write(ctx context.Context, key optcache.Key, e optcache.Entry[T]) error {
	k := s.storageKey(key)
	if e.IsZero() {
		return s.provider.Del(ctx, k)
	}
	raw, err := s.codec.Encode(toRecord(e))
	if err != nil {
		return err
	}
	return s.provider.Set(ctx, k, raw, s.ttl)
}

// CancelRefetch stops the in-flight background refetch for key, if any.
func (s *Store[T]) CancelRefetch(_ context.Context, key optcache.Key) error {
	s.inflight.Cancel(s.storageKey(key))
	return nil
}

// Refetch runs fetch on a background goroutine and writes its result,
// unless canceled first. Returns immediately.
func (s *Store[T]) Refetch(ctx context.Context, key optcache.Key, fetch func(ctx context.Context) (optcache.Entry[T], error)) {
	k := s.storageKey(key)
	fctx, tok := s.inflight.Start(ctx, k)
	go func() {
		defer s.inflight.Finish(k, tok)
		e, err := fetch(fctx)
		if err != nil || fctx.Err() != nil {
			return
		}
		if werr := s.Write(fctx, key, e); werr != nil {
			s.log.Warn("refetch write failed", optcache.Fields{"key": key.String(), "err": werr})
		}
	}()
}

// Close releases the underlying provider.
func (s *Store[T]) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}

func toRecord[T any](e optcache.Entry[T]) Record[T] {
	if e.IsFlat() {
		return Record[T]{Kind: 1, Items: e.Items()}
	}
	pages := e.Pages()
	rec := Record[T]{
		Kind:   2,
		Pages:  make([]RecordPage[T], len(pages)),
		Params: e.PageParams(),
	}
	for i, p := range pages {
		p = p.Normalize()
		seq, ok := p.Sequence()
		rp := RecordPage[T]{HasSeq: ok, WrapKey: p.WrapKey()}
		if ok {
			rp.Seq = seq
		}
		if f := p.Fields(); len(f) > 0 {
			rp.Fields = make(map[string]any, len(f))
			for fk, fv := range f {
				if ok && fk == rp.WrapKey {
					continue // sequence lives in Seq, don't store it twice
				}
				rp.Fields[fk] = fv
			}
		}
		rec.Pages[i] = rp
	}
	return rec
}

func toEntry[T any](rec Record[T]) (optcache.Entry[T], error) {
	switch rec.Kind {
	case 1:
		return optcache.Flat(rec.Items), nil
	case 2:
		pages := make([]optcache.Page[T], len(rec.Pages))
		for i, rp := range rec.Pages {
			switch {
			case rp.HasSeq && rp.WrapKey == "":
				pages[i] = optcache.SeqPage(rp.Seq)
			case rp.HasSeq:
				pages[i] = optcache.WrappedPage(rp.WrapKey, rp.Seq, rp.Fields)
			default:
				pages[i] = optcache.OpaquePage[T](rp.Fields)
			}
		}
		return optcache.Paginated(pages, rec.Params), nil
	default:
		return optcache.Entry[T]{}, fmt.Errorf("bytestore: unknown record kind %d", rec.Kind)
	}
}
