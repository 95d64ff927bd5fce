package optcache

type entryKind uint8

const (
	kindAbsent entryKind = iota
	kindFlat
	kindPaginated
)

// SequenceKeys is the fixed, ordered list of conventional property names an
// opaque page is scanned under when locating its item sequence. First match
// wins.
var SequenceKeys = []string{"items", "todos", "data", "results", "list"}

// Entry is one cache entry: a closed union over the shapes a query cache
// stores under a key. The zero Entry means "absent" (no entry yet).
// Entries are immutable; every transform returns a new Entry.
type Entry[T any] struct {
	kind   entryKind
	items  []T
	pages  []Page[T]
	params []any
}

// Flat builds a flat entry: directly an ordered sequence of items.
func Flat[T any](items []T) Entry[T] {
	return Entry[T]{kind: kindFlat, items: items}
}

// Paginated builds an "infinite" entry: ordered pages paired by index with
// opaque page params (cursors). Transforms never touch params except when
// inserting into an entry with zero pages, which synthesizes one page and
// one nil param.
func Paginated[T any](pages []Page[T], params []any) Entry[T] {
	return Entry[T]{kind: kindPaginated, pages: pages, params: params}
}

func (e Entry[T]) IsZero() bool      { return e.kind == kindAbsent }
func (e Entry[T]) IsFlat() bool      { return e.kind == kindFlat }
func (e Entry[T]) IsPaginated() bool { return e.kind == kindPaginated }

// Items returns the flat sequence. Callers must treat it as read-only.
func (e Entry[T]) Items() []T { return e.items }

// Pages returns the page sequence. Callers must treat it as read-only.
func (e Entry[T]) Pages() []Page[T] { return e.pages }

// PageParams returns the cursor sequence paired with Pages by index.
func (e Entry[T]) PageParams() []any { return e.params }

// Page is one page of a paginated entry: either the bare item sequence, an
// object wrapping the sequence under one known key (sibling fields kept),
// or an opaque object whose sequence - if any - is located by scanning
// SequenceKeys in order.
type Page[T any] struct {
	seq     []T
	hasSeq  bool
	wrapKey string // "" => bare sequence page
	fields  map[string]any
}

// SeqPage builds a page that is directly the item sequence.
func SeqPage[T any](items []T) Page[T] {
	return Page[T]{seq: items, hasSeq: true}
}

// WrappedPage builds an object page exposing items under key. extra holds
// the sibling fields (cursor, totals, ...) carried along on rewrap; it may
// be nil.
func WrappedPage[T any](key string, items []T, extra map[string]any) Page[T] {
	return Page[T]{seq: items, hasSeq: true, wrapKey: key, fields: extra}
}

// OpaquePage builds an object page whose item sequence, if present at all,
// sits in fields under one of the SequenceKeys (value of type []T).
// Pages with no locatable sequence pass through every transform untouched.
func OpaquePage[T any](fields map[string]any) Page[T] {
	return Page[T]{fields: fields}
}

// Sequence extracts the page's item sequence. For an opaque page the
// conventional keys are scanned in fixed order and the first []T-valued
// property wins. ok=false signals "cannot locate an item sequence in this
// page - leave page untouched".
func (p Page[T]) Sequence() ([]T, bool) {
	if p.hasSeq {
		return p.seq, true
	}
	for _, k := range SequenceKeys {
		if v, ok := p.fields[k]; ok {
			if seq, ok := v.([]T); ok {
				return seq, true
			}
		}
	}
	return nil, false
}

// WrapKey returns the property name the sequence lives under, or "" for a
// bare sequence page or an opaque page.
func (p Page[T]) WrapKey() string { return p.wrapKey }

// Fields returns the page's object fields (nil for bare sequence pages).
// Callers must treat the map as read-only.
func (p Page[T]) Fields() map[string]any { return p.fields }

// Normalize returns an equivalent page with any locatable opaque sequence
// promoted to a wrapped page (same scan order as Sequence). Pages with no
// locatable sequence come back unchanged. Serializing accessors use this
// so the wrap key survives a round trip.
func (p Page[T]) Normalize() Page[T] {
	if p.hasSeq {
		return p
	}
	for _, k := range SequenceKeys {
		if v, ok := p.fields[k]; ok {
			if seq, ok := v.([]T); ok {
				return Page[T]{seq: seq, hasSeq: true, wrapKey: k, fields: p.fields}
			}
		}
	}
	return p
}

// rewrap produces the page with seq substituted in. A bare page becomes the
// new bare sequence; a wrapped page gets a shallow field copy with only the
// wrap key replaced; an opaque page is re-scanned the same way Sequence
// does and, when no sequence is locatable, returned unchanged.
func (p Page[T]) rewrap(seq []T) Page[T] {
	if p.hasSeq && p.wrapKey == "" {
		return SeqPage(seq)
	}
	key := p.wrapKey
	if key == "" {
		for _, k := range SequenceKeys {
			if v, ok := p.fields[k]; ok {
				if _, ok := v.([]T); ok {
					key = k
					break
				}
			}
		}
		if key == "" {
			return p
		}
	}
	fields := make(map[string]any, len(p.fields)+1)
	for k, v := range p.fields {
		fields[k] = v
	}
	fields[key] = seq
	return Page[T]{seq: seq, hasSeq: true, wrapKey: key, fields: fields}
}
