package optcache

// Pure transforms over flat sequences and whole entries. No cache access,
// no mutation in place: inputs are never modified, outputs share untouched
// elements. Every function is total except where identity resolution fails.

// FindByID scans seq in order and returns the first item whose resolved
// identity equals id, with its index. idx == -1 means not found.
func FindByID[T any](seq []T, id ID, resolver Resolver[T]) (match T, idx int, err error) {
	var zero T
	for i, it := range seq {
		itemID, rerr := ResolveID(it, resolver)
		if rerr != nil {
			return zero, -1, rerr
		}
		if sameID(itemID, id) {
			return it, i, nil
		}
	}
	return zero, -1, nil
}

// ReplaceByID maps seq, substituting item at every position whose resolved
// identity equals id. With no match the result carries the same elements in
// the same order.
func ReplaceByID[T any](seq []T, id ID, item T, resolver Resolver[T]) ([]T, error) {
	out := make([]T, len(seq))
	for i, it := range seq {
		itemID, err := ResolveID(it, resolver)
		if err != nil {
			return nil, err
		}
		if sameID(itemID, id) {
			out[i] = item
		} else {
			out[i] = it
		}
	}
	return out, nil
}

// RemoveByID filters out every item whose resolved identity equals id.
// A non-injective resolver drops all matches; that permissiveness is
// intentional.
func RemoveByID[T any](seq []T, id ID, resolver Resolver[T]) ([]T, error) {
	out := make([]T, 0, len(seq))
	for _, it := range seq {
		itemID, err := ResolveID(it, resolver)
		if err != nil {
			return nil, err
		}
		if !sameID(itemID, id) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Prepend returns a new sequence with item first, prior order unchanged.
func Prepend[T any](seq []T, item T) []T {
	out := make([]T, 0, len(seq)+1)
	out = append(out, item)
	return append(out, seq...)
}

// ReplaceTempID maps seq; the element whose resolved identity equals tempID
// gets shallow-copied with its literal id field forced to serverID.
// Elements without a settable id field are left unchanged (cannot be
// annotated). Note the write goes to the conventional ID/Id/id field even
// when resolver reads a custom one - documented limitation, see setItemID.
func ReplaceTempID[T any](seq []T, tempID, serverID ID, resolver Resolver[T]) ([]T, error) {
	out := make([]T, len(seq))
	for i, it := range seq {
		itemID, err := ResolveID(it, resolver)
		if err != nil {
			return nil, err
		}
		if sameID(itemID, tempID) {
			if stamped, ok := setItemID(it, serverID); ok {
				out[i] = stamped
				continue
			}
		}
		out[i] = it
	}
	return out, nil
}

// Position locates an item inside an entry. PageIndex is -1 for flat
// entries; Index is -1 when not found.
type Position struct {
	PageIndex int
	Index     int
}

func (p Position) Found() bool { return p.Index >= 0 }

// Find routes FindByID through the entry shape. Pages whose sequence
// cannot be extracted are skipped.
func (e Entry[T]) Find(id ID, resolver Resolver[T]) (T, Position, error) {
	var zero T
	switch e.kind {
	case kindFlat:
		it, idx, err := FindByID(e.items, id, resolver)
		return it, Position{PageIndex: -1, Index: idx}, err
	case kindPaginated:
		for pi, page := range e.pages {
			seq, ok := page.Sequence()
			if !ok {
				continue
			}
			it, idx, err := FindByID(seq, id, resolver)
			if err != nil {
				return zero, Position{PageIndex: -1, Index: -1}, err
			}
			if idx >= 0 {
				return it, Position{PageIndex: pi, Index: idx}, nil
			}
		}
	}
	return zero, Position{PageIndex: -1, Index: -1}, nil
}

// Replace routes ReplaceByID through the entry shape. Page params pass
// through unchanged.
func (e Entry[T]) Replace(id ID, item T, resolver Resolver[T]) (Entry[T], error) {
	return e.mapSequences(func(seq []T) ([]T, error) {
		return ReplaceByID(seq, id, item, resolver)
	})
}

// Remove routes RemoveByID through the entry shape.
func (e Entry[T]) Remove(id ID, resolver Resolver[T]) (Entry[T], error) {
	return e.mapSequences(func(seq []T) ([]T, error) {
		return RemoveByID(seq, id, resolver)
	})
}

// ReplaceTempID routes the temp-id substitution through the entry shape.
func (e Entry[T]) ReplaceTempID(tempID, serverID ID, resolver Resolver[T]) (Entry[T], error) {
	return e.mapSequences(func(seq []T) ([]T, error) {
		return ReplaceTempID(seq, tempID, serverID, resolver)
	})
}

// Prepend inserts item at the head of the entry. Flat: new head. Paginated
// with zero pages: synthesize a single bare page holding just the item plus
// a single nil page param. Paginated whose first page has no extractable
// sequence: prepend an entirely new bare page ahead of all pages (params
// untouched). Otherwise the item goes to the head of page 0; all other
// pages and all params unchanged. An absent entry becomes Flat([item]).
func (e Entry[T]) Prepend(item T) Entry[T] {
	switch e.kind {
	case kindFlat:
		return Flat(Prepend(e.items, item))
	case kindPaginated:
		if len(e.pages) == 0 {
			return Paginated([]Page[T]{SeqPage([]T{item})}, []any{nil})
		}
		first := e.pages[0]
		seq, ok := first.Sequence()
		if !ok {
			pages := make([]Page[T], 0, len(e.pages)+1)
			pages = append(pages, SeqPage([]T{item}))
			pages = append(pages, e.pages...)
			return Paginated(pages, e.params)
		}
		pages := make([]Page[T], len(e.pages))
		copy(pages, e.pages)
		pages[0] = first.rewrap(Prepend(seq, item))
		return Paginated(pages, e.params)
	default:
		return Flat([]T{item})
	}
}

// mapSequences applies fn to the flat sequence or to every extractable page
// sequence, rewrapping each page. Non-extractable pages no-op silently.
func (e Entry[T]) mapSequences(fn func([]T) ([]T, error)) (Entry[T], error) {
	switch e.kind {
	case kindFlat:
		out, err := fn(e.items)
		if err != nil {
			return Entry[T]{}, err
		}
		return Flat(out), nil
	case kindPaginated:
		pages := make([]Page[T], len(e.pages))
		for i, page := range e.pages {
			seq, ok := page.Sequence()
			if !ok {
				pages[i] = page
				continue
			}
			out, err := fn(seq)
			if err != nil {
				return Entry[T]{}, err
			}
			pages[i] = page.rewrap(out)
		}
		return Paginated(pages, e.params), nil
	default:
		return e, nil
	}
}
