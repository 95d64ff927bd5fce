package optcache

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type todo struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

func todos(ids ...any) []todo {
	out := make([]todo, len(ids))
	for i, id := range ids {
		out[i] = todo{ID: id, Name: "todo"}
	}
	return out
}

// ==============================
// Flat primitives
// ==============================

func TestFindByID(t *testing.T) {
	seq := todos(1, 2, 3)

	it, idx, err := FindByID(seq, 2, nil)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if idx != 1 || !sameID(it.ID, 2) {
		t.Fatalf("FindByID got idx=%d item=%v", idx, it)
	}

	_, idx, err = FindByID(seq, 42, nil)
	if err != nil || idx != -1 {
		t.Fatalf("expected miss, got idx=%d err=%v", idx, err)
	}
}

func TestRemoveThenFindMisses(t *testing.T) {
	seq := todos(1, 2, 3)

	out, err := RemoveByID(seq, 2, nil)
	if err != nil {
		t.Fatalf("RemoveByID: %v", err)
	}
	if len(out) != len(seq)-1 {
		t.Fatalf("RemoveByID length = %d, want %d", len(out), len(seq)-1)
	}
	if _, idx, _ := FindByID(out, 2, nil); idx != -1 {
		t.Fatalf("removed id still findable at %d", idx)
	}
	// input untouched
	if len(seq) != 3 {
		t.Fatalf("input sequence mutated")
	}
}

func TestRemoveByIDDropsAllMatches(t *testing.T) {
	// non-injective resolver: everything resolves to "x" -> all removed
	all := func(todo) (ID, error) { return "x", nil }
	out, err := RemoveByID(todos(1, 2, 3), "x", all)
	if err != nil {
		t.Fatalf("RemoveByID: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("want every match removed, got %d left", len(out))
	}
}

func TestReplaceByIDMissIsIdentity(t *testing.T) {
	seq := todos(1, 2)
	out, err := ReplaceByID(seq, 42, todo{ID: 42}, nil)
	if err != nil {
		t.Fatalf("ReplaceByID: %v", err)
	}
	if diff := cmp.Diff(seq, out); diff != "" {
		t.Fatalf("no-match replace changed sequence (-want +got):\n%s", diff)
	}
}

func TestReplaceByID(t *testing.T) {
	seq := todos(1, 2, 3)
	repl := todo{ID: 2, Name: "renamed"}
	out, err := ReplaceByID(seq, 2, repl, nil)
	if err != nil {
		t.Fatalf("ReplaceByID: %v", err)
	}
	want := []todo{seq[0], repl, seq[2]}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("ReplaceByID (-want +got):\n%s", diff)
	}
}

func TestPrepend(t *testing.T) {
	seq := todos(1, 2)
	out := Prepend(seq, todo{ID: 0})
	if len(out) != 3 || !sameID(out[0].ID, 0) || !sameID(out[1].ID, 1) || !sameID(out[2].ID, 2) {
		t.Fatalf("Prepend order wrong: %v", out)
	}
}

func TestReplaceTempID(t *testing.T) {
	temp := NewTempID()
	seq := []todo{{ID: temp, Name: "draft"}, {ID: 1, Name: "a"}}

	out, err := ReplaceTempID(seq, temp, 99, nil)
	if err != nil {
		t.Fatalf("ReplaceTempID: %v", err)
	}
	if !sameID(out[0].ID, 99) {
		t.Fatalf("temp id not replaced: %v", out[0])
	}
	if out[0].Name != "draft" {
		t.Fatalf("replacement must keep the optimistic body, got %v", out[0])
	}
	if !sameID(out[1].ID, 1) {
		t.Fatalf("non-matching element changed: %v", out[1])
	}
	// original untouched
	if !sameID(seq[0].ID, temp) {
		t.Fatalf("input mutated")
	}
}

// ReplaceTempID writes the literal id field, never the custom resolver's
// source field. Documented limitation, not to be "fixed".
func TestReplaceTempIDCustomResolverLimitation(t *testing.T) {
	type record struct {
		Slug string
		ID   any
	}
	bySlug := func(r record) (ID, error) { return r.Slug, nil }

	seq := []record{{Slug: "temp_abc"}}
	out, err := ReplaceTempID(seq, "temp_abc", "real-slug", bySlug)
	if err != nil {
		t.Fatalf("ReplaceTempID: %v", err)
	}
	if out[0].Slug != "temp_abc" {
		t.Fatalf("custom identity field must stay untouched, got %q", out[0].Slug)
	}
	if out[0].ID != "real-slug" {
		t.Fatalf("literal id field should carry the server id, got %v", out[0].ID)
	}
}

// ==============================
// Entry-level routing
// ==============================

func TestEntryFindPaginated(t *testing.T) {
	e := Paginated([]Page[todo]{
		WrappedPage("items", todos(1, 2), nil),
		OpaquePage[todo](map[string]any{"cursor": "x"}), // skipped: no sequence
		SeqPage(todos(3)),
	}, []any{nil, "p2", "p3"})

	it, pos, err := e.Find(3, nil)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if pos.PageIndex != 2 || pos.Index != 0 || !sameID(it.ID, 3) {
		t.Fatalf("Find got pos=%+v item=%v", pos, it)
	}

	if _, pos, _ := e.Find(42, nil); pos.Found() {
		t.Fatalf("expected miss, got %+v", pos)
	}
}

func TestEntryRemovePaginatedKeepsPageCount(t *testing.T) {
	e := Paginated([]Page[todo]{
		WrappedPage("items", todos(1, 2), map[string]any{"total": 2}),
		WrappedPage("items", todos(3), nil),
	}, []any{nil, "cursor"})

	out, err := e.Remove(2, nil)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	pages := out.Pages()
	if len(pages) != 2 {
		t.Fatalf("page count changed: %d", len(pages))
	}
	p0, _ := pages[0].Sequence()
	if len(p0) != 1 || !sameID(p0[0].ID, 1) {
		t.Fatalf("page 0 = %v, want only id 1", p0)
	}
	if pages[0].Fields()["total"] != 2 {
		t.Fatalf("sibling fields lost on rewrap: %v", pages[0].Fields())
	}
	p1, _ := pages[1].Sequence()
	if len(p1) != 1 || !sameID(p1[0].ID, 3) {
		t.Fatalf("page 1 changed: %v", p1)
	}
	if diff := cmp.Diff(e.PageParams(), out.PageParams()); diff != "" {
		t.Fatalf("page params must pass through (-want +got):\n%s", diff)
	}
}

func TestEntryPrepend(t *testing.T) {
	head := todo{ID: 0, Name: "new"}

	t.Run("flat", func(t *testing.T) {
		out := Flat(todos(1)).Prepend(head)
		if items := out.Items(); len(items) != 2 || !sameID(items[0].ID, 0) {
			t.Fatalf("flat prepend: %v", items)
		}
	})

	t.Run("absent becomes one-item flat", func(t *testing.T) {
		var e Entry[todo]
		out := e.Prepend(head)
		if !out.IsFlat() || len(out.Items()) != 1 {
			t.Fatalf("absent prepend: %+v", out)
		}
	})

	t.Run("zero pages synthesizes page and param", func(t *testing.T) {
		out := Paginated[todo](nil, nil).Prepend(head)
		if len(out.Pages()) != 1 || len(out.PageParams()) != 1 || out.PageParams()[0] != nil {
			t.Fatalf("synthesized shape wrong: pages=%d params=%v", len(out.Pages()), out.PageParams())
		}
		seq, _ := out.Pages()[0].Sequence()
		if len(seq) != 1 || !sameID(seq[0].ID, 0) {
			t.Fatalf("synthesized page = %v", seq)
		}
	})

	t.Run("unextractable first page gets a new page ahead", func(t *testing.T) {
		e := Paginated([]Page[todo]{
			OpaquePage[todo](map[string]any{"cursor": "x"}),
			SeqPage(todos(1)),
		}, []any{"a", "b"})
		out := e.Prepend(head)
		if len(out.Pages()) != 3 {
			t.Fatalf("want new page prepended, got %d pages", len(out.Pages()))
		}
		seq, ok := out.Pages()[0].Sequence()
		if !ok || len(seq) != 1 || !sameID(seq[0].ID, 0) {
			t.Fatalf("new head page = %v ok=%v", seq, ok)
		}
		if diff := cmp.Diff([]any{"a", "b"}, out.PageParams()); diff != "" {
			t.Fatalf("params changed (-want +got):\n%s", diff)
		}
	})

	t.Run("normal case goes to head of page 0", func(t *testing.T) {
		e := Paginated([]Page[todo]{
			WrappedPage("items", todos(1), nil),
			WrappedPage("items", todos(2), nil),
		}, []any{nil, "c"})
		out := e.Prepend(head)
		if len(out.Pages()) != 2 {
			t.Fatalf("page count changed: %d", len(out.Pages()))
		}
		seq, _ := out.Pages()[0].Sequence()
		if len(seq) != 2 || !sameID(seq[0].ID, 0) || !sameID(seq[1].ID, 1) {
			t.Fatalf("page 0 after prepend: %v", seq)
		}
	})
}
