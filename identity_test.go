package optcache

import (
	"errors"
	"testing"
)

func TestResolveIDDefaultConvention(t *testing.T) {
	id, err := ResolveID(todo{ID: 7}, nil)
	if err != nil || !sameID(id, 7) {
		t.Fatalf("struct ID field: id=%v err=%v", id, err)
	}

	id, err = ResolveID(&todo{ID: "x"}, nil)
	if err != nil || id != "x" {
		t.Fatalf("pointer deref: id=%v err=%v", id, err)
	}

	id, err = ResolveID(map[string]any{"id": 3}, nil)
	if err != nil || !sameID(id, 3) {
		t.Fatalf("map convention: id=%v err=%v", id, err)
	}

	// zero scalar ids are valid; only nil-able ids count as absent
	type numbered struct{ ID int }
	if id, err := ResolveID(numbered{}, nil); err != nil || !sameID(id, 0) {
		t.Fatalf("zero scalar id rejected: id=%v err=%v", id, err)
	}
}

func TestResolveIDFailures(t *testing.T) {
	var invalid *InvalidItemError

	type anonymous struct{ Name string }
	if _, err := ResolveID(anonymous{Name: "x"}, nil); !errors.As(err, &invalid) {
		t.Fatalf("struct without id: err=%v", err)
	}
	if _, err := ResolveID(map[string]any{"id": nil}, nil); !errors.As(err, &invalid) {
		t.Fatalf("nil map id: err=%v", err)
	}
	if _, err := ResolveID[any](nil, nil); !errors.As(err, &invalid) {
		t.Fatalf("nil item: err=%v", err)
	}
	if _, err := ResolveID(todo{ID: nil}, nil); !errors.As(err, &invalid) {
		t.Fatalf("nil interface id: err=%v", err)
	}
}

func TestResolveIDCustomResolverVerbatim(t *testing.T) {
	// the resolver's result is not validated - nil passes through
	res := func(todo) (ID, error) { return nil, nil }
	id, err := ResolveID(todo{ID: 1}, res)
	if err != nil || id != nil {
		t.Fatalf("resolver must win verbatim: id=%v err=%v", id, err)
	}
}

func TestSameIDNumericNormalization(t *testing.T) {
	if !sameID(int64(2), float64(2)) {
		t.Fatalf("int64 vs float64 should match")
	}
	if !sameID(2, uint8(2)) {
		t.Fatalf("int vs uint8 should match")
	}
	if sameID(2, "2") {
		t.Fatalf("number and string must not match")
	}
	if sameID(nil, 0) {
		t.Fatalf("nil matches nothing but nil")
	}
}

func TestSetItemID(t *testing.T) {
	out, ok := setItemID(todo{Name: "x"}, "temp_1")
	if !ok || out.ID != "temp_1" || out.Name != "x" {
		t.Fatalf("setItemID struct: ok=%v out=%+v", ok, out)
	}

	m, ok := setItemID(map[string]any{"name": "x"}, "temp_1")
	if !ok || m["id"] != "temp_1" {
		t.Fatalf("setItemID map: ok=%v out=%v", ok, m)
	}

	// incompatible field type: left unchanged
	type numbered struct{ ID int }
	n, ok := setItemID(numbered{ID: 4}, "temp_1")
	if ok || n.ID != 4 {
		t.Fatalf("incompatible id type must be skipped: ok=%v out=%+v", ok, n)
	}

	// non-object items cannot be annotated
	if _, ok := setItemID("just a string", "temp_1"); ok {
		t.Fatalf("non-object item must report not settable")
	}
}
