package optcache

import (
	"reflect"
)

// ID is an item identity: a string or numeric scalar. Comparisons normalize
// integer widths and floats, so an int64 1 from a struct matches the
// float64 1 a JSON round trip produces.
type ID = any

// Resolver extracts the identity from an item. When nil is passed to an
// Options struct, the default convention applies: a field named ID/Id/id on
// structs (pointers are dereferenced) or the "id" key on map[string]any.
type Resolver[T any] func(item T) (ID, error)

// ResolveID resolves an item's identity. A non-nil resolver wins verbatim,
// its result is not validated. The fallback convention fails with
// *InvalidItemError when no usable id field exists.
func ResolveID[T any](item T, resolver Resolver[T]) (ID, error) {
	if resolver != nil {
		return resolver(item)
	}
	return defaultResolve(item)
}

// idFieldNames is the fixed lookup order for the default convention.
var idFieldNames = []string{"ID", "Id", "id"}

func defaultResolve(item any) (ID, error) {
	if item == nil {
		return nil, errInvalidItem()
	}
	if m, ok := item.(map[string]any); ok {
		id, ok := m["id"]
		if !ok || id == nil {
			return nil, errInvalidItem()
		}
		return id, nil
	}

	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, errInvalidItem()
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, errInvalidItem()
	}
	for _, name := range idFieldNames {
		f := v.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			continue
		}
		// nil-able ids count as absent; zero scalars (0, "") are valid ids
		switch f.Kind() {
		case reflect.Pointer, reflect.Interface:
			if f.IsNil() {
				return nil, errInvalidItem()
			}
			if f.Kind() == reflect.Pointer {
				return f.Elem().Interface(), nil
			}
		}
		return f.Interface(), nil
	}
	return nil, errInvalidItem()
}

// sameID reports identity equality after numeric normalization.
func sameID(a, b ID) bool {
	if a == nil || b == nil {
		return a == b
	}
	na, aNum := normalizeNum(a)
	nb, bNum := normalizeNum(b)
	if aNum && bNum {
		return na == nb
	}
	if aNum != bNum {
		return false
	}
	return a == b
}

func normalizeNum(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// setItemID returns a shallow copy of item with its literal id field forced
// to id. The write targets the conventional ID/Id/id field only - NOT the
// field a custom Resolver reads. Callers using a custom identity field keep
// their field untouched; only a same-named id field is written. ok=false
// when the item carries no settable id field (then item is returned as-is).
func setItemID[T any](item T, id ID) (T, bool) {
	var asAny any = item

	if m, ok := asAny.(map[string]any); ok {
		cp := make(map[string]any, len(m)+1)
		for k, v := range m {
			cp[k] = v
		}
		cp["id"] = id
		out, _ := any(cp).(T)
		return out, true
	}

	v := reflect.ValueOf(item)
	ptr := v.Kind() == reflect.Pointer
	if ptr {
		if v.IsNil() {
			return item, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return item, false
	}

	cp := reflect.New(v.Type())
	cp.Elem().Set(v)
	for _, name := range idFieldNames {
		f := cp.Elem().FieldByName(name)
		if !f.IsValid() || !f.CanSet() {
			continue
		}
		iv := reflect.ValueOf(id)
		if !iv.IsValid() || !iv.Type().AssignableTo(f.Type()) {
			if iv.IsValid() && iv.Type().ConvertibleTo(f.Type()) {
				iv = iv.Convert(f.Type())
			} else {
				continue
			}
		}
		f.Set(iv)
		if ptr {
			out, ok := cp.Interface().(T)
			return out, ok
		}
		out, ok := cp.Elem().Interface().(T)
		return out, ok
	}
	return item, false
}
