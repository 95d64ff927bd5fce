package optcache

import (
	"strings"
	"testing"
)

func TestTempIDRecognition(t *testing.T) {
	if !IsTempID(NewTempID()) {
		t.Fatalf("issuer output must be recognized by the checker")
	}
	if IsTempID(42) {
		t.Fatalf("numeric ids are never temporary")
	}
	if IsTempID("abc") {
		t.Fatalf("plain strings are not temporary")
	}
	if IsTempID(nil) {
		t.Fatalf("nil is not temporary")
	}
}

func TestTempIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTempID()
		if !strings.HasPrefix(id, TempIDPrefix) {
			t.Fatalf("missing prefix: %q", id)
		}
		if seen[id] {
			t.Fatalf("collision after %d ids: %q", i, id)
		}
		seen[id] = true
	}
}
