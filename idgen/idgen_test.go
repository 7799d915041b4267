package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_Length(t *testing.T) {
	for _, length := range []int{8, 12, 16, 24} {
		gen := NanoID(length)
		id := gen()
		if len(id) != length {
			t.Fatalf("NanoID(%d): got length %d", length, len(id))
		}
	}
}

func TestNanoID_Alphabet(t *testing.T) {
	gen := NanoID(100)
	id := gen()
	for _, c := range id {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
			t.Fatalf("NanoID: unexpected character %q in %q", c, id)
		}
	}
}

func TestNanoID_Uniqueness(t *testing.T) {
	gen := NanoID(12)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("NanoID: duplicate at iteration %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestUUIDv7_Format(t *testing.T) {
	gen := UUIDv7()
	id := gen()
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("nd_", NanoID(8))
	id := gen()
	if !strings.HasPrefix(id, "nd_") {
		t.Fatalf("Prefixed: expected prefix 'nd_', got %q", id)
	}
	if len(id) != 3+8 {
		t.Fatalf("Prefixed: expected length 11, got %d", len(id))
	}
}

func TestDomainStrategies(t *testing.T) {
	cases := []struct {
		name   string
		gen    Generator
		prefix string
	}{
		{"node", NodeID(), "nd_"},
		{"page", PageID(), "pg_"},
		{"component", ComponentID(), "cmp_"},
	}
	for _, tc := range cases {
		id := tc.gen()
		if !strings.HasPrefix(id, tc.prefix) {
			t.Errorf("%s id: expected prefix %q, got %q", tc.name, tc.prefix, id)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Fatal("Parse: expected error for invalid UUID")
	}
}
