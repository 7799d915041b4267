// Package idgen provides pluggable ID generation for pagecraft.
//
// Every entity in the system (pages, nodes, saved components) is addressed
// by a stable string identifier assigned exactly once at creation. All
// constructors accept a Generator, making the ID strategy a startup-time
// decision rather than a compile-time one.
package idgen

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// NanoID returns a Generator that produces base-36 IDs of the given length.
// Short, URL-safe, fast — the default strategy for node ids, which appear in
// every wire payload and dominate serialized model size.
func NanoID(length int) Generator {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	return func() string {
		b := make([]byte, length)
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		for i := range b {
			b[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(b)
	}
}

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable and globally unique; used where creation order matters.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
// Type-scoped identifiers make logs and database rows self-describing.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// NodeID is the strategy for PageNode identifiers ("nd_" + 12 base-36 chars).
func NodeID() Generator { return Prefixed("nd_", NanoID(12)) }

// PageID is the strategy for page identifiers ("pg_" + UUIDv7).
func PageID() Generator { return Prefixed("pg_", UUIDv7()) }

// ComponentID is the strategy for saved-component identifiers.
func ComponentID() Generator { return Prefixed("cmp_", NanoID(12)) }

// Default is the fallback generator: UUIDv7.
var Default Generator = UUIDv7()

// New produces an ID using the Default generator.
func New() string {
	return Default()
}

// Parse validates a UUID string and returns it or an error.
func Parse(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID: %w", err)
	}
	return u.String(), nil
}
