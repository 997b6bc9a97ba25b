// Package cache provides an in-memory keyed store for normalized item lists
// with a pluggable validity policy.
package cache

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a cached item list with metadata.
type Entry[T any] struct {
	Key       string
	Items     []T
	CreatedAt time.Time
	FetchID   uuid.UUID // identifies the upstream fetch that produced Items
}

// Age returns how old the entry is at now.
func (e Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// Header is the policy-relevant part of an entry.
type Header struct {
	Key       string
	CreatedAt time.Time
}

// Policy decides whether a present entry may still be served.
type Policy interface {
	Valid(h Header, now time.Time) bool
}

// Reader defines read access to a store.
type Reader[T any] interface {
	// Get returns the entry for key regardless of validity.
	Get(key string) (Entry[T], bool)
	// Read returns the entry for key only if the policy accepts it.
	Read(key string) (Entry[T], bool)
}

// Writer defines write access to a store.
type Writer[T any] interface {
	// Put stores items under key. It reports false and stores nothing when
	// items is empty.
	Put(key string, items []T, fetchID uuid.UUID) bool
}

// ReadWriter combines both cache operations.
type ReadWriter[T any] interface {
	Reader[T]
	Writer[T]
}
