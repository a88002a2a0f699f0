// Package store defines the backend abstraction used by regioncache.
//
// A Store persists Items under a region. How the region maps onto the
// backend is the store's business: the in-memory and Redis stores fold it
// into the key ("$region$|key"), the relational store maps it to a table.
// The client never inspects a store's native records, only the Items it
// returns.
//
// Stores must be safe for concurrent use. They own their codecs and any
// envelope framing; the client hands them live values.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNilClient = errors.New("store: nil client")

// Item binds a key to a value, an optional absolute expiration (zero means
// none) and the time it was written. Times are UTC.
type Item[V any] struct {
	Key         string
	Value       V
	Expiration  time.Time
	LastUpdated time.Time
}

// Alive reports whether the item has not expired at now.
func (it Item[V]) Alive(now time.Time) bool {
	return it.Expiration.IsZero() || it.Expiration.After(now)
}

// Store is the minimal contract every backend implements.
type Store[V any] interface {
	// FetchItems returns the items present for keys. Absent keys are simply
	// left out; an error is returned only for transport or decoding failures.
	// keys are distinct and non-empty.
	FetchItems(ctx context.Context, keys []string, region string) ([]Item[V], error)

	// UpsertItems replaces existing entries and inserts missing ones.
	// Each key is written atomically; the batch as a whole need not be.
	UpsertItems(ctx context.Context, items []Item[V], region string) error

	// Close releases resources the store owns.
	Close(ctx context.Context) error
}

// Deleter is implemented by stores with discrete delete semantics.
// Stores without it rely on expiration alone.
type Deleter interface {
	DeleteKeys(ctx context.Context, keys []string, region string) error
}
