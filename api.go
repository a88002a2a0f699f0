package regioncache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/regioncache/store"
)

// Cache is the caller-facing API. Single-key methods are batches of one.
type Cache[V any] interface {
	GetOne(ctx context.Context, key, region string) (Result[V], error)
	GetBatch(ctx context.Context, keys []string, region string) ([]Result[V], error)

	// SetOne/SetBatch write with an optional absolute expiration (zero = none).
	// An expiration that is not in the future makes the whole call a no-op.
	SetOne(ctx context.Context, key string, value V, expiresAt time.Time, region string) error
	SetBatch(ctx context.Context, items []KeyValue[V], expiresAt time.Time, region string) error

	// Empty keys are ignored by removes.
	RemoveOne(ctx context.Context, key, region string) error
	RemoveBatch(ctx context.Context, keys []string, region string) error

	Close(ctx context.Context) error
}

// Options configure a Client. Only Store is required.
type Options[V any] struct {
	Store store.Store[V]

	Logger       Logger           // nil => NopLogger
	LogLevel     Level            // lines below it are dropped; zero => everything
	Hooks        Hooks            // nil => NopHooks
	ThrowOnError bool             // return backend failures instead of degrading
	ErrorPolicy  ErrorPolicy      // overrides ThrowOnError when set
	Disabled     bool             // every read misses, every write is dropped
	Now          func() time.Time // clock for expiration checks; nil => time.Now
}

var _ Cache[struct{}] = (*Client[struct{}])(nil)

func New[V any](opts Options[V]) (*Client[V], error) {
	return newClient(opts)
}
