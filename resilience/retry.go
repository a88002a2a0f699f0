package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/unkn0wn-root/regioncache/store"
)

type RetryConfig struct {
	// MaxRetries after the first attempt; 0 => 3.
	MaxRetries      uint64
	InitialInterval time.Duration // 0 => 50ms
	MaxInterval     time.Duration // 0 => 2s
	// MaxElapsedTime caps the whole call including waits; 0 => 10s.
	MaxElapsedTime time.Duration
	// Retryable filters errors worth another attempt; nil retries all.
	Retryable func(error) bool
}

// Retry re-runs failed store calls with exponential backoff. Upserts and
// deletes are idempotent, so repeating them is safe. Retrying stops as soon
// as the caller's context is done.
type Retry[V any] struct {
	next store.Store[V]
	cfg  RetryConfig
}

var (
	_ store.Store[struct{}] = (*Retry[struct{}])(nil)
	_ store.Deleter         = (*Retry[struct{}])(nil)
)

func NewRetry[V any](next store.Store[V], cfg RetryConfig) *Retry[V] {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 50 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}
	if cfg.MaxElapsedTime == 0 {
		cfg.MaxElapsedTime = 10 * time.Second
	}
	return &Retry[V]{next: next, cfg: cfg}
}

func (r *Retry[V]) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = r.cfg.MaxElapsedTime
	return backoff.WithContext(backoff.WithMaxRetries(b, r.cfg.MaxRetries), ctx)
}

// attempt marks errors that must not be retried as permanent.
func (r *Retry[V]) attempt(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || (r.cfg.Retryable != nil && !r.cfg.Retryable(err)) {
		return backoff.Permanent(err)
	}
	return err
}

func (r *Retry[V]) FetchItems(ctx context.Context, keys []string, region string) ([]store.Item[V], error) {
	return backoff.RetryWithData(func() ([]store.Item[V], error) {
		items, err := r.next.FetchItems(ctx, keys, region)
		return items, r.attempt(ctx, err)
	}, r.backOff(ctx))
}

func (r *Retry[V]) UpsertItems(ctx context.Context, items []store.Item[V], region string) error {
	return backoff.Retry(func() error {
		return r.attempt(ctx, r.next.UpsertItems(ctx, items, region))
	}, r.backOff(ctx))
}

func (r *Retry[V]) DeleteKeys(ctx context.Context, keys []string, region string) error {
	d, ok := r.next.(store.Deleter)
	if !ok {
		return nil
	}
	return backoff.Retry(func() error {
		return r.attempt(ctx, d.DeleteKeys(ctx, keys, region))
	}, r.backOff(ctx))
}

func (r *Retry[V]) Close(ctx context.Context) error { return r.next.Close(ctx) }
