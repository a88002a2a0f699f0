package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/unkn0wn-root/regioncache/store"
)

// ErrOpen is returned without touching the store while the breaker is open.
var ErrOpen = gobreaker.ErrOpenState

type BreakerConfig struct {
	Name string
	// MaxRequests allowed through while half-open; 0 => 1.
	MaxRequests uint32
	// Interval clears the failure counts while closed; 0 => never.
	Interval time.Duration
	// Timeout is how long the breaker stays open; 0 => 30s.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker; 0 => 5.
	ConsecutiveFailures uint32
	OnStateChange       func(name string, from, to gobreaker.State)
}

type Breaker[V any] struct {
	next store.Store[V]
	cb   *gobreaker.CircuitBreaker
}

var (
	_ store.Store[struct{}] = (*Breaker[struct{}])(nil)
	_ store.Deleter         = (*Breaker[struct{}])(nil)
)

func NewBreaker[V any](next store.Store[V], cfg BreakerConfig) *Breaker[V] {
	trip := cfg.ConsecutiveFailures
	if trip == 0 {
		trip = 5
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Breaker[V]{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= trip
			},
			OnStateChange: cfg.OnStateChange,
			// a caller giving up says nothing about the backend
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

func (b *Breaker[V]) State() gobreaker.State { return b.cb.State() }

func (b *Breaker[V]) FetchItems(ctx context.Context, keys []string, region string) ([]store.Item[V], error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.FetchItems(ctx, keys, region)
	})
	if err != nil {
		return nil, err
	}
	return res.([]store.Item[V]), nil
}

func (b *Breaker[V]) UpsertItems(ctx context.Context, items []store.Item[V], region string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.UpsertItems(ctx, items, region)
	})
	return err
}

func (b *Breaker[V]) DeleteKeys(ctx context.Context, keys []string, region string) error {
	d, ok := b.next.(store.Deleter)
	if !ok {
		return nil
	}
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, d.DeleteKeys(ctx, keys, region)
	})
	return err
}

func (b *Breaker[V]) Close(ctx context.Context) error { return b.next.Close(ctx) }
