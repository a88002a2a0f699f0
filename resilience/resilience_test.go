package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/regioncache/store"
)

var errDown = errors.New("backend down")

// flaky fails the first n calls of every operation with err.
type flaky struct {
	n     int32
	err   error
	calls atomic.Int32
}

func (f *flaky) result() error {
	if f.calls.Add(1) <= f.n {
		return f.err
	}
	return nil
}

func (f *flaky) FetchItems(_ context.Context, keys []string, _ string) ([]store.Item[string], error) {
	if err := f.result(); err != nil {
		return nil, err
	}
	out := make([]store.Item[string], len(keys))
	for i, k := range keys {
		out[i] = store.Item[string]{Key: k, Value: "v:" + k}
	}
	return out, nil
}

func (f *flaky) UpsertItems(context.Context, []store.Item[string], string) error { return f.result() }
func (f *flaky) DeleteKeys(context.Context, []string, string) error              { return f.result() }
func (f *flaky) Close(context.Context) error                                     { return nil }

// noDelete hides flaky's DeleteKeys.
type noDelete struct{ f *flaky }

func (n noDelete) FetchItems(ctx context.Context, keys []string, r string) ([]store.Item[string], error) {
	return n.f.FetchItems(ctx, keys, r)
}
func (n noDelete) UpsertItems(ctx context.Context, items []store.Item[string], r string) error {
	return n.f.UpsertItems(ctx, items, r)
}
func (n noDelete) Close(ctx context.Context) error { return n.f.Close(ctx) }

func fastRetry() RetryConfig {
	return RetryConfig{InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	ctx := context.Background()
	f := &flaky{n: 2, err: errDown}
	r := NewRetry[string](f, fastRetry())

	items, err := r.FetchItems(ctx, []string{"a"}, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "v:a", items[0].Value)
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	f := &flaky{n: 100, err: errDown}
	cfg := fastRetry()
	cfg.MaxRetries = 2
	r := NewRetry[string](f, cfg)

	err := r.UpsertItems(context.Background(), []store.Item[string]{{Key: "a"}}, "")
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestRetryHonorsRetryable(t *testing.T) {
	f := &flaky{n: 100, err: errDown}
	cfg := fastRetry()
	cfg.Retryable = func(err error) bool { return !errors.Is(err, errDown) }
	r := NewRetry[string](f, cfg)

	err := r.DeleteKeys(context.Background(), []string{"a"}, "")
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestRetryStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &flaky{n: 100, err: context.Canceled}
	r := NewRetry[string](f, fastRetry())

	_, err := r.FetchItems(ctx, []string{"a"}, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestRetryDeleteWithoutDeleterIsNoop(t *testing.T) {
	f := &flaky{n: 100, err: errDown}
	r := NewRetry[string](noDelete{f}, fastRetry())

	require.NoError(t, r.DeleteKeys(context.Background(), []string{"a"}, ""))
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestBreakerTripsAndShortCircuits(t *testing.T) {
	ctx := context.Background()
	f := &flaky{n: 100, err: errDown}
	var changes []gobreaker.State
	b := NewBreaker[string](f, BreakerConfig{
		Name:                "test",
		ConsecutiveFailures: 2,
		Timeout:             time.Hour,
		OnStateChange: func(_ string, _, to gobreaker.State) {
			changes = append(changes, to)
		},
	})

	_, err := b.FetchItems(ctx, []string{"a"}, "")
	assert.ErrorIs(t, err, errDown)
	assert.ErrorIs(t, b.UpsertItems(ctx, nil, ""), errDown)
	assert.Equal(t, gobreaker.StateOpen, b.State())

	assert.ErrorIs(t, b.DeleteKeys(ctx, []string{"a"}, ""), ErrOpen)
	assert.Equal(t, int32(2), f.calls.Load(), "open breaker does not reach the store")
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, changes)
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	ctx := context.Background()
	f := &flaky{n: 10, err: context.Canceled}
	b := NewBreaker[string](f, BreakerConfig{ConsecutiveFailures: 1})

	for i := 0; i < 5; i++ {
		_, err := b.FetchItems(ctx, []string{"a"}, "")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerPassesResultsThrough(t *testing.T) {
	f := &flaky{}
	b := NewBreaker[string](f, BreakerConfig{})

	items, err := b.FetchItems(context.Background(), []string{"a", "b"}, "r")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	require.NoError(t, b.DeleteKeys(context.Background(), []string{"a"}, "r"))
	require.NoError(t, b.Close(context.Background()))
}

func TestRetryInsideBreaker(t *testing.T) {
	f := &flaky{n: 2, err: errDown}
	b := NewBreaker[string](NewRetry[string](f, fastRetry()), BreakerConfig{ConsecutiveFailures: 1})

	require.NoError(t, b.UpsertItems(context.Background(), []store.Item[string]{{Key: "a"}}, ""))
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
