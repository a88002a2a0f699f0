// usage:
//
//	import (
//		"log/slog"
//
//		"github.com/unkn0wn-root/regioncache"
//		asynchook "github.com/unkn0wn-root/regioncache/hooks/async"
//		"github.com/unkn0wn-root/regioncache/sloghooks"
//	)
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{FetchEvery: 100})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := regioncache.New[User](regioncache.Options[User]{
//	    Store: st,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/regioncache"
)

// Hooks forwards events to inner on a small worker pool. When the queue is
// full the event is dropped and counted; the cache call never waits.
type Hooks struct {
	inner   regioncache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ regioncache.Hooks = (*Hooks)(nil)

func New(inner regioncache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed queue
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Fetched(region string, requested, hits int, elapsed time.Duration) {
	h.try(func() { h.inner.Fetched(region, requested, hits, elapsed) })
}

func (h *Hooks) Stored(region string, count int, elapsed time.Duration) {
	h.try(func() { h.inner.Stored(region, count, elapsed) })
}

func (h *Hooks) Removed(region string, count int, elapsed time.Duration) {
	h.try(func() { h.inner.Removed(region, count, elapsed) })
}

func (h *Hooks) BackendFailed(op regioncache.Op, region string, keys int, err error) {
	h.try(func() { h.inner.BackendFailed(op, region, keys, err) })
}
