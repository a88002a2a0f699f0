package asynchook

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/unkn0wn-root/regioncache"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (r *recorder) add(e string) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) Fetched(string, int, int, time.Duration)          { r.add("fetched") }
func (r *recorder) Stored(string, int, time.Duration)                { r.add("stored") }
func (r *recorder) Removed(string, int, time.Duration)               { r.add("removed") }
func (r *recorder) BackendFailed(regioncache.Op, string, int, error) { r.add("failed") }

func TestForwardsEventsAndDrainsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	h := New(rec, 1, 16)
	h.Fetched("r", 2, 1, time.Millisecond)
	h.Stored("r", 2, time.Millisecond)
	h.Removed("r", 1, time.Millisecond)
	h.BackendFailed(regioncache.OpGet, "r", 1, errors.New("x"))
	h.Close()
	h.Close()

	assert.Equal(t, []string{"fetched", "stored", "removed", "failed"}, rec.events)
	assert.Zero(t, h.Dropped())
}

func TestDropsWhenQueueIsFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{block: make(chan struct{})}
	h := New(rec, 1, 1)

	// one event is held by the worker, one fills the queue; give the
	// worker a moment to pick the first one up
	h.Stored("r", 1, 0)
	assert.Eventually(t, func() bool { return len(h.q) == 0 }, time.Second, time.Millisecond)
	h.Stored("r", 1, 0)
	h.Stored("r", 1, 0)
	h.Stored("r", 1, 0)
	assert.Equal(t, uint64(2), h.Dropped())

	close(rec.block)
	h.Close()
	assert.Len(t, rec.events, 2)

	h.Stored("r", 1, 0)
	assert.Equal(t, uint64(3), h.Dropped())
}
