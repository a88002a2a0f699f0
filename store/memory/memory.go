// Package memory is an in-process Store backed by ristretto. Items are kept
// as live values (no codec) under "$region$|key" and expire through
// ristretto's per-entry TTL.
//
// ristretto sweeps expired entries on its own schedule, so a read may still
// return an item past its expiration; the client filters those out.
// A set refused at the door (full set buffer, closed cache) fails the batch
// with ErrDropped. Later evictions by the admission policy are not reported.
package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/regioncache/internal/keyspace"
	"github.com/unkn0wn-root/regioncache/store"
)

// ErrDropped reports writes ristretto refused to buffer.
var ErrDropped = errors.New("memory: set dropped")

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost of one item; 0 => 1.
	ItemCost int64
}

// Store holds one ristretto cache for every region.
type Store[V any] struct {
	c       *rc.Cache
	cost    int64
	ownsRef bool
}

var (
	_ store.Store[struct{}] = (*Store[struct{}])(nil)
	_ store.Deleter         = (*Store[struct{}])(nil)
)

func New[V any](cfg Config) (*Store[V], error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("memory: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
		// costs are the caller's ItemCost, not ristretto's size estimate
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	s := NewWithCache[V](c, cfg.ItemCost)
	s.ownsRef = true
	return s, nil
}

// NewWithCache shares an existing ristretto cache. Close leaves it open.
func NewWithCache[V any](c *rc.Cache, itemCost int64) *Store[V] {
	if itemCost <= 0 {
		itemCost = 1
	}
	return &Store[V]{c: c, cost: itemCost}
}

func (s *Store[V]) FetchItems(_ context.Context, keys []string, region string) ([]store.Item[V], error) {
	out := make([]store.Item[V], 0, len(keys))
	for _, k := range keys {
		pk := keyspace.PhysicalKey(region, k)
		v, ok := s.c.Get(pk)
		if !ok {
			continue
		}
		it, ok := v.(store.Item[V])
		if !ok {
			// self-heal: drop unexpected entry shape
			s.c.Del(pk)
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *Store[V]) UpsertItems(_ context.Context, items []store.Item[V], region string) error {
	dropped := 0
	for _, it := range items {
		pk := keyspace.PhysicalKey(region, it.Key)
		var ttl time.Duration
		if !it.Expiration.IsZero() {
			ttl = time.Until(it.Expiration)
			if ttl <= 0 {
				// already expired: the previous value must not survive the write
				s.c.Del(pk)
				continue
			}
		}
		if !s.c.SetWithTTL(pk, it, s.cost, ttl) {
			dropped++
		}
	}
	// sets are buffered; make them visible to the next read
	s.c.Wait()
	if dropped > 0 {
		return fmt.Errorf("%w: %d of %d keys in region %q", ErrDropped, dropped, len(items), region)
	}
	return nil
}

func (s *Store[V]) DeleteKeys(_ context.Context, keys []string, region string) error {
	for _, k := range keys {
		s.c.Del(keyspace.PhysicalKey(region, k))
	}
	return nil
}

func (s *Store[V]) Close(_ context.Context) error {
	if s.ownsRef {
		s.c.Wait()
		s.c.Close()
	}
	return nil
}

// Metrics exposes ristretto's counters (nil unless Config.Metrics is set).
func (s *Store[V]) Metrics() *rc.Metrics { return s.c.Metrics }
