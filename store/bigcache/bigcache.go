// Package bigcache is an in-process byte Store backed by allegro/bigcache.
//
// bigcache has no per-entry TTL: entries leave the cache when the global
// LifeWindow passes or the shard is full. The expiration written with each
// item travels inside the envelope and the client filters on it, so a
// LifeWindow shorter than an item's lifetime only costs hits.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/internal/keyspace"
	"github.com/unkn0wn-root/regioncache/internal/wire"
	"github.com/unkn0wn-root/regioncache/store"
)

var ErrNilCodec = errors.New("bigcache store: nil codec")

type Config[V any] struct {
	Codec codec.Codec[V]

	LifeWindow         time.Duration
	CleanWindow        time.Duration
	Shards             int
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

type Store[V any] struct {
	c     *bc.BigCache
	codec codec.Codec[V]
}

var (
	_ store.Store[struct{}] = (*Store[struct{}])(nil)
	_ store.Deleter         = (*Store[struct{}])(nil)
)

func New[V any](cfg Config[V]) (*Store[V], error) {
	if cfg.Codec == nil {
		return nil, ErrNilCodec
	}
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcache store: LifeWindow must be positive")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Store[V]{c: c, codec: cfg.Codec}, nil
}

func (s *Store[V]) FetchItems(_ context.Context, keys []string, region string) ([]store.Item[V], error) {
	out := make([]store.Item[V], 0, len(keys))
	for _, k := range keys {
		pk := keyspace.PhysicalKey(region, k)
		b, err := s.c.Get(pk)
		if errors.Is(err, bc.ErrEntryNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		it, err := wire.Unpack(s.codec, k, b)
		if err != nil {
			// self-heal: undecodable entries are dropped and read as misses
			_ = s.c.Delete(pk)
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *Store[V]) UpsertItems(_ context.Context, items []store.Item[V], region string) error {
	for _, it := range items {
		b, err := wire.Pack(s.codec, it)
		if err != nil {
			return err
		}
		if err := s.c.Set(keyspace.PhysicalKey(region, it.Key), b); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store[V]) DeleteKeys(_ context.Context, keys []string, region string) error {
	for _, k := range keys {
		err := s.c.Delete(keyspace.PhysicalKey(region, k))
		if err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
			return err
		}
	}
	return nil
}

func (s *Store[V]) Close(_ context.Context) error {
	return s.c.Close()
}

// Len reports the number of entries across all regions.
func (s *Store[V]) Len() int { return s.c.Len() }
