// Package redis is a networked Store on go-redis v9. Keys are stored as
// "$region$|key" and values as an envelope around the codec's bytes, so a
// read sees the item's expiration and write time without a second lookup.
//
// A fetch is one MGET. Writes are grouped by expiration: a group of several
// keys is a MULTI/EXEC of one MSET plus a PEXPIREAT per key, a single key is
// a plain SET with its TTL. Groups are written in turn and a failure does
// not undo groups already written.
//
// MSET and MGET span keys of different hash slots, so against Redis Cluster
// every key of a batch must hash to the same slot.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/internal/keyspace"
	"github.com/unkn0wn-root/regioncache/internal/wire"
	"github.com/unkn0wn-root/regioncache/store"
)

var (
	ErrNilClient = store.ErrNilClient
	ErrNilCodec  = errors.New("redis store: nil codec")
)

type Config[V any] struct {
	Client      goredis.UniversalClient
	Codec       codec.Codec[V]
	CloseClient bool // set true only if this store exclusively owns the client
}

type Store[V any] struct {
	rdb         goredis.UniversalClient
	codec       codec.Codec[V]
	closeClient bool
}

var (
	_ store.Store[struct{}] = (*Store[struct{}])(nil)
	_ store.Deleter         = (*Store[struct{}])(nil)
)

func New[V any](cfg Config[V]) (*Store[V], error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Codec == nil {
		return nil, ErrNilCodec
	}
	return &Store[V]{rdb: cfg.Client, codec: cfg.Codec, closeClient: cfg.CloseClient}, nil
}

func (s *Store[V]) FetchItems(ctx context.Context, keys []string, region string) ([]store.Item[V], error) {
	if len(keys) == 0 {
		return nil, nil
	}
	pks := keyspace.PhysicalKeys(region, keys)
	vals, err := s.rdb.MGet(ctx, pks...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]store.Item[V], 0, len(vals))
	var corrupt []string
	for i, v := range vals {
		var b []byte
		switch vv := v.(type) {
		case nil:
			continue
		case string:
			b = []byte(vv)
		case []byte:
			b = vv
		default:
			return nil, fmt.Errorf("redis store: unexpected MGET reply %T for %s", v, pks[i])
		}
		it, err := wire.Unpack(s.codec, keys[i], b)
		if err != nil {
			corrupt = append(corrupt, pks[i])
			continue
		}
		out = append(out, it)
	}
	if len(corrupt) > 0 {
		// self-heal, best effort
		_ = s.rdb.Del(ctx, corrupt...).Err()
	}
	return out, nil
}

func (s *Store[V]) UpsertItems(ctx context.Context, items []store.Item[V], region string) error {
	if len(items) == 0 {
		return nil
	}

	// group by expiration, keeping first-seen order
	var order []int64
	groups := make(map[int64][]any)
	for _, it := range items {
		b, err := wire.Pack(s.codec, it)
		if err != nil {
			return fmt.Errorf("encode %q: %w", it.Key, err)
		}
		var exp int64
		if !it.Expiration.IsZero() {
			exp = it.Expiration.UnixMilli()
		}
		if _, ok := groups[exp]; !ok {
			order = append(order, exp)
		}
		groups[exp] = append(groups[exp], keyspace.PhysicalKey(region, it.Key), b)
	}

	for _, exp := range order {
		if err := s.writeGroup(ctx, groups[exp], exp); err != nil {
			return err
		}
	}
	return nil
}

// writeGroup writes key/value pairs sharing one expiration (unix ms, 0 =
// none).
func (s *Store[V]) writeGroup(ctx context.Context, pairs []any, exp int64) error {
	if len(pairs) == 2 {
		key := pairs[0].(string)
		if exp == 0 {
			return s.rdb.Set(ctx, key, pairs[1], 0).Err()
		}
		ttl := time.Until(time.UnixMilli(exp))
		if ttl < time.Millisecond {
			// already expired: the old value must not survive the write
			return s.rdb.Del(ctx, key).Err()
		}
		return s.rdb.Set(ctx, key, pairs[1], ttl).Err()
	}

	if exp == 0 {
		return s.rdb.MSet(ctx, pairs...).Err()
	}
	at := time.UnixMilli(exp)
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.MSet(ctx, pairs...)
		for i := 0; i < len(pairs); i += 2 {
			p.PExpireAt(ctx, pairs[i].(string), at)
		}
		return nil
	})
	return err
}

func (s *Store[V]) DeleteKeys(ctx context.Context, keys []string, region string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keyspace.PhysicalKeys(region, keys)...).Err()
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store[V]) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
