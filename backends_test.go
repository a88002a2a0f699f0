package regioncache_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/regioncache"
	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/resilience"
	"github.com/unkn0wn-root/regioncache/store"
	"github.com/unkn0wn-root/regioncache/store/bigcache"
	"github.com/unkn0wn-root/regioncache/store/memory"
	redisstore "github.com/unkn0wn-root/regioncache/store/redis"
	"github.com/unkn0wn-root/regioncache/store/sqlstore"
)

type user struct {
	ID   int    `json:"id" msgpack:"id" cbor:"id"`
	Name string `json:"name" msgpack:"name" cbor:"name"`
}

type backend struct {
	name string
	open func(t *testing.T) store.Store[user]
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) store.Store[user] {
			s, err := memory.New[user](memory.Config{NumCounters: 1e4, MaxCost: 1e4, BufferItems: 64})
			require.NoError(t, err)
			return s
		}},
		{"bigcache", func(t *testing.T) store.Store[user] {
			s, err := bigcache.New(bigcache.Config[user]{Codec: codec.Msgpack[user]{JSONTags: true}, LifeWindow: time.Hour, Shards: 16, MaxEntriesInWindow: 1024, MaxEntrySize: 128})
			require.NoError(t, err)
			return s
		}},
		{"redis", func(t *testing.T) store.Store[user] {
			mr := miniredis.RunT(t)
			s, err := redisstore.New(redisstore.Config[user]{
				Client:      goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
				Codec:       codec.MustCBOR[user](codec.CBOROptions{}),
				CloseClient: true,
			})
			require.NoError(t, err)
			return s
		}},
		{"sqlite", func(t *testing.T) store.Store[user] {
			db, err := sqlstore.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
			require.NoError(t, err)
			s, err := sqlstore.New(sqlstore.Config[user]{DB: db, Codec: codec.JSON[user]{}, PartitionSize: 2, CloseDB: true})
			require.NoError(t, err)
			return s
		}},
		{"sqlite+resilience", func(t *testing.T) store.Store[user] {
			db, err := sqlstore.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
			require.NoError(t, err)
			s, err := sqlstore.New(sqlstore.Config[user]{DB: db, Codec: codec.JSON[user]{Strict: true}, CloseDB: true})
			require.NoError(t, err)
			return resilience.NewBreaker[user](resilience.NewRetry[user](s, resilience.RetryConfig{}), resilience.BreakerConfig{Name: "sqlite"})
		}},
	}
}

func TestClientAgainstBackends(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			c, err := regioncache.New[user](regioncache.Options[user]{Store: b.open(t), ThrowOnError: true})
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close(ctx) })

			ann := user{ID: 1, Name: "ann"}
			bob := user{ID: 2, Name: "bob"}
			cat := user{ID: 3, Name: "cat"}

			// round trip
			require.NoError(t, c.SetOne(ctx, "u1", ann, time.Now().Add(time.Hour), "users"))
			res, err := c.GetOne(ctx, "u1", "users")
			require.NoError(t, err)
			assert.True(t, res.Hit)
			assert.Equal(t, ann, res.Value)
			assert.False(t, res.LastUpdated.IsZero())

			// region isolation
			res, err = c.GetOne(ctx, "u1", "admins")
			require.NoError(t, err)
			assert.False(t, res.Hit)
			res, err = c.GetOne(ctx, "u1", "")
			require.NoError(t, err)
			assert.False(t, res.Hit)

			// batch write spanning partitions, ordered read with duplicates
			require.NoError(t, c.SetBatch(ctx, []regioncache.KeyValue[user]{
				{Key: "u2", Value: bob}, {Key: "u3", Value: cat}, {Key: "u4", Value: bob},
			}, time.Time{}, "users"))
			got, err := c.GetBatch(ctx, []string{"u3", "nope", "u1", "u3", "u4", "u2"}, "users")
			require.NoError(t, err)
			require.Len(t, got, 6)
			assert.Equal(t, []bool{true, false, true, true, true, true}, hits(got))
			assert.Equal(t, cat, got[0].Value)
			assert.Equal(t, "nope", got[1].Key)
			assert.Equal(t, ann, got[2].Value)
			assert.Equal(t, cat, got[3].Value)
			assert.Equal(t, bob, got[5].Value)

			// expired write is a no-op, the old value stays
			require.NoError(t, c.SetOne(ctx, "u1", bob, time.Now().Add(-time.Minute), "users"))
			res, err = c.GetOne(ctx, "u1", "users")
			require.NoError(t, err)
			assert.Equal(t, ann, res.Value)

			// idempotent remove
			require.NoError(t, c.RemoveBatch(ctx, []string{"u1", "u2", "", "u1"}, "users"))
			require.NoError(t, c.RemoveOne(ctx, "u1", "users"))
			got, err = c.GetBatch(ctx, []string{"u1", "u2", "u3"}, "users")
			require.NoError(t, err)
			assert.Equal(t, []bool{false, false, true}, hits(got))
		})
	}
}

func TestClientOverClosedRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	st, err := redisstore.New(redisstore.Config[user]{
		Client:      goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1}),
		Codec:       codec.JSON[user]{},
		CloseClient: true,
	})
	require.NoError(t, err)
	mr.Close()

	lenient, err := regioncache.New[user](regioncache.Options[user]{Store: st})
	require.NoError(t, err)
	res, err := lenient.GetBatch(ctx, []string{"a", "b"}, "r")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, hits(res))
	assert.NoError(t, lenient.SetOne(ctx, "a", user{}, time.Time{}, "r"))

	strict, err := regioncache.New[user](regioncache.Options[user]{Store: st, ThrowOnError: true})
	require.NoError(t, err)
	_, err = strict.GetOne(ctx, "a", "r")
	var be *regioncache.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, regioncache.OpGet, be.Op)
	assert.Equal(t, []string{"a"}, be.Keys)
}

func hits(rs []regioncache.Result[user]) []bool {
	out := make([]bool, len(rs))
	for i, r := range rs {
		out[i] = r.Hit
	}
	return out
}
