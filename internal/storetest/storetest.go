// Package storetest checks a store.Store implementation against the
// contract the client relies on.
package storetest

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/regioncache/store"
)

// Factory returns a fresh, empty store. Cleanup is the caller's job.
type Factory func(t *testing.T) store.Store[string]

// Run exercises st's fetch/upsert/delete behavior.
func Run(t *testing.T, newStore Factory) {
	t.Run("FetchMissingReturnsNothing", func(t *testing.T) {
		st := newStore(t)
		items, err := st.FetchItems(context.Background(), []string{"nope", "nada"}, "")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("UpsertThenFetch", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		now := time.Now().UTC().Truncate(time.Microsecond)
		exp := now.Add(time.Hour)

		require.NoError(t, st.UpsertItems(ctx, []store.Item[string]{
			{Key: "a", Value: "1", LastUpdated: now},
			{Key: "b", Value: "2", LastUpdated: now, Expiration: exp},
		}, ""))

		got := byKey(t, st, ctx, []string{"a", "b", "c"}, "")
		require.Len(t, got, 2)
		assert.Equal(t, "1", got["a"].Value)
		assert.True(t, got["a"].Expiration.IsZero())
		assert.True(t, got["a"].LastUpdated.Equal(now))
		assert.Equal(t, "2", got["b"].Value)
		assert.True(t, got["b"].Expiration.Equal(exp))
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		t0 := time.Now().UTC().Truncate(time.Microsecond)

		require.NoError(t, st.UpsertItems(ctx, []store.Item[string]{{Key: "k", Value: "old", LastUpdated: t0}}, "r"))
		require.NoError(t, st.UpsertItems(ctx, []store.Item[string]{
			{Key: "k", Value: "new", LastUpdated: t0.Add(time.Second)},
			{Key: "j", Value: "fresh", LastUpdated: t0.Add(time.Second)},
		}, "r"))

		got := byKey(t, st, ctx, []string{"k", "j"}, "r")
		assert.Equal(t, "new", got["k"].Value)
		assert.True(t, got["k"].LastUpdated.Equal(t0.Add(time.Second)))
		assert.Equal(t, "fresh", got["j"].Value)
	})

	t.Run("RegionsAreIsolated", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		now := time.Now().UTC()

		require.NoError(t, st.UpsertItems(ctx, []store.Item[string]{{Key: "k", Value: "A", LastUpdated: now}}, "r1"))

		assert.Empty(t, byKey(t, st, ctx, []string{"k"}, "r2"))
		assert.Empty(t, byKey(t, st, ctx, []string{"k"}, ""))
		got := byKey(t, st, ctx, []string{"k"}, "r1")
		assert.Equal(t, "A", got["k"].Value)
	})

	t.Run("RegionNamesAreOpaque", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		now := time.Now().UTC()

		for _, r := range []string{"Users", "users", "", "DEFAULT", "default", "a?b", "a b"} {
			require.NoError(t, st.UpsertItems(ctx, []store.Item[string]{{Key: "k", Value: "in " + r, LastUpdated: now}}, r))
		}
		for _, r := range []string{"Users", "users", "", "DEFAULT", "default", "a?b", "a b"} {
			got := byKey(t, st, ctx, []string{"k"}, r)
			assert.Equal(t, "in "+r, got["k"].Value, "region %q", r)
		}
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		d, ok := st.(store.Deleter)
		if !ok {
			t.Skip("store has no delete support")
		}
		now := time.Now().UTC()
		require.NoError(t, st.UpsertItems(ctx, []store.Item[string]{
			{Key: "a", Value: "1", LastUpdated: now},
			{Key: "b", Value: "2", LastUpdated: now},
		}, "r"))

		require.NoError(t, d.DeleteKeys(ctx, []string{"a"}, "r"))
		require.NoError(t, d.DeleteKeys(ctx, []string{"a", "missing"}, "r"))

		got := byKey(t, st, ctx, []string{"a", "b"}, "r")
		assert.NotContains(t, got, "a")
		assert.Contains(t, got, "b")
	})

	t.Run("LargeBatch", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		now := time.Now().UTC()

		const n = 1200
		items := make([]store.Item[string], n)
		keys := make([]string, n)
		for i := range items {
			k := key(i)
			keys[i] = k
			items[i] = store.Item[string]{Key: k, Value: k, LastUpdated: now}
		}
		require.NoError(t, st.UpsertItems(ctx, items, "bulk"))

		got, err := st.FetchItems(ctx, keys, "bulk")
		require.NoError(t, err)
		require.Len(t, got, n)
		gotKeys := make([]string, len(got))
		for i, it := range got {
			gotKeys[i] = it.Key
			assert.Equal(t, it.Key, it.Value)
		}
		sort.Strings(gotKeys)
		want := append([]string(nil), keys...)
		sort.Strings(want)
		assert.Equal(t, want, gotKeys)
	})
}

func byKey(t *testing.T, st store.Store[string], ctx context.Context, keys []string, region string) map[string]store.Item[string] {
	t.Helper()
	items, err := st.FetchItems(ctx, keys, region)
	require.NoError(t, err)
	out := make(map[string]store.Item[string], len(items))
	for _, it := range items {
		out[it.Key] = it
	}
	return out
}

func key(i int) string {
	const digits = "0123456789"
	b := []byte("key-0000")
	for p := len(b) - 1; i > 0 && p >= 4; p-- {
		b[p] = digits[i%10]
		i /= 10
	}
	return string(b)
}
