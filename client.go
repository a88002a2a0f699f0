package regioncache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unkn0wn-root/regioncache/internal/keyspace"
	"github.com/unkn0wn-root/regioncache/store"
)

// Client is the Cache implementation. It holds no per-key state; the store
// is shared by all concurrent calls and no lock is held across store I/O.
type Client[V any] struct {
	store   store.Store[V]
	log     Logger
	hooks   Hooks
	policy  ErrorPolicy
	now     func() time.Time
	enabled bool
}

func newClient[V any](opts Options[V]) (*Client[V], error) {
	if opts.Store == nil {
		return nil, errors.New("regioncache: store is required")
	}
	opts = opts.withDefaults()
	return &Client[V]{
		store:   opts.Store,
		log:     opts.Logger,
		hooks:   opts.Hooks,
		policy:  opts.ErrorPolicy,
		now:     opts.Now,
		enabled: !opts.Disabled,
	}, nil
}

func (c *Client[V]) Enabled() bool { return c.enabled }

func (c *Client[V]) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func (c *Client[V]) GetOne(ctx context.Context, key, region string) (Result[V], error) {
	if key == "" {
		return Result[V]{}, &ArgumentError{Op: OpGet, Arg: "key", Reason: "must not be empty"}
	}
	res, err := c.GetBatch(ctx, []string{key}, region)
	if err != nil {
		return Result[V]{}, err
	}
	return res[0], nil
}

// GetBatch returns one result per element of keys, in the same order,
// duplicates included. The store sees each distinct key once.
func (c *Client[V]) GetBatch(ctx context.Context, keys []string, region string) ([]Result[V], error) {
	if keys == nil {
		return nil, &ArgumentError{Op: OpGet, Arg: "keys", Reason: "must not be nil"}
	}
	for i, k := range keys {
		if k == "" {
			return nil, &ArgumentError{Op: OpGet, Arg: "keys", Reason: fmt.Sprintf("element %d is empty", i)}
		}
	}

	distinct := keyspace.Distinct(keys)
	if len(distinct) == 0 {
		return []Result[V]{}, nil
	}
	if !c.enabled {
		return missResults[V](keys), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	items, err := c.store.FetchItems(ctx, distinct, region)
	elapsed := time.Since(start)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		if perr := c.fail(OpGet, region, keys, elapsed, err); perr != nil {
			return nil, perr
		}
		return missResults[V](keys), nil
	}

	// stores without a synchronous expiry sweep may return stale items
	now := c.now()
	alive := make(map[string]Item[V], len(items))
	for _, it := range items {
		if it.Alive(now) {
			alive[it.Key] = it
		}
	}

	out := make([]Result[V], len(keys))
	hits := 0
	for i, k := range keys {
		it, ok := alive[k]
		if !ok {
			out[i] = Result[V]{Key: k}
			continue
		}
		out[i] = Result[V]{Key: k, Hit: true, Value: it.Value, LastUpdated: it.LastUpdated}
		hits++
	}

	c.logFetched(region, keys, hits, elapsed)
	c.hooks.Fetched(region, len(keys), hits, elapsed)
	return out, nil
}

func (c *Client[V]) SetOne(ctx context.Context, key string, value V, expiresAt time.Time, region string) error {
	return c.SetBatch(ctx, []KeyValue[V]{{Key: key, Value: value}}, expiresAt, region)
}

// SetBatch upserts every pair with the same expiration. Keys must be
// non-empty and unique within the batch.
func (c *Client[V]) SetBatch(ctx context.Context, kvs []KeyValue[V], expiresAt time.Time, region string) error {
	seen := make(map[string]struct{}, len(kvs))
	for i, kv := range kvs {
		if kv.Key == "" {
			return &ArgumentError{Op: OpSet, Arg: "items", Reason: fmt.Sprintf("key of element %d is empty", i)}
		}
		if _, dup := seen[kv.Key]; dup {
			return &ArgumentError{Op: OpSet, Arg: "items", Reason: fmt.Sprintf("duplicate key %q", kv.Key)}
		}
		seen[kv.Key] = struct{}{}
	}
	if len(kvs) == 0 || !c.enabled {
		return nil
	}

	now := c.now().UTC()
	var exp time.Time
	if !expiresAt.IsZero() {
		exp = expiresAt.UTC()
		if !exp.After(now) {
			c.log.Debug("cache set skipped: expiration is not in the future",
				Fields{"op": OpSet, "region": region, "keys": len(kvs), "expires_at": exp})
			return nil
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	items := make([]Item[V], len(kvs))
	for i, kv := range kvs {
		items[i] = Item[V]{Key: kv.Key, Value: kv.Value, Expiration: exp, LastUpdated: now}
	}

	start := time.Now()
	err := c.store.UpsertItems(ctx, items, region)
	elapsed := time.Since(start)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return c.fail(OpSet, region, keysOf(kvs), elapsed, err)
	}

	c.logStored(region, len(items), exp, elapsed)
	c.hooks.Stored(region, len(items), elapsed)
	return nil
}

func (c *Client[V]) RemoveOne(ctx context.Context, key, region string) error {
	return c.RemoveBatch(ctx, []string{key}, region)
}

// RemoveBatch deletes keys best-effort. Empty keys are dropped; a store
// without Deleter support makes this a no-op that is still reported.
// Store failures go through the ErrorPolicy like reads and writes.
func (c *Client[V]) RemoveBatch(ctx context.Context, keys []string, region string) error {
	ks := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			ks = append(ks, k)
		}
	}
	ks = keyspace.Distinct(ks)
	if len(ks) == 0 || !c.enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	var err error
	if d, ok := c.store.(store.Deleter); ok {
		err = d.DeleteKeys(ctx, ks, region)
	}
	elapsed := time.Since(start)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return c.fail(OpRemove, region, ks, elapsed, err)
	}

	c.logRemoved(region, len(ks), elapsed)
	c.hooks.Removed(region, len(ks), elapsed)
	return nil
}

// fail logs a store failure once with every key involved and lets the
// policy decide what the caller sees.
func (c *Client[V]) fail(op Op, region string, keys []string, elapsed time.Duration, err error) error {
	c.log.Error(fmt.Sprintf("cache %s failed for keys [%s]", op, strings.Join(keys, ", ")), Fields{
		"op":         op,
		"region":     region,
		"keys":       keys,
		"elapsed_ms": elapsed.Milliseconds(),
		"err":        err,
	})
	c.hooks.BackendFailed(op, region, len(keys), err)
	return c.policy.Resolve(&BackendError{Op: op, Region: region, Keys: keys, Err: err})
}

func keysOf[V any](kvs []KeyValue[V]) []string {
	out := make([]string, len(kvs))
	for i, kv := range kvs {
		out[i] = kv.Key
	}
	return out
}
