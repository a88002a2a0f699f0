// Package regioncache implements a backend-agnostic cache client with batched
// get/set/remove, region partitioning and uniform expiration handling.
//
// Components:
//   - Store[V]: a backend (see store/memory, store/bigcache, store/redis,
//     store/sqlstore) that fetches and upserts Items for a region.
//   - Codec[V]: (de)serializes V <-> []byte for byte-oriented stores.
//   - Client[V]: validates and de-duplicates keys, calls the store once per
//     batch, drops expired items, rebuilds results in request order and
//     emits one telemetry line per call.
//
// Regions:
//
//	memory/redis/bigcache: $<region>$|<key>   (bare key for the default region)
//	sql:                   table TCACHE_<escaped region> (TCACHE_DEFAULT)
//
// Failures:
//
// Invalid arguments always return an *ArgumentError. Backend failures are
// logged and then resolved by the ErrorPolicy: by default reads degrade to
// all-miss and writes to no-op; with ThrowOnError the *BackendError is
// returned. Context cancellation is always returned as-is.
//
// Usage:
//
//	st, _ := memory.New[User](memory.Config{NumCounters: 1e5, MaxCost: 1e4, BufferItems: 64})
//	c, _ := regioncache.New[User](regioncache.Options[User]{Store: st, Logger: zaplog.New(zl)})
//	_ = c.SetOne(ctx, "u:1", u, time.Now().Add(time.Hour), "users")
//	res, _ := c.GetOne(ctx, "u:1", "users")
package regioncache
