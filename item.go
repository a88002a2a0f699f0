package regioncache

import (
	"time"

	"github.com/unkn0wn-root/regioncache/store"
)

// Item is the write/read envelope exchanged with stores.
type Item[V any] = store.Item[V]

// KeyValue is one pair of a batch write.
type KeyValue[V any] struct {
	Key   string
	Value V
}

// Result is the outcome of reading one requested key. On a miss Value and
// LastUpdated are zero.
type Result[V any] struct {
	Key         string
	Hit         bool
	Value       V
	LastUpdated time.Time
}

func missResults[V any](keys []string) []Result[V] {
	out := make([]Result[V], len(keys))
	for i, k := range keys {
		out[i] = Result[V]{Key: k}
	}
	return out
}
