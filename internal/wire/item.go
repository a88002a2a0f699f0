package wire

import (
	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/store"
)

// Pack encodes it.Value with c and frames it with the item's timestamps.
func Pack[V any](c codec.Codec[V], it store.Item[V]) ([]byte, error) {
	payload, err := c.Encode(it.Value)
	if err != nil {
		return nil, err
	}
	return Encode(Envelope{
		LastUpdated: it.LastUpdated,
		Expiration:  it.Expiration,
		Payload:     payload,
	}), nil
}

// Unpack is the inverse of Pack. Any framing or codec failure is reported;
// callers treat such entries as misses and drop them.
func Unpack[V any](c codec.Codec[V], key string, b []byte) (store.Item[V], error) {
	env, err := Decode(b)
	if err != nil {
		return store.Item[V]{}, err
	}
	v, err := c.Decode(env.Payload)
	if err != nil {
		return store.Item[V]{}, err
	}
	return store.Item[V]{
		Key:         key,
		Value:       v,
		Expiration:  env.Expiration,
		LastUpdated: env.LastUpdated,
	}, nil
}
