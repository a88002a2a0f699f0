// Package codec converts cache values to and from the bytes stored by
// byte-oriented backends (Redis, bigcache, SQL). The in-memory ristretto
// store keeps live values and takes no codec.
//
// A Decode error is how a store learns an entry is unreadable: the entry is
// reported as a miss and removed, so codecs should fail rather than guess.
package codec

// Codec turns cache values into stored bytes and back. Implementations are
// shared by concurrent calls of one store.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Funcs builds a Codec from two functions, for value types that already
// know how to serialize themselves.
type Funcs[V any] struct {
	EncodeFunc func(V) ([]byte, error)
	DecodeFunc func([]byte) (V, error)
}

var _ Codec[struct{}] = Funcs[struct{}]{}

func (c Funcs[V]) Encode(v V) ([]byte, error) { return c.EncodeFunc(v) }
func (c Funcs[V]) Decode(b []byte) (V, error) { return c.DecodeFunc(b) }
