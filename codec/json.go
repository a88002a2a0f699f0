package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

var errTrailingJSON = errors.New("codec: trailing data after JSON value")

// JSON stores values as encoding/json documents. The zero value is lenient
// like json.Unmarshal. Strict refuses unknown object fields and trailing
// bytes, which turns entries written by an older or foreign struct shape
// into misses instead of half-filled values.
type JSON[V any] struct {
	Strict bool
}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }

func (c JSON[V]) Decode(b []byte) (V, error) {
	var v V
	if !c.Strict {
		err := json.Unmarshal(b, &v)
		return v, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		var zero V
		return zero, errTrailingJSON
	}
	return v, nil
}
