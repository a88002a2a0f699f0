package codec

import (
	"errors"
	"unicode/utf8"
)

var ErrInvalidUTF8 = errors.New("codec: value is not valid UTF-8")

// Bytes stores []byte values as they are. Decode hands back the slice the
// store produced; every backend here returns a fresh copy per read.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String stores Go strings as their bytes. With Validate set, a stored value
// that is not UTF-8 decodes as an error (and is dropped by the store).
type String struct {
	Validate bool
}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }

func (c String) Decode(b []byte) (string, error) {
	if c.Validate && !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}
