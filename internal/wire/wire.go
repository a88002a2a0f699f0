package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 8 + 8 + 4
)

var (
	ErrCorrupt = errors.New("regioncache: corrupt entry")
	magic4     = [...]byte{'R', 'G', 'N', 'C'}
)

// Envelope is the stored form of an item in byte-oriented backends.
// A zero Expiration means the entry never expires.
type Envelope struct {
	LastUpdated time.Time
	Expiration  time.Time
	Payload     []byte
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames an envelope:
//
//	magic(4) | ver(1) | updated(i64 be, unix nanos) | expiry(i64 be, unix nanos, 0=none) | vlen(u32 be) | payload(vlen)
func Encode(e Envelope) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(unixNano(e.LastUpdated)))
	buf.Write(u8[:])

	binary.BigEndian.PutUint64(u8[:], uint64(unixNano(e.Expiration)))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])

	buf.Write(e.Payload)
	return buf.Bytes()
}

// Decode parses a frame produced by Encode. Trailing bytes are rejected.
// The returned payload aliases b.
func Decode(b []byte) (Envelope, error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return Envelope{}, ErrCorrupt
	}

	off := 5
	updated := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	expiry := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // overflow-safe, strict framing
		return Envelope{}, ErrCorrupt
	}

	return Envelope{
		LastUpdated: fromUnixNano(updated),
		Expiration:  fromUnixNano(expiry),
		Payload:     b[off : off+vlen],
	}, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
