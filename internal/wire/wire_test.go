package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/unkn0wn-root/regioncache/codec"
	"github.com/unkn0wn-root/regioncache/store"
)

func mustDecode(t *testing.T, b []byte) Envelope {
	t.Helper()
	e, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return e
}

func TestEnvelopeRTEmptyAndNonEmpty(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 123, time.UTC)
	cases := []Envelope{
		{LastUpdated: now, Payload: nil},
		{LastUpdated: now, Expiration: now.Add(time.Minute), Payload: []byte("hello")},
		{LastUpdated: now, Payload: []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		got := mustDecode(t, Encode(tc))
		if !got.LastUpdated.Equal(tc.LastUpdated) {
			t.Fatalf("updated mismatch: got %v want %v", got.LastUpdated, tc.LastUpdated)
		}
		if !got.Expiration.Equal(tc.Expiration) {
			t.Fatalf("expiration mismatch: got %v want %v", got.Expiration, tc.Expiration)
		}
		if !bytes.Equal(got.Payload, tc.Payload) {
			t.Fatalf("payload mismatch: got %x want %x", got.Payload, tc.Payload)
		}
	}
}

func TestZeroTimesStayZero(t *testing.T) {
	got := mustDecode(t, Encode(Envelope{Payload: []byte("x")}))
	if !got.LastUpdated.IsZero() || !got.Expiration.IsZero() {
		t.Fatalf("expected zero timestamps, got updated=%v expiry=%v", got.LastUpdated, got.Expiration)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	enc := Encode(Envelope{LastUpdated: time.Now(), Payload: []byte("x")})
	enc = append(enc, 0xDE, 0xAD)
	if _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestDecodeCorruptHeadersAndLengths(t *testing.T) {
	enc := Encode(Envelope{LastUpdated: time.Now(), Payload: []byte("abc")})

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	truncated := enc[:len(enc)-1]
	if _, err := Decode(truncated); err == nil {
		t.Fatalf("expected error on truncated payload")
	}

	if _, err := Decode(enc[:hdrLen-1]); err == nil {
		t.Fatalf("expected error on short header")
	}

	// vlen claims more than available
	huge := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(huge[hdrLen-4:hdrLen], ^uint32(0))
	if _, err := Decode(huge); err == nil {
		t.Fatalf("expected error on oversized vlen")
	}
}

func TestForeignBytesAreCorrupt(t *testing.T) {
	if _, err := Decode([]byte("not-wire-format-but-long-enough-to-pass")); err != ErrCorrupt {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestPackUnpack(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	it := store.Item[string]{Key: "k", Value: "v", LastUpdated: now, Expiration: now.Add(time.Hour)}

	b, err := Pack[string](codec.String{}, it)
	if err != nil {
		t.Fatalf("Pack error: %v", err)
	}
	got, err := Unpack[string](codec.String{}, "k", b)
	if err != nil {
		t.Fatalf("Unpack error: %v", err)
	}
	if got.Key != "k" || got.Value != "v" || !got.LastUpdated.Equal(now) || !got.Expiration.Equal(it.Expiration) {
		t.Fatalf("unexpected item: %+v", got)
	}

	if _, err := Unpack[string](codec.String{}, "k", []byte("raw")); err != ErrCorrupt {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
