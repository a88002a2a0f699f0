package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var ErrNilMessage = errors.New("codec: nil proto message")

// Protobuf stores generated proto messages. ctor returns an empty message to
// decode into, e.g. func() *pb.User { return &pb.User{} }.
//
// Encoding is deterministic so equal messages produce equal cache bytes.
// Unknown fields from newer writers are kept unless DiscardUnknown is set.
type Protobuf[T proto.Message] struct {
	ctor           func() T
	DiscardUnknown bool
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{ctor: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	if any(v) == nil || !v.ProtoReflect().IsValid() {
		return nil, ErrNilMessage
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.ctor()
	err := proto.UnmarshalOptions{DiscardUnknown: c.DiscardUnknown}.Unmarshal(b, m)
	return m, err
}
