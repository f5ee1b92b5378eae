package transport

import (
	"context"
	"fmt"

	"github.com/n6dev/airwave/internal/codec"
	"github.com/n6dev/airwave/internal/packet"
	"github.com/n6dev/airwave/internal/physical"
	"github.com/n6dev/airwave/internal/seqnum"
	"github.com/n6dev/airwave/internal/wire"
)

// Sender orchestrates compress -> packetize -> FEC-encode -> write, per
// spec.md §4.9. Resend repeats each packet's FEC-encoded bytes that many
// times (open-loop, unacknowledged redundancy, per spec.md §1's explicit
// Non-goal of reliability).
type Sender[T packet.Packet] struct {
	addr   packet.Address
	proto  Protocol[T]
	resend int

	sequenceNumber *seqnum.Counter
	streamID       *seqnum.Counter

	codec       codec.Codec
	compression codec.Codec
	writer      physical.Writer
}

// NewSender constructs a Sender. Resend must be at least 1.
func NewSender[T packet.Packet](proto Protocol[T], addr packet.Address, resend int, c codec.Codec, compression codec.Codec, writer physical.Writer) *Sender[T] {
	if resend < 1 {
		resend = 1
	}
	return &Sender[T]{
		addr:           addr,
		proto:          proto,
		resend:         resend,
		sequenceNumber: seqnum.NewCounter(proto.SeqModulo),
		streamID:       seqnum.NewCounter(proto.StreamModulo),
		codec:          c,
		compression:    compression,
		writer:         writer,
	}
}

// SendBytes is spec.md §4.9's send_bytes: compress once, fragment into
// packets in strict sequence-number order, FEC-encode and write each
// packet's bytes resend times, and return the total bytes actually
// pushed to the physical writer.
func (s *Sender[T]) SendBytes(ctx context.Context, payload []byte) (int, error) {
	compressed, err := s.compression.Encode(payload)
	if err != nil {
		return 0, fmt.Errorf("transport: compress: %w", err)
	}

	stream := s.streamID.Advance()
	sent := 0

	for p := range s.proto.Build(s.addr, s.sequenceNumber, stream, compressed) {
		data := s.proto.ToBytes(p)

		for i := 0; i < s.resend; i++ {
			encoded, err := s.codec.Encode(data)
			if err != nil {
				return sent, fmt.Errorf("transport: encode: %w", err)
			}

			n, err := s.writer.WriteBytes(ctx, encoded)
			sent += n
			if err != nil {
				return sent, fmt.Errorf("transport: write: %w", err)
			}
		}
	}

	return sent, nil
}

// SendStruct is a free function, not a method, because Go methods
// cannot introduce a type parameter beyond the receiver's own - it
// marshals v and sends the result via SendBytes. Grounded on the
// original's TransportSender::send_struct (network/src/transport/mod.rs),
// generalized from postcard's runtime serialization to the
// encoding.BinaryMarshaler contract named in internal/wire.
func SendStruct[T packet.Packet, V wire.Marshaler](ctx context.Context, s *Sender[T], v V) (int, error) {
	buf, err := v.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("transport: marshal: %w", err)
	}
	return s.SendBytes(ctx, buf)
}
