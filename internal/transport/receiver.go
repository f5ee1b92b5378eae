package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/n6dev/airwave/internal/codec"
	"github.com/n6dev/airwave/internal/packet"
	"github.com/n6dev/airwave/internal/physical"
	"github.com/n6dev/airwave/internal/wire"
	"github.com/n6dev/airwave/internal/window"
)

// Receiver orchestrates read -> FEC-decode -> reassemble -> decompress,
// per spec.md §4.10.
type Receiver[T packet.Packet] struct {
	addr  packet.Address
	proto Protocol[T]
	win   *window.Window

	codec       codec.Codec
	compression codec.Codec
	reader      physical.Reader
}

// NewReceiver constructs a Receiver.
func NewReceiver[T packet.Packet](proto Protocol[T], addr packet.Address, c codec.Codec, compression codec.Codec, reader physical.Reader) *Receiver[T] {
	return &Receiver[T]{
		addr:        addr,
		proto:       proto,
		win:         window.New(proto.WindowCapacity),
		codec:       c,
		compression: compression,
		reader:      reader,
	}
}

// ReceiveBytes is spec.md §4.10's receive_bytes. It clears the window,
// then loops reading one FEC-encoded packet word at a time: a
// TimeoutError propagates (the medium went silent); a corrupt or
// mis-decoded word, a failed CRC, or a wrong-destination packet is
// silently dropped so a resent copy still has a chance; ErrFullWindow
// propagates (the caller is expected to retry); a wrong stream id
// clears the window and keeps scanning. The first complete reassembly
// is decompressed into out and its length returned.
func (r *Receiver[T]) ReceiveBytes(ctx context.Context, out []byte) (int, error) {
	r.win.Clear()

	rawSize := r.codec.GetEncodeSize(r.proto.PacketSize)
	raw := make([]byte, rawSize)

	for {
		if _, err := r.reader.ReadBytes(ctx, raw); err != nil {
			if physical.IsRecoverableReadError(err) {
				continue
			}
			return 0, fmt.Errorf("transport: read: %w", err)
		}

		decoded, err := r.codec.Decode(raw)
		if err != nil {
			continue
		}

		p, ok := r.proto.FromBytes(decoded)
		if !ok {
			continue
		}
		if !p.Validate() {
			continue
		}
		if p.Destination() != r.addr.Local {
			continue
		}

		complete, _, err := r.win.Push(p)
		if err != nil {
			if errors.Is(err, window.ErrWrongStreamID) {
				r.win.Clear()
				continue
			}
			if errors.Is(err, window.ErrFullWindow) {
				return 0, fmt.Errorf("transport: %w", err)
			}
			continue
		}

		if !complete {
			continue
		}

		compressed, err := r.win.WriteBuffer()
		if err != nil {
			return 0, fmt.Errorf("transport: %w", err)
		}

		decompressed, err := r.compression.Decode(compressed)
		if err != nil {
			return 0, fmt.Errorf("transport: decompress: %w", err)
		}

		return copy(out, decompressed), nil
	}
}

// ReceiveStruct is a free function for the same reason SendStruct is:
// it receives into a scratch buffer sized n, then unmarshals into v.
func ReceiveStruct[T packet.Packet, V wire.Unmarshaler](ctx context.Context, r *Receiver[T], v V, n int) (int, error) {
	buf := make([]byte, n)
	received, err := r.ReceiveBytes(ctx, buf)
	if err != nil {
		return 0, err
	}
	if err := v.UnmarshalBinary(buf[:received]); err != nil {
		return 0, fmt.Errorf("transport: unmarshal: %w", err)
	}
	return received, nil
}
