package transport

import (
	"iter"

	"github.com/n6dev/airwave/internal/packet"
	"github.com/n6dev/airwave/internal/seqnum"
)

// Protocol captures the operations that differ between the 32-bit and
// 64-bit wire formats (spec.md §3's build-time packet-width choice):
// how to fragment a payload into packets of that width, and how to
// turn a packet to and from its canonical wire bytes. Sender[T] and
// Receiver[T] are otherwise identical for either width.
type Protocol[T packet.Packet] struct {
	PacketSize     int
	SeqModulo      uint32
	StreamModulo   uint32
	WindowCapacity int
	Build          func(addr packet.Address, counter *seqnum.Counter, stream seqnum.Number, payload []byte) iter.Seq[T]
	ToBytes        func(T) []byte
	FromBytes      func([]byte) (T, bool)
}

// Width32 is the 32-bit packet protocol: 1-2 payload bytes per packet,
// no CRC, an 8-entry reassembly window (spec.md §3).
func Width32() Protocol[packet.Packet32] {
	return Protocol[packet.Packet32]{
		PacketSize:     4,
		SeqModulo:      8,
		StreamModulo:   4,
		WindowCapacity: 8,
		Build:          packet.BuildPackets32,
		ToBytes: func(p packet.Packet32) []byte {
			b := p.ToLEBytes()
			return b[:]
		},
		FromBytes: func(b []byte) (packet.Packet32, bool) {
			if len(b) != 4 {
				return packet.Packet32{}, false
			}
			var arr [4]byte
			copy(arr[:], b)
			return packet.Packet32FromLEBytes(arr), true
		},
	}
}

// Width64 is the 64-bit packet protocol: 1-5 payload bytes per packet,
// CRC-4 checked, a 32-entry reassembly window (spec.md §3).
func Width64() Protocol[packet.Packet64] {
	return Protocol[packet.Packet64]{
		PacketSize:     8,
		SeqModulo:      16,
		StreamModulo:   8,
		WindowCapacity: 32,
		Build:          packet.BuildPackets64,
		ToBytes: func(p packet.Packet64) []byte {
			b := p.ToLEBytes()
			return b[:]
		},
		FromBytes: func(b []byte) (packet.Packet64, bool) {
			if len(b) != 8 {
				return packet.Packet64{}, false
			}
			var arr [8]byte
			copy(arr[:], b)
			return packet.Packet64FromLEBytes(arr), true
		},
	}
}
