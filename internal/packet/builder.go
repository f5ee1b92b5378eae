package packet

import (
	"iter"

	"github.com/n6dev/airwave/internal/seqnum"
)

// BuildPackets32 lazily fragments payload into a sequence of Packet32 words
// carrying up to 2 payload bytes each. The stream's sequence-number counter
// advances by one per emitted packet; stream identifies the message. An
// empty payload yields no packets.
func BuildPackets32(addr Address, counter *seqnum.Counter, stream seqnum.Number, payload []byte) iter.Seq[Packet32] {
	return func(yield func(Packet32) bool) {
		for _, chunk := range chunkPayload(payload, packet32MaxPayload) {
			p := NewPacket32(chunk.kind, counter.Advance(), stream, addr.Local, addr.Destination, chunk.bytes)
			if !yield(p) {
				return
			}
		}
	}
}

// BuildPackets64 is the 64-bit analogue of BuildPackets32, carrying up to 5
// payload bytes per packet and stamping a fresh CRC-4 on every packet.
func BuildPackets64(addr Address, counter *seqnum.Counter, stream seqnum.Number, payload []byte) iter.Seq[Packet64] {
	return func(yield func(Packet64) bool) {
		for _, chunk := range chunkPayload(payload, packet64MaxPayload) {
			p := NewPacket64(chunk.kind, counter.Advance(), stream, addr.Local, addr.Destination, chunk.bytes)
			if !yield(p) {
				return
			}
		}
	}
}

type payloadChunk struct {
	kind  Kind
	bytes []byte
}

// chunkPayload splits payload into maxLen-sized pieces and assigns each a
// Kind following spec.md §4.3: a single chunk is SelfContained; otherwise
// the first is Start, the last is End, and everything between is
// Continue.
func chunkPayload(payload []byte, maxLen int) []payloadChunk {
	if len(payload) == 0 {
		return nil
	}

	var chunks [][]byte
	for len(payload) > 0 {
		n := maxLen
		if n > len(payload) {
			n = len(payload)
		}
		chunks = append(chunks, payload[:n])
		payload = payload[n:]
	}

	out := make([]payloadChunk, len(chunks))
	for i, c := range chunks {
		kind := Continue
		switch {
		case len(chunks) == 1:
			kind = SelfContained
		case i == 0:
			kind = Start
		case i == len(chunks)-1:
			kind = End
		}
		out[i] = payloadChunk{kind: kind, bytes: c}
	}
	return out
}
