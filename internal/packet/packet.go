// Package packet implements the wire-exact packet word: field layout,
// CRC-4 (64-bit variant), and the little-endian byte serialization.
//
// Field ordering and bit widths are canonical per the wire format and must
// not be reordered; see Packet32 and Packet64.
package packet

import (
	"encoding/binary"

	"github.com/n6dev/airwave/internal/seqnum"
)

// Address is a pair of small node identifiers, immutable for the lifetime
// of a sender or receiver.
type Address struct {
	Local       uint8
	Destination uint8
}

// Kind identifies what role a packet plays within a reassembly.
type Kind uint8

const (
	SelfContained Kind = 0
	Start         Kind = 1
	Continue      Kind = 2
	End           Kind = 3
	Unsupported   Kind = 0xff
)

func kindFromBits(v uint8) Kind {
	switch v {
	case 0:
		return SelfContained
	case 1:
		return Start
	case 2:
		return Continue
	case 3:
		return End
	default:
		return Unsupported
	}
}

func (k Kind) String() string {
	switch k {
	case SelfContained:
		return "SelfContained"
	case Start:
		return "Start"
	case Continue:
		return "Continue"
	case End:
		return "End"
	default:
		return "Unsupported"
	}
}

// Packet is the common read surface both wire variants satisfy, used by
// the reassembly window and transport layer so they need not know which
// width is in play.
type Packet interface {
	Kind() Kind
	SequenceNumber() seqnum.Number
	StreamID() seqnum.Number
	Source() uint8
	Destination() uint8
	// PayloadBytes returns the payload bytes actually carried by this
	// packet (payload_used_index+1 of them), little-endian ordered.
	PayloadBytes() []byte
	Validate() bool
}

var (
	_ Packet = Packet32{}
	_ Packet = Packet64{}
)

// --- Packet32: kind(2) | sn(3) | stream(2) | src(4) | dst(4) | payload(16) | used(1) ---

const (
	packet32SNModulo     = 8
	packet32StreamModulo = 4
	packet32MaxPayload   = 2
)

// Packet32 is the 32-bit packet word. No CRC: §9 of the spec notes
// corrupted 32-bit packets cannot be filtered at this layer.
type Packet32 struct {
	kind             Kind
	sequenceNumber   uint8 // 0..7
	streamID         uint8 // 0..3
	source           uint8 // 0..15
	destination      uint8 // 0..15
	payload          [2]byte
	payloadUsedIndex uint8 // 0 or 1
}

// NewPacket32 constructs a packet word, validating field widths.
func NewPacket32(kind Kind, sn, stream seqnum.Number, source, destination uint8, payload []byte) Packet32 {
	if len(payload) < 1 || len(payload) > packet32MaxPayload {
		panic("packet: Packet32 payload must carry 1 or 2 bytes")
	}
	if source > 0xf || destination > 0xf {
		panic("packet: Packet32 address must fit in 4 bits")
	}
	var buf [2]byte
	copy(buf[:], payload)
	return Packet32{
		kind:             kind,
		sequenceNumber:   uint8(sn.Value()),
		streamID:         uint8(stream.Value()),
		source:           source,
		destination:      destination,
		payload:          buf,
		payloadUsedIndex: uint8(len(payload) - 1),
	}
}

func (p Packet32) Kind() Kind { return p.kind }
func (p Packet32) SequenceNumber() seqnum.Number {
	return seqnum.New(packet32SNModulo, uint32(p.sequenceNumber))
}
func (p Packet32) StreamID() seqnum.Number {
	return seqnum.New(packet32StreamModulo, uint32(p.streamID))
}
func (p Packet32) Source() uint8             { return p.source }
func (p Packet32) Destination() uint8        { return p.destination }
func (p Packet32) PayloadUsedIndex() uint8   { return p.payloadUsedIndex }
func (p Packet32) Payload() [2]byte          { return p.payload }
func (p Packet32) PayloadBytes() []byte      { return p.payload[:p.payloadUsedIndex+1] }
func (p Packet32) Validate() bool            { return true } // no CRC in this variant, see SPEC_FULL §10

// ToLEBytes packs the word into its canonical little-endian 4-byte form.
func (p Packet32) ToLEBytes() [4]byte {
	var word uint32
	word |= uint32(p.kind) & 0x3
	word |= (uint32(p.sequenceNumber) & 0x7) << 2
	word |= (uint32(p.streamID) & 0x3) << 5
	word |= (uint32(p.source) & 0xf) << 7
	word |= (uint32(p.destination) & 0xf) << 11
	word |= uint32(binary.LittleEndian.Uint16(p.payload[:])) << 15
	word |= (uint32(p.payloadUsedIndex) & 0x1) << 31

	var out [4]byte
	binary.LittleEndian.PutUint32(out[:], word)
	return out
}

// Packet32FromLEBytes unpacks a 4-byte little-endian word.
func Packet32FromLEBytes(b [4]byte) Packet32 {
	word := binary.LittleEndian.Uint32(b[:])
	var payload [2]byte
	binary.LittleEndian.PutUint16(payload[:], uint16((word>>15)&0xffff))
	return Packet32{
		kind:             kindFromBits(uint8(word & 0x3)),
		sequenceNumber:   uint8((word >> 2) & 0x7),
		streamID:         uint8((word >> 5) & 0x3),
		source:           uint8((word >> 7) & 0xf),
		destination:      uint8((word >> 11) & 0xf),
		payload:          payload,
		payloadUsedIndex: uint8((word >> 31) & 0x1),
	}
}

// --- Packet64: kind(2) | sn(4) | stream(3) | src(4) | dst(4) | payload(40) | used(3) | crc4(4) ---

const (
	packet64SNModulo     = 16
	packet64StreamModulo = 8
	packet64MaxPayload   = 5
)

// crc4Table is the CRC-4 polynomial lookup table specified in spec.md §6.
var crc4Table = [16]uint8{
	0x0, 0x7, 0xe, 0x9, 0xb, 0xc, 0x5, 0x2, 0x1, 0x6, 0xf, 0x8, 0xa, 0xd, 0x4, 0x3,
}

const crc4Start = 0x01

// Packet64 is the 64-bit packet word, carrying 1-5 payload bytes and a
// CRC-4 over the remaining 60 bits.
type Packet64 struct {
	kind             Kind
	sequenceNumber   uint8 // 0..15
	streamID         uint8 // 0..7
	source           uint8
	destination      uint8
	payload          [5]byte
	payloadUsedIndex uint8 // 0..4
	crc4             uint8 // 0..15
}

// NewPacket64 constructs a packet word with an up-to-date CRC.
func NewPacket64(kind Kind, sn, stream seqnum.Number, source, destination uint8, payload []byte) Packet64 {
	if len(payload) < 1 || len(payload) > packet64MaxPayload {
		panic("packet: Packet64 payload must carry 1-5 bytes")
	}
	if source > 0xf || destination > 0xf {
		panic("packet: Packet64 address must fit in 4 bits")
	}
	var buf [5]byte
	copy(buf[:], payload)
	p := Packet64{
		kind:             kind,
		sequenceNumber:   uint8(sn.Value()),
		streamID:         uint8(stream.Value()),
		source:           source,
		destination:      destination,
		payload:          buf,
		payloadUsedIndex: uint8(len(payload) - 1),
	}
	p.UpdateCRC()
	return p
}

func (p Packet64) Kind() Kind { return p.kind }
func (p Packet64) SequenceNumber() seqnum.Number {
	return seqnum.New(packet64SNModulo, uint32(p.sequenceNumber))
}
func (p Packet64) StreamID() seqnum.Number {
	return seqnum.New(packet64StreamModulo, uint32(p.streamID))
}
func (p Packet64) Source() uint8           { return p.source }
func (p Packet64) Destination() uint8      { return p.destination }
func (p Packet64) PayloadUsedIndex() uint8 { return p.payloadUsedIndex }
func (p Packet64) Payload() [5]byte        { return p.payload }
func (p Packet64) PayloadBytes() []byte    { return p.payload[:p.payloadUsedIndex+1] }
func (p Packet64) CRC4() uint8             { return p.crc4 }

// fieldsAsUint64 packs every field into a uint64 in the wire bit layout,
// with crc placed in the crc4 field (ComputeCRC4 passes 0).
func (p Packet64) fieldsAsUint64(crc uint8) uint64 {
	var word uint64
	word |= uint64(p.kind) & 0x3
	word |= (uint64(p.sequenceNumber) & 0xf) << 2
	word |= (uint64(p.streamID) & 0x7) << 6
	word |= (uint64(p.source) & 0xf) << 9
	word |= (uint64(p.destination) & 0xf) << 13
	var payload40 uint64
	for i := 4; i >= 0; i-- {
		payload40 = (payload40 << 8) | uint64(p.payload[i])
	}
	word |= (payload40 & 0xff_ffff_ffff) << 17
	word |= (uint64(p.payloadUsedIndex) & 0x7) << 57
	word |= (uint64(crc) & 0xf) << 60
	return word
}

// ComputeCRC4 computes the CRC-4 over the 60 non-crc4 bits, per spec.md §6:
// zero the crc4 field, mask to 60 bits, walk nibbles MSB to LSB.
func (p Packet64) ComputeCRC4() uint8 {
	value := p.fieldsAsUint64(0) & ((1 << 60) - 1)

	crc := uint8(crc4Start)
	for shift := 56; shift >= 0; shift -= 4 {
		nibble := uint8((value >> uint(shift)) & 0xf)
		crc = crc4Table[crc^nibble]
	}
	return crc
}

// WithUpdatedCRC returns a copy with crc4 recomputed. It is idempotent:
// applying it twice yields the same packet as applying it once.
func (p Packet64) WithUpdatedCRC() Packet64 {
	p.crc4 = p.ComputeCRC4()
	return p
}

// UpdateCRC recomputes crc4 in place.
func (p *Packet64) UpdateCRC() {
	p.crc4 = p.ComputeCRC4()
}

// Validate reports whether the stored crc4 matches the computed one.
func (p Packet64) Validate() bool {
	return p.crc4 == p.ComputeCRC4()
}

// ToLEBytes packs the word into its canonical little-endian 8-byte form.
func (p Packet64) ToLEBytes() [8]byte {
	word := p.fieldsAsUint64(p.crc4)
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], word)
	return out
}

// Packet64FromLEBytes unpacks an 8-byte little-endian word.
func Packet64FromLEBytes(b [8]byte) Packet64 {
	word := binary.LittleEndian.Uint64(b[:])

	var payload [5]byte
	payload40 := (word >> 17) & 0xff_ffff_ffff
	for i := 0; i < 5; i++ {
		payload[i] = byte(payload40 >> (8 * uint(i)))
	}

	return Packet64{
		kind:             kindFromBits(uint8(word & 0x3)),
		sequenceNumber:   uint8((word >> 2) & 0xf),
		streamID:         uint8((word >> 6) & 0x7),
		source:           uint8((word >> 9) & 0xf),
		destination:      uint8((word >> 13) & 0xf),
		payload:          payload,
		payloadUsedIndex: uint8((word >> 57) & 0x7),
		crc4:             uint8((word >> 60) & 0xf),
	}
}
