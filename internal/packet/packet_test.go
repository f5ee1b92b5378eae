package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/n6dev/airwave/internal/seqnum"
)

func TestPacket64CRCRoundtrip(t *testing.T) {
	p := NewPacket64(SelfContained, seqnum.New(16, 3), seqnum.New(8, 1), 0x5, 0x8, []byte{0x12, 0x34})
	require.True(t, p.Validate())

	corrupted := p
	corrupted.crc4 ^= 0x1
	assert.False(t, corrupted.Validate())
}

func TestPacket64CRCIdempotent(t *testing.T) {
	p := NewPacket64(Start, seqnum.New(16, 0), seqnum.New(8, 0), 0xf, 0x1, []byte{0xab})
	once := p.WithUpdatedCRC()
	twice := once.WithUpdatedCRC()
	assert.Equal(t, once, twice)
}

func TestPacket32RoundtripsThroughBytes(t *testing.T) {
	p := NewPacket32(SelfContained, seqnum.New(8, 2), seqnum.New(4, 1), 0xf, 0x1, []byte{0xab})
	bytes := p.ToLEBytes()
	back := Packet32FromLEBytes(bytes)
	assert.Equal(t, p, back)
	assert.True(t, back.Validate(), "32-bit packets always validate true, see SPEC_FULL §10")
}

func TestPacket64RoundtripsThroughBytes(t *testing.T) {
	p := NewPacket64(End, seqnum.New(16, 9), seqnum.New(8, 2), 0x3, 0xc, []byte{1, 2, 3, 4, 5})
	bytes := p.ToLEBytes()
	back := Packet64FromLEBytes(bytes)
	assert.Equal(t, p, back)
}

func TestPropertyPacket64CRCIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kind := Kind(rapid.SampledFrom([]uint8{0, 1, 2, 3}).Draw(t, "kind"))
		sn := rapid.Uint32Range(0, 15).Draw(t, "sn")
		stream := rapid.Uint32Range(0, 7).Draw(t, "stream")
		source := rapid.Uint8Range(0, 0xf).Draw(t, "source")
		dest := rapid.Uint8Range(0, 0xf).Draw(t, "dest")
		n := rapid.IntRange(1, 5).Draw(t, "payloadLen")
		payload := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "payload")

		p := NewPacket64(kind, seqnum.New(16, sn), seqnum.New(8, stream), source, dest, payload)
		once := p.WithUpdatedCRC()
		twice := once.WithUpdatedCRC()
		assert.Equal(t, once.CRC4(), twice.CRC4())
		assert.True(t, once.Validate())
	})
}
