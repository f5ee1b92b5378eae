package window

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/n6dev/airwave/internal/packet"
	"github.com/n6dev/airwave/internal/seqnum"
)

func buildPackets(payload []byte) []packet.Packet {
	addr := packet.Address{Local: 0x0f, Destination: 0x01}
	counter := seqnum.NewCounter(8)
	stream := seqnum.New(4, 0)

	var out []packet.Packet
	for p := range packet.BuildPackets32(addr, counter, stream, payload) {
		out = append(out, p)
	}
	return out
}

func TestWindowSelfContained(t *testing.T) {
	w := New(8)
	pkts := buildPackets([]byte{0xAB})
	require.Len(t, pkts, 1)

	complete, n, err := w.Push(pkts[0])
	require.NoError(t, err)
	require.True(t, complete)
	assert.Equal(t, 1, n)

	out, err := w.WriteBuffer()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB}, out)
}

func TestWindowOutOfOrderDelivery(t *testing.T) {
	w := New(8)
	pkts := buildPackets([]byte{0x12, 0x34, 0x56})
	require.Len(t, pkts, 2)

	complete, _, err := w.Push(pkts[1])
	require.NoError(t, err)
	require.False(t, complete)

	complete, _, err = w.Push(pkts[0])
	require.NoError(t, err)
	require.True(t, complete)

	out, err := w.WriteBuffer()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34, 0x56}, out)
}

func TestWindowDuplicateIsIgnored(t *testing.T) {
	w := New(8)
	pkts := buildPackets([]byte{0x12, 0x34, 0x56})
	require.Len(t, pkts, 2)

	_, _, err := w.Push(pkts[0])
	require.NoError(t, err)
	complete, _, err := w.Push(pkts[0])
	require.NoError(t, err)
	require.False(t, complete)

	complete, _, err = w.Push(pkts[1])
	require.NoError(t, err)
	require.True(t, complete)

	out, err := w.WriteBuffer()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34, 0x56}, out)
}

func TestWindowWrongStreamIDRejected(t *testing.T) {
	w := New(8)
	addr := packet.Address{Local: 0x0f, Destination: 0x01}
	counter := seqnum.NewCounter(8)

	var first, second packet.Packet
	for p := range packet.BuildPackets32(addr, counter, seqnum.New(4, 0), []byte{0x01}) {
		first = p
	}
	for p := range packet.BuildPackets32(addr, counter, seqnum.New(4, 1), []byte{0x02}) {
		second = p
	}

	_, _, err := w.Push(first)
	require.NoError(t, err)

	w2 := New(8)
	_, _, err = w2.Push(first)
	require.NoError(t, err)
	w2.Clear()
	_, _, err = w2.Push(second)
	require.NoError(t, err, "after Clear a new stream id is accepted")

	w3 := New(8)
	_, _, err = w3.Push(first)
	require.NoError(t, err)

	// force a mismatch without clearing: build a multi-packet message so
	// the window stays non-empty, then push a foreign stream id.
	multi := buildPackets([]byte{0x01, 0x02, 0x03})
	w4 := New(8)
	_, _, err = w4.Push(multi[0])
	require.NoError(t, err)
	foreign := packet.NewPacket32(packet.End, seqnum.New(8, 1), seqnum.New(4, 3), 0x0f, 0x01, []byte{0x99})
	_, _, err = w4.Push(foreign)
	assert.ErrorIs(t, err, ErrWrongStreamID)
}

func TestWindowFullReportsError(t *testing.T) {
	w := New(1)
	addr := packet.Address{Local: 0x0f, Destination: 0x01}
	counter := seqnum.NewCounter(8)
	stream := seqnum.New(4, 0)

	var pkts []packet.Packet
	for p := range packet.BuildPackets32(addr, counter, stream, []byte{1, 2, 3, 4}) {
		pkts = append(pkts, p)
	}
	require.Len(t, pkts, 2)

	_, _, err := w.Push(pkts[0])
	require.NoError(t, err)
	_, _, err = w.Push(pkts[1])
	assert.ErrorIs(t, err, ErrFullWindow)
}

// Property: any permutation of a message's packets reassembles correctly,
// and dropping a non-final duplicate never changes the outcome.
func TestPropertyReassemblyToleratesPermutationAndDuplicates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "payloadLen")
		payload := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "payload")
		pkts := buildPackets(payload)
		require.NotEmpty(t, pkts)
		if len(pkts) > 8 {
			t.Skip("exceeds window capacity for this test")
		}

		seed := rapid.Int64().Draw(t, "seed")
		rng := rand.New(rand.NewSource(seed))
		perm := rng.Perm(len(pkts))

		withDuplicate := rapid.Bool().Draw(t, "withDuplicate") && len(pkts) > 1
		var order []int
		order = append(order, perm...)
		if withDuplicate {
			dupIndexInOrder := rapid.IntRange(0, len(order)-2).Draw(t, "dupPos")
			order = append(order[:dupIndexInOrder+1], append([]int{order[dupIndexInOrder]}, order[dupIndexInOrder+1:]...)...)
		}

		w := New(8)
		var complete bool
		for _, idx := range order {
			var err error
			complete, _, err = w.Push(pkts[idx])
			require.NoError(t, err)
		}
		require.True(t, complete)

		out, err := w.WriteBuffer()
		require.NoError(t, err)
		assert.Equal(t, payload, out)
	})
}

// Property: losing any single packet leaves the window incomplete forever.
func TestPropertyMissingPacketNeverCompletes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 16).Draw(t, "payloadLen")
		payload := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "payload")
		pkts := buildPackets(payload)
		require.Greater(t, len(pkts), 1)

		missing := rapid.IntRange(0, len(pkts)-1).Draw(t, "missing")

		w := New(8)
		var complete bool
		for i, p := range pkts {
			if i == missing {
				continue
			}
			var err error
			complete, _, err = w.Push(p)
			require.NoError(t, err)
		}
		assert.False(t, complete)
	})
}
