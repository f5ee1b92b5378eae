package manchester_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/n6dev/airwave/internal/physical/physicaltest"
)

const testPeriod = 2 * time.Millisecond

func TestWriteReadByteRoundTrip(t *testing.T) {
	w, r, _ := physicaltest.NewLoopbackManchester(t, testPeriod)
	ctx := physicaltest.Context(t)

	const want = byte(0x5a)

	errc := make(chan error, 1)
	go func() { errc <- w.WriteByte(ctx, want) }()

	got, err := r.ReadByte(ctx)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	require.Equal(t, want, got)
}

func TestWriteReadBytesRoundTrip(t *testing.T) {
	w, r, _ := physicaltest.NewLoopbackManchester(t, testPeriod)
	ctx := physicaltest.Context(t)

	want := []byte{0x01, 0x80, 0x55, 0xaa}
	got := make([]byte, len(want))

	errc := make(chan error, 1)
	go func() {
		_, err := w.WriteBytes(ctx, want)
		errc <- err
	}()

	_, err := r.ReadBytes(ctx, got)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	require.Equal(t, want, got)
}
