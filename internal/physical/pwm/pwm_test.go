package pwm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/n6dev/airwave/internal/physical/physicaltest"
)

func TestWriteReadByteRoundTrip(t *testing.T) {
	w, r, _ := physicaltest.NewLoopbackPWM(t)
	ctx := physicaltest.Context(t)

	const want = byte(0xa5)

	errc := make(chan error, 1)
	go func() { errc <- w.WriteByte(ctx, want) }()

	got, err := r.ReadByte(ctx)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	require.Equal(t, want, got)
}

func TestWriteReadBytesRoundTrip(t *testing.T) {
	w, r, _ := physicaltest.NewLoopbackPWM(t)
	ctx := physicaltest.Context(t)

	want := []byte{0x00, 0xff, 0x3c, 0x81}
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

func TestReadTimesOutWithoutAnyEdge(t *testing.T) {
	_, r, _ := physicaltest.NewLoopbackPWM(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.ReadBit(ctx)
	require.Error(t, err)
}
