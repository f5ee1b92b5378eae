package syncmarker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n6dev/airwave/internal/physical/physicaltest"
)

func TestWriteReadBytesRoundTrip(t *testing.T) {
	w, r, _ := physicaltest.NewLoopbackSync(t)
	ctx := physicaltest.Context(t)

	want := []byte{0x11, 0x22, 0x33}
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

func TestWriteReadMultipleMessagesInSequence(t *testing.T) {
	// Each message carries its own preamble, so consecutive ReadBytes
	// calls must each re-acquire sync rather than assuming the line is
	// already locked from a prior message.
	w, r, _ := physicaltest.NewLoopbackSync(t)
	ctx := physicaltest.Context(t)

	messages := [][]byte{{0x00}, {0xff}, {0x5a, 0xa5}}

	for _, want := range messages {
		got := make([]byte, len(want))

		errc := make(chan error, 1)
		go func(payload []byte) {
			_, err := w.WriteBytes(ctx, payload)
			errc <- err
		}(want)

		_, err := r.ReadBytes(ctx, got)
		require.NoError(t, err)
		require.NoError(t, <-errc)
		require.Equal(t, want, got)
	}
}
