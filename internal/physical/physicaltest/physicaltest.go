// Package physicaltest provides a deterministic, in-process loopback
// harness for physical-layer and transport tests: a pin.Loopback pin
// wired to matching PWM/Manchester reader and writer instances, tuned
// to microsecond-scale timing so a test suite runs in milliseconds
// instead of the real radio's millisecond-scale mark durations.
package physicaltest

import (
	"context"
	"testing"
	"time"

	"github.com/n6dev/airwave/internal/physical/manchester"
	"github.com/n6dev/airwave/internal/physical/pwm"
	"github.com/n6dev/airwave/internal/physical/syncmarker"
	"github.com/n6dev/airwave/internal/pin"
)

// FastPWMWriterTiming uses shorter marks and gaps than
// pwm.DefaultWriterTiming (200/600/100µs against 500/800/300µs) so
// loopback tests complete quickly.
func FastPWMWriterTiming() pwm.WriterTiming {
	return pwm.WriterTiming{
		Zeroes:      200 * time.Microsecond,
		Ones:        600 * time.Microsecond,
		BetweenBits: 100 * time.Microsecond,
	}
}

// FastPWMReaderTiming matches FastPWMWriterTiming the way
// pwm.DefaultReaderTiming matches pwm.DefaultWriterTiming.
func FastPWMReaderTiming() pwm.ReaderTiming {
	return pwm.ReaderTiming{
		Zeroes:         150 * time.Microsecond,
		Ones:           550 * time.Microsecond,
		LowerThreshold: 50 * time.Microsecond,
		UpperThreshold: 900 * time.Microsecond,
	}
}

// FastSyncSequence is syncmarker.DefaultSequence scaled down to match
// FastPWMWriterTiming/FastPWMReaderTiming.
func FastSyncSequence() syncmarker.Sequence {
	return syncmarker.Sequence{
		Ones:          600 * time.Microsecond,
		Zeroes:        300 * time.Microsecond,
		BetweenBits:   150 * time.Microsecond,
		ReadThreshold: 100 * time.Microsecond,
		NumberOfBits:  4,
		Pattern:       0b1011,
	}
}

// NewLoopbackPWM returns a writer/reader pair sharing one Loopback
// pin, with t.Cleanup closing it.
func NewLoopbackPWM(t testing.TB) (*pwm.Writer, *pwm.Reader, *pin.Loopback) {
	t.Helper()
	l, err := pin.NewLoopback()
	if err != nil {
		t.Fatalf("physicaltest: new loopback: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })

	w := pwm.NewWriter(FastPWMWriterTiming(), l, false)
	r := pwm.NewReader(FastPWMReaderTiming(), l, false)
	return w, r, l
}

// NewLoopbackSync returns a syncmarker writer/reader pair built on top
// of a fresh loopback PWM pair.
func NewLoopbackSync(t testing.TB) (*syncmarker.Writer, *syncmarker.Reader, *pin.Loopback) {
	t.Helper()
	pwmWriter, pwmReader, l := NewLoopbackPWM(t)
	seq := FastSyncSequence()
	return syncmarker.NewWriter(seq, pwmWriter), syncmarker.NewReader(seq, pwmReader), l
}

// NewLoopbackManchester returns a Manchester writer/reader pair
// sharing one Loopback pin.
func NewLoopbackManchester(t testing.TB, period time.Duration) (*manchester.Writer, *manchester.Reader, *pin.Loopback) {
	t.Helper()
	l, err := pin.NewLoopback()
	if err != nil {
		t.Fatalf("physicaltest: new loopback: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })

	timing := manchester.NewTiming(period)
	return manchester.NewWriter(timing, l), manchester.NewReader(timing, l), l
}

// Context returns a context with a generous deadline for a physical
// loopback round trip, cancelled automatically via t.Cleanup.
func Context(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
