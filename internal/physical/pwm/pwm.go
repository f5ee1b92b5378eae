// Package pwm implements the pulse-width line code: a mark's duration
// encodes its bit, long for one, short for zero, with the line idle
// between marks.
package pwm

import (
	"context"
	"time"

	"github.com/n6dev/airwave/internal/physical"
	"github.com/n6dev/airwave/internal/pin"
)

// WriterTiming holds the mark durations and inter-bit/inter-byte gaps a
// PWM writer drives the line with.
type WriterTiming struct {
	Zeroes       time.Duration
	Ones         time.Duration
	BetweenBits  time.Duration
	BetweenBytes time.Duration // zero means no gap
}

// DefaultWriterTiming is the protocol's default PWM timing (spec.md §6):
// the numbers two independently built nodes agree on without exchanging
// a profile.
func DefaultWriterTiming() WriterTiming {
	return WriterTiming{
		Zeroes:      500 * time.Microsecond,
		Ones:        800 * time.Microsecond,
		BetweenBits: 300 * time.Microsecond,
	}
}

// ReaderTiming holds the classification thresholds a PWM reader uses to
// turn a measured mark duration into a bit.
type ReaderTiming struct {
	Zeroes         time.Duration
	Ones           time.Duration
	LowerThreshold time.Duration
	UpperThreshold time.Duration
}

// DefaultReaderTiming is the protocol's default PWM reader timing
// (spec.md §6), matching DefaultWriterTiming. The sync marker overrides
// these bounds once it locks (ReaderTiming.AdjustToSyncMarker).
func DefaultReaderTiming() ReaderTiming {
	return ReaderTiming{
		Zeroes:         450 * time.Microsecond,
		Ones:           750 * time.Microsecond,
		LowerThreshold: 400 * time.Microsecond,
		UpperThreshold: 1000 * time.Microsecond,
	}
}

// ReaderTimingFromWriter derives reader thresholds from a writer's
// timing, centering the classification bands a little inside each mark
// duration so clock drift between the two nodes doesn't misclassify a
// bit. The 50µs slack matches the gap between DefaultWriterTiming and
// DefaultReaderTiming's zeroes/ones.
func ReaderTimingFromWriter(w WriterTiming) ReaderTiming {
	const slack = 50 * time.Microsecond
	return ReaderTiming{
		Zeroes:         w.Zeroes - slack,
		Ones:           w.Ones - slack,
		LowerThreshold: w.Zeroes - 2*slack,
		UpperThreshold: w.Ones + w.Zeroes,
	}
}

// AdjustToSyncMarker widens the upper threshold to the sync marker's
// total duration, so the long final mark of a sync sequence is never
// mistaken for a corrupt data bit once steady-state reading begins.
func (t *ReaderTiming) AdjustToSyncMarker(ones, zeroes time.Duration) {
	t.UpperThreshold = ones + zeroes
}

// Writer drives a pin.Pin with PWM-coded marks. Invert flips which
// level is idle and which is active, for hardware that keys the
// carrier on a logic low.
type Writer struct {
	timing WriterTiming
	p      pin.Pin
	invert bool
}

// NewWriter constructs a Writer and drives the pin to its idle level.
func NewWriter(timing WriterTiming, p pin.Pin, invert bool) *Writer {
	w := &Writer{timing: timing, p: p, invert: invert}
	w.idle()
	return w
}

func (w *Writer) idle() {
	if w.invert {
		w.p.SetHigh()
	} else {
		w.p.SetLow()
	}
}

func (w *Writer) active() {
	if w.invert {
		w.p.SetLow()
	} else {
		w.p.SetHigh()
	}
}

func (w *Writer) writeTiming(ctx context.Context, d time.Duration) error {
	w.active()
	if err := physical.Sleep(ctx, d); err != nil {
		return err
	}
	w.idle()
	return nil
}

// WriteMark drives the line active for exactly d, then idle. It is the
// raw primitive a sync-marker writer needs to emit marks whose duration
// isn't one of the two bit durations.
func (w *Writer) WriteMark(ctx context.Context, d time.Duration) error {
	if err := w.writeTiming(ctx, d); err != nil {
		return physical.NewWriteError()
	}
	return nil
}

func (w *Writer) WriteBit(ctx context.Context, bit bool) error {
	d := w.timing.Zeroes
	if bit {
		d = w.timing.Ones
	}
	if err := w.writeTiming(ctx, d); err != nil {
		return physical.NewWriteError()
	}
	return nil
}

func (w *Writer) WriteByte(ctx context.Context, value byte) error {
	for index := 0; index < 8; index++ {
		bit := (value>>uint(index))&1 != 0
		if err := w.WriteBit(ctx, bit); err != nil {
			return err
		}
		if err := physical.Sleep(ctx, w.timing.BetweenBits); err != nil {
			return physical.NewWriteError()
		}
	}
	return nil
}

func (w *Writer) WriteBytes(ctx context.Context, buf []byte) (int, error) {
	n, err := physical.WriteBytesGeneric(ctx, buf, w.WriteByte)
	if err != nil {
		return n, err
	}
	if w.timing.BetweenBytes > 0 {
		if serr := physical.Sleep(ctx, w.timing.BetweenBytes); serr != nil {
			return n, physical.NewWriteError()
		}
	}
	return n, nil
}

func (w *Writer) Pause()  {}
func (w *Writer) Resume() {}

var _ physical.Writer = (*Writer)(nil)

// Reader classifies PWM marks read off a pin.Pin back into bits.
type Reader struct {
	timing ReaderTiming
	p      pin.Pin
	invert bool
}

// NewReader constructs a Reader.
func NewReader(timing ReaderTiming, p pin.Pin, invert bool) *Reader {
	return &Reader{timing: timing, p: p, invert: invert}
}

func (r *Reader) Timing() *ReaderTiming { return &r.timing }

func (r *Reader) waitActiveStart(ctx context.Context) error {
	if r.invert {
		return r.p.WaitForFallingEdge(ctx)
	}
	return r.p.WaitForRisingEdge(ctx)
}

func (r *Reader) waitActiveEnd(ctx context.Context) error {
	if r.invert {
		return r.p.WaitForRisingEdge(ctx)
	}
	return r.p.WaitForFallingEdge(ctx)
}

func (r *Reader) readTiming(ctx context.Context) (time.Duration, error) {
	if err := r.waitActiveStart(ctx); err != nil {
		return 0, physical.NewTimeoutError()
	}
	start := time.Now()

	endCtx, cancel := context.WithTimeout(ctx, r.timing.UpperThreshold)
	defer cancel()
	if err := r.waitActiveEnd(endCtx); err != nil {
		return 0, physical.NewTimeoutError()
	}
	return time.Since(start), nil
}

// ReadMark measures one mark's raw duration without classifying it into
// a bit, the primitive a sync-marker reader needs while hunting for the
// preamble.
func (r *Reader) ReadMark(ctx context.Context) (time.Duration, error) {
	return r.readTiming(ctx)
}

func (r *Reader) ReadBit(ctx context.Context) (bool, error) {
	elapsed, err := r.readTiming(ctx)
	if err != nil {
		return false, err
	}

	switch {
	case elapsed <= r.timing.LowerThreshold:
		return false, physical.NewThresholdError()
	case elapsed >= r.timing.UpperThreshold:
		return false, physical.NewThresholdError()
	case elapsed >= r.timing.Ones:
		return true, nil
	case elapsed >= r.timing.Zeroes:
		return false, nil
	default:
		return false, physical.NewOutOfTimingError()
	}
}

func (r *Reader) ReadByte(ctx context.Context) (byte, error) {
	return physical.ReadByteGeneric(ctx, r.ReadBit)
}

func (r *Reader) ReadBytes(ctx context.Context, buf []byte) (int, error) {
	return physical.ReadBytesGeneric(ctx, buf, r.ReadByte)
}

var _ physical.Reader = (*Reader)(nil)
