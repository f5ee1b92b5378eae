// Package manchester implements the two-phase Manchester line code:
// each bit period is split into two half-bit marks whose level
// transition (not either level alone) carries the bit.
package manchester

import (
	"context"
	"time"

	"github.com/n6dev/airwave/internal/physical"
	"github.com/n6dev/airwave/internal/pin"
)

// Timing holds the half- and quarter-bit-period subdivisions derived
// from a single data-bit period.
type Timing struct {
	Period time.Duration
	Half   time.Duration
	Quarter time.Duration
}

// NewTiming derives half and quarter periods from a data-bit period T.
func NewTiming(period time.Duration) Timing {
	half := period / 2
	return Timing{Period: period, Half: half, Quarter: half / 2}
}

// Writer drives a pin.Pin with Manchester-coded bits, IEEE 802.3
// convention: 0 is high-then-low, 1 is low-then-high.
type Writer struct {
	timing Timing
	p      pin.Pin
}

func NewWriter(timing Timing, p pin.Pin) *Writer {
	return &Writer{timing: timing, p: p}
}

func (w *Writer) WriteBit(ctx context.Context, bit bool) error {
	first, second := true, false // bit == 0: high then low
	if bit {
		first, second = false, true // bit == 1: low then high
	}

	if err := w.setAndHold(ctx, first); err != nil {
		return err
	}
	return w.setAndHold(ctx, second)
}

func (w *Writer) setAndHold(ctx context.Context, high bool) error {
	if high {
		w.p.SetHigh()
	} else {
		w.p.SetLow()
	}
	if err := physical.Sleep(ctx, w.timing.Half); err != nil {
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
	}
	return nil
}

func (w *Writer) WriteBytes(ctx context.Context, buf []byte) (int, error) {
	return physical.WriteBytesGeneric(ctx, buf, w.WriteByte)
}

func (w *Writer) Pause()  {}
func (w *Writer) Resume() {}

var _ physical.Writer = (*Writer)(nil)

// Reader decodes Manchester-coded bits by sampling the pin level twice
// per bit period (at T/4 and 3T/4), classifying the (first, second)
// pair: (false,true) is 1, (true,false) is 0, and the two invalid
// same-level pairs default heuristically: (false,false)→0, (true,true)→1.
type Reader struct {
	timing Timing
	p      pin.Pin
}

func NewReader(timing Timing, p pin.Pin) *Reader {
	return &Reader{timing: timing, p: p}
}

const timeoutPeriods = 15

func (r *Reader) ReadBit(ctx context.Context) (bool, error) {
	if err := physical.Sleep(ctx, r.timing.Quarter); err != nil {
		return false, physical.NewTimeoutError()
	}
	first := r.p.IsHigh()

	if err := physical.Sleep(ctx, r.timing.Half); err != nil {
		return false, physical.NewTimeoutError()
	}
	second := r.p.IsHigh()

	if err := physical.Sleep(ctx, r.timing.Quarter); err != nil {
		return false, physical.NewTimeoutError()
	}

	switch {
	case !first && second:
		return true, nil
	case first && !second:
		return false, nil
	case !first && !second:
		return false, nil
	default: // first && second
		return true, nil
	}
}

func (r *Reader) ReadByte(ctx context.Context) (byte, error) {
	byteCtx, cancel := context.WithTimeout(ctx, timeoutPeriods*r.timing.Period)
	defer cancel()
	return physical.ReadByteGeneric(byteCtx, r.ReadBit)
}

func (r *Reader) ReadBytes(ctx context.Context, buf []byte) (int, error) {
	return physical.ReadBytesGeneric(ctx, buf, r.ReadByte)
}

var _ physical.Reader = (*Reader)(nil)
