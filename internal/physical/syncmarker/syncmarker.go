// Package syncmarker implements the PWM-encoded preamble that
// bootstraps bit timing and lets a receiver acquire frame start before
// reading payload bytes.
package syncmarker

import (
	"context"
	"time"

	"github.com/n6dev/airwave/internal/physical"
	"github.com/n6dev/airwave/internal/physical/pwm"
)

// Sequence describes a fixed preamble pattern expressed as PWM marks:
// NumberOfBits bits of Pattern (LSB first), each Ones or Zeroes long,
// separated by BetweenBits gaps. ReadThreshold pads every written mark
// so small clock drift between nodes still reads as a "met" duration.
type Sequence struct {
	Ones         time.Duration
	Zeroes       time.Duration
	BetweenBits  time.Duration
	ReadThreshold time.Duration

	NumberOfBits int
	Pattern      uint32
}

// DefaultSequence is spec.md §6's default preamble: 4 bits, 0b1011.
func DefaultSequence() Sequence {
	return Sequence{
		Ones:          2500 * time.Microsecond,
		Zeroes:        1250 * time.Microsecond,
		BetweenBits:   625 * time.Microsecond,
		ReadThreshold: 2500 * time.Microsecond / 6,
		NumberOfBits:  4,
		Pattern:       0b1011,
	}
}

func (s Sequence) bit(index int) bool {
	return (s.Pattern>>uint(index))&1 != 0
}

// Writer prepends a Sequence preamble to every WriteBytes call, driving
// the underlying pwm.Writer's pin directly for the preamble marks.
type Writer struct {
	seq    Sequence
	writer *pwm.Writer
}

func NewWriter(seq Sequence, writer *pwm.Writer) *Writer {
	return &Writer{seq: seq, writer: writer}
}

func (w *Writer) writeSequence(ctx context.Context) error {
	for index := 0; index < w.seq.NumberOfBits; index++ {
		d := w.seq.Zeroes
		if w.seq.bit(index) {
			d = w.seq.Ones
		}
		d += w.seq.ReadThreshold

		if err := w.writer.WriteMark(ctx, d); err != nil {
			return err
		}
		if err := physical.Sleep(ctx, w.seq.BetweenBits); err != nil {
			return physical.NewWriteError()
		}
	}
	return nil
}

func (w *Writer) WriteBit(ctx context.Context, bit bool) error { return w.writer.WriteBit(ctx, bit) }
func (w *Writer) WriteByte(ctx context.Context, b byte) error  { return w.writer.WriteByte(ctx, b) }

func (w *Writer) WriteBytes(ctx context.Context, buf []byte) (int, error) {
	if err := w.writeSequence(ctx); err != nil {
		return 0, err
	}
	return w.writer.WriteBytes(ctx, buf)
}

func (w *Writer) Pause()  { w.writer.Pause() }
func (w *Writer) Resume() { w.writer.Resume() }

var _ physical.Writer = (*Writer)(nil)

// Reader scans for Sequence before reading payload bytes, and widens
// the underlying pwm.Reader's upper threshold to the preamble's total
// mark duration so payload reads use bounds consistent with what was
// actually observed on the wire.
type Reader struct {
	seq    Sequence
	reader *pwm.Reader
}

func NewReader(seq Sequence, reader *pwm.Reader) *Reader {
	reader.Timing().AdjustToSyncMarker(seq.Ones, seq.Zeroes)
	return &Reader{seq: seq, reader: reader}
}

// readSequence scans incoming marks for a monotonically progressing
// match against the pattern, restarting from index 0 on any mark whose
// duration doesn't meet the expected bound.
func (r *Reader) readSequence(ctx context.Context) error {
	index := 0
	for {
		elapsed, err := r.reader.ReadMark(ctx)
		if err != nil {
			if physical.IsRecoverableReadError(err) {
				continue
			}
			return err
		}

		expected := r.seq.Zeroes
		if r.seq.bit(index) {
			expected = r.seq.Ones
		}

		if elapsed >= expected {
			index++
			if index >= r.seq.NumberOfBits {
				return nil
			}
		} else {
			index = 0
		}
	}
}

func (r *Reader) ReadBit(ctx context.Context) (bool, error) { return r.reader.ReadBit(ctx) }
func (r *Reader) ReadByte(ctx context.Context) (byte, error) { return r.reader.ReadByte(ctx) }

func (r *Reader) ReadBytes(ctx context.Context, buf []byte) (int, error) {
	if err := r.readSequence(ctx); err != nil {
		return 0, err
	}
	return r.reader.ReadBytes(ctx, buf)
}

var _ physical.Reader = (*Reader)(nil)
