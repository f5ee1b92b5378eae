// Package window implements the receiver-side reassembly buffer: reorder,
// dedupe, and completion detection for the packets of one logical message.
package window

import (
	"errors"
	"fmt"

	"github.com/n6dev/airwave/internal/packet"
	"github.com/n6dev/airwave/internal/seqnum"
)

// ErrFullWindow is returned by Push when the window has reached capacity
// and cannot accept another packet.
var ErrFullWindow = errors.New("window: full")

// ErrWrongStreamID is returned by Push when a packet's stream id does not
// match the stream already buffered.
var ErrWrongStreamID = errors.New("window: wrong stream id")

// Window is a bounded, ordered reassembly buffer for the packets of one
// message. The zero value is not usable; construct with New.
type Window struct {
	capacity     int
	buffer       []packet.Packet
	baseObserved bool
	streamID     *seqnum.Number
}

// New returns an empty window with the given capacity (8 for 32-bit
// packets, 32 for 64-bit, per spec.md §3).
func New(capacity int) *Window {
	return &Window{capacity: capacity}
}

// Clear resets the window to empty, dropping any partial reassembly. Upper
// layers decide when to call this - typically at the start of each
// Receiver.ReceiveBytes call.
func (w *Window) Clear() {
	w.buffer = w.buffer[:0]
	w.baseObserved = false
	w.streamID = nil
}

// Push inserts p into the window, reordering and deduping as needed, and
// reports whether the reassembly is now complete. complete is false with a
// nil error while packets are still missing; when complete is true,
// totalBytes is the payload byte count available via WriteBuffer.
func (w *Window) Push(p packet.Packet) (complete bool, totalBytes int, err error) {
	if w.streamID != nil {
		sid := p.StreamID()
		if sid.Value() != w.streamID.Value() {
			return false, 0, fmt.Errorf("%w: buffered=%d got=%d", ErrWrongStreamID, w.streamID.Value(), sid.Value())
		}
	}

	if len(w.buffer) == 0 {
		sid := p.StreamID()
		w.streamID = &sid
		w.buffer = append(w.buffer, p)
		return w.checkComplete()
	}

	base := w.baseSequenceNumber()
	if base == nil && p.Kind() == packet.Start {
		sn := p.SequenceNumber()
		base = &sn
	}

	if !w.baseObserved && base != nil {
		w.resortByBase(*base)
		w.baseObserved = true
	}

	sns := make([]seqnum.Number, len(w.buffer))
	for i, existing := range w.buffer {
		sns[i] = existing.SequenceNumber()
	}

	index, ok := seqnum.GetInsertionOrderAscending(p.SequenceNumber(), sns, base)
	if !ok {
		// Duplicate packet: drop it silently, never newly complete.
		return false, 0, nil
	}

	if len(w.buffer) >= w.capacity {
		return false, 0, ErrFullWindow
	}

	w.buffer = append(w.buffer, nil)
	copy(w.buffer[index+1:], w.buffer[index:])
	w.buffer[index] = p

	return w.checkComplete()
}

// WriteBuffer concatenates each buffered packet's used payload bytes, in
// packet order, into a fresh slice. It requires the window to be complete.
func (w *Window) WriteBuffer() ([]byte, error) {
	if ok, _, _ := w.checkComplete(); !ok {
		return nil, errors.New("window: reassembly is not complete")
	}

	var out []byte
	for _, p := range w.buffer {
		out = append(out, p.PayloadBytes()...)
	}
	return out, nil
}

func (w *Window) baseSequenceNumber() *seqnum.Number {
	if len(w.buffer) == 0 {
		return nil
	}
	if w.buffer[0].Kind() != packet.Start {
		return nil
	}
	sn := w.buffer[0].SequenceNumber()
	return &sn
}

func (w *Window) resortByBase(base seqnum.Number) {
	// Stable sort: shared guarantee with sort.SliceStable, kept simple
	// (small, bounded window) via insertion sort so ties preserve arrival
	// order exactly as a stable sort would.
	for i := 1; i < len(w.buffer); i++ {
		j := i
		for j > 0 && w.buffer[j-1].SequenceNumber().Compare(w.buffer[j].SequenceNumber(), base) == seqnum.Greater {
			w.buffer[j-1], w.buffer[j] = w.buffer[j], w.buffer[j-1]
			j--
		}
	}
}

// checkComplete reports completion per spec.md §4.4 and, if complete, the
// total payload byte count.
func (w *Window) checkComplete() (bool, int, error) {
	if len(w.buffer) == 0 {
		return false, 0, nil
	}

	complete := false
	if len(w.buffer) == 1 && w.buffer[0].Kind() == packet.SelfContained {
		complete = true
	} else if len(w.buffer) > 1 &&
		w.buffer[0].Kind() == packet.Start &&
		w.buffer[len(w.buffer)-1].Kind() == packet.End {
		complete = w.consecutiveDistancesAreOne()
	}

	if !complete {
		return false, 0, nil
	}

	total := 0
	for _, p := range w.buffer {
		total += len(p.PayloadBytes())
	}
	return true, total, nil
}

func (w *Window) consecutiveDistancesAreOne() bool {
	prev := w.buffer[0].SequenceNumber()
	for _, p := range w.buffer[1:] {
		cur := p.SequenceNumber()
		if prev.PositiveDistance(cur) != 1 {
			return false
		}
		prev = cur
	}
	return true
}
