// Package seqnum implements modular sequence-number arithmetic over a small
// ring, used to order packets belonging to one reassembly.
//
// Go has no const-generic integers, so the modulus that the Rust original
// carries as a type parameter (SequenceNumber<const MODULO: u8>) is instead
// a runtime field fixed at construction time. Every Number produced by the
// same Counter shares that modulus.
package seqnum

import "fmt"

// Number is an integer in [0, modulo) with ring arithmetic.
type Number struct {
	value  uint32
	modulo uint32
}

// New returns the value reduced into [0, modulo).
func New(modulo, value uint32) Number {
	if modulo == 0 {
		panic("seqnum: modulo must be positive")
	}
	return Number{value: value % modulo, modulo: modulo}
}

// Value returns the current value.
func (n Number) Value() uint32 { return n.value }

// Modulo returns the ring size.
func (n Number) Modulo() uint32 { return n.modulo }

// Counter is a mutable sequence-number cell: the "counter that persists
// across calls" owned by a sender.
type Counter struct {
	modulo  uint32
	current uint32
}

// NewCounter starts a counter at value 0 within the given modulus.
func NewCounter(modulo uint32) *Counter {
	if modulo == 0 {
		panic("seqnum: modulo must be positive")
	}
	return &Counter{modulo: modulo}
}

// Advance returns the current value and post-increments modulo the ring
// size, wrapping M-1 back to 0.
func (c *Counter) Advance() Number {
	n := New(c.modulo, c.current)
	c.current = (c.current + 1) % c.modulo
	return n
}

// Peek returns the current value without advancing.
func (c *Counter) Peek() Number {
	return New(c.modulo, c.current)
}

// PositiveDistance computes (b - a) mod M: the number of forward steps from
// a to b.
func (a Number) PositiveDistance(b Number) uint32 {
	a.mustMatch(b)
	if a.value == b.value {
		return 0
	}
	if a.value < b.value {
		return b.value - a.value
	}
	return (a.modulo - a.value) + b.value
}

// NegativeDistance computes (a - b) mod M: the number of backward steps from
// a to b, equivalently the forward distance from b to a.
func (a Number) NegativeDistance(b Number) uint32 {
	return b.PositiveDistance(a)
}

// minDistance is the smaller of the two ring distances between a and b.
func (a Number) minDistance(b Number) uint32 {
	pos := a.PositiveDistance(b)
	neg := a.NegativeDistance(b)
	if pos < neg {
		return pos
	}
	return neg
}

// Ordering mirrors core::cmp::Ordering for a base-relative comparison.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

// Compare orders a and b by their forward distance from base: the element
// closer (in the positive direction) to base sorts first. Given a fixed
// base this is a total order over the ring.
func (a Number) Compare(b Number, base Number) Ordering {
	a.mustMatch(b)
	a.mustMatch(base)
	if a.value == b.value {
		return Equal
	}
	da := base.PositiveDistance(a)
	db := base.PositiveDistance(b)
	switch {
	case da < db:
		return Less
	case da > db:
		return Greater
	default:
		return Equal
	}
}

// PartialCompare orders a and b without a base element. The comparison is
// unambiguous only when the minimal ring distance between them is at most
// M/2; beyond that the ordering is indeterminate (ok is false).
func (a Number) PartialCompare(b Number) (order Ordering, ok bool) {
	a.mustMatch(b)
	if a.value == b.value {
		return Equal, true
	}

	pos := a.PositiveDistance(b)
	neg := a.NegativeDistance(b)
	if a.minDistance(b) > a.modulo/2 {
		return Equal, false
	}
	if pos <= neg {
		return Less, true
	}
	return Greater, true
}

// GetInsertionOrderAscending returns the index at which new belongs so that
// list stays ascending by Compare(base) (or PartialCompare when base is
// nil). It returns ok=false when new's value already occurs in list - the
// caller should treat that as a duplicate, not an insertion.
//
// With an empty list the insertion index is always 0.
func GetInsertionOrderAscending(newNum Number, list []Number, base *Number) (index int, ok bool) {
	for _, existing := range list {
		if existing.value == newNum.value {
			return 0, false
		}
	}

	for i, existing := range list {
		var less bool
		if base != nil {
			less = newNum.Compare(existing, *base) == Less
		} else {
			order, defined := newNum.PartialCompare(existing)
			less = defined && order == Less
		}
		if less {
			return i, true
		}
	}
	return len(list), true
}

func (a Number) mustMatch(b Number) {
	if a.modulo != b.modulo {
		panic(fmt.Sprintf("seqnum: mismatched moduli %d and %d", a.modulo, b.modulo))
	}
}

func (n Number) String() string {
	return fmt.Sprintf("SequenceNumber<%d>[%d]", n.modulo, n.value)
}
