package seqnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCounterAdvanceWraps(t *testing.T) {
	c := NewCounter(8)
	for i := uint32(0); i < 8; i++ {
		got := c.Advance()
		assert.Equal(t, i, got.Value())
	}
	// M-1 -> 0
	assert.Equal(t, uint32(0), c.Peek().Value())
}

func TestPositiveNegativeDistanceSimple(t *testing.T) {
	a := New(8, 7)
	b := New(8, 0)

	assert.Equal(t, uint32(1), a.PositiveDistance(b), "7 -> 0 mod 8 is one step forward")
	assert.Equal(t, uint32(7), a.NegativeDistance(b), "7 -> 0 mod 8 backwards is seven steps")
}

func TestCompareIsTotalOrderGivenBase(t *testing.T) {
	base := New(8, 0)
	numbers := make([]Number, 8)
	for i := range numbers {
		numbers[i] = New(8, uint32(i))
	}

	for i := range numbers {
		for j := range numbers {
			order := numbers[i].Compare(numbers[j], base)
			reverse := numbers[j].Compare(numbers[i], base)
			if i == j {
				assert.Equal(t, Equal, order)
			} else if order == Less {
				assert.Equal(t, Greater, reverse)
			} else {
				assert.Equal(t, Less, reverse)
			}
		}
	}
}

func TestGetInsertionOrderAscendingEmptyList(t *testing.T) {
	idx, ok := GetInsertionOrderAscending(New(8, 3), nil, nil)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestGetInsertionOrderAscendingDuplicateIsAbsent(t *testing.T) {
	existing := []Number{New(8, 2), New(8, 5)}
	_, ok := GetInsertionOrderAscending(New(8, 5), existing, nil)
	assert.False(t, ok, "inserting a value already present must report absent")
}

// Property: positive_distance(a,b) = negative_distance(b,a); the two
// distances sum to either 0 (equal) or the modulus.
func TestPropertyDistanceSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		modulo := rapid.Uint32Range(1, 64).Draw(t, "modulo")
		av := rapid.Uint32Range(0, modulo-1).Draw(t, "a")
		bv := rapid.Uint32Range(0, modulo-1).Draw(t, "b")

		a := New(modulo, av)
		b := New(modulo, bv)

		assert.Equal(t, a.PositiveDistance(b), b.NegativeDistance(a))

		sum := a.PositiveDistance(b) + a.NegativeDistance(b)
		if a.Value() == b.Value() {
			assert.Equal(t, uint32(0), sum)
		} else {
			assert.Equal(t, modulo, sum)
		}
	})
}

// Property: repeatedly inserting at the index GetInsertionOrderAscending
// returns yields a sequence sorted by Compare(base).
func TestPropertyInsertionSortPreservesAscending(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		modulo := rapid.Uint32Range(2, 32).Draw(t, "modulo")
		baseValue := rapid.Uint32Range(0, modulo-1).Draw(t, "base")
		base := New(modulo, baseValue)

		count := rapid.IntRange(0, int(modulo)).Draw(t, "count")
		seen := map[uint32]bool{}
		var values []uint32
		for len(values) < count {
			v := rapid.Uint32Range(0, modulo-1).Draw(t, "v")
			if seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}

		var list []Number
		for _, v := range values {
			n := New(modulo, v)
			idx, ok := GetInsertionOrderAscending(n, list, &base)
			require.True(t, ok)
			list = append(list, Number{})
			copy(list[idx+1:], list[idx:])
			list[idx] = n
		}

		for i := 1; i < len(list); i++ {
			assert.NotEqual(t, Greater, list[i-1].Compare(list[i], base))
		}
	})
}
