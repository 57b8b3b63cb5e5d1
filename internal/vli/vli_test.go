package vli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddSubRoundTrip(t *testing.T) {
	a := U256{1, 2, 3, 4, 5, 6, 7, 8}
	b := U256{8, 7, 6, 5, 4, 3, 2, 1}

	sum, carry := Add(a, b)
	require.Equal(t, uint32(0), carry)

	back, borrow := Sub(sum, b)
	require.Equal(t, uint32(0), borrow)
	require.Equal(t, a, back)
}

func TestCmp(t *testing.T) {
	a := U256{0, 0, 0, 0, 0, 0, 0, 1}
	b := U256{0, 0, 0, 0, 0, 0, 0, 2}

	require.Equal(t, -1, Cmp(a, b))
	require.Equal(t, 1, Cmp(b, a))
	require.Equal(t, 0, Cmp(a, a))
}

func TestIsZero(t *testing.T) {
	require.True(t, IsZero(U256{}))
	require.False(t, IsZero(U256{0, 0, 0, 0, 0, 0, 0, 1}))
}

func TestCondSelect(t *testing.T) {
	a := U256{1, 1, 1, 1, 1, 1, 1, 1}
	b := U256{2, 2, 2, 2, 2, 2, 2, 2}

	require.Equal(t, a, CondSelect(a, b, 1))
	require.Equal(t, b, CondSelect(a, b, 0))
}

func TestShiftRightRejectsZero(t *testing.T) {
	require.Panics(t, func() { ShiftRight(U256{}, 0) })
}

func TestFromBigEndianRoundTrip(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	u := FromBigEndianBytes(raw)
	back := u.BigEndianBytes()
	require.Equal(t, raw, back[:])
}

func TestBarretteAssumption(t *testing.T) {
	// Top limb all ones, bottom limb nonzero: holds.
	ok := U256{1, 0, 0, 0, 0, 0, 0, 0xFFFFFFFF}
	require.True(t, BarretteAssumptionHolds(ok))

	// Bottom limb zero: fails (modulus would end in 32 zero bits).
	bad := U256{0, 0, 0, 0, 0, 0, 0, 0xFFFFFFFF}
	require.False(t, BarretteAssumptionHolds(bad))

	// Top limb not all ones: fails.
	bad2 := U256{1, 0, 0, 0, 0, 0, 0, 0x7FFFFFFF}
	require.False(t, BarretteAssumptionHolds(bad2))
}
