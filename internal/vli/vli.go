// Package vli implements the fixed-width 256-bit unsigned integer
// primitives spec.md §4.A calls the "VLI" (very large integer) layer:
// carry-propagating add/sub, constant-time compare and conditional
// select, schoolbook multiplication into a 512-bit product, and a check
// of the precondition (top 32 bits all one) a specialized Barrett
// reducer depends on. The package contains no Barrett reducer itself.
//
// Field and curve arithmetic (components B/C) run on
// github.com/consensys/gnark-crypto's bn254 fp/fr Element types, which
// already carry a hardened constant-time Montgomery implementation for
// the two EPID moduli (q and the group order r). This package supplies
// the handful of byte/limb-level primitives gnark-crypto does not
// export directly — constant-time compare, conditional select, bit
// test. The fixed-window scalar multiplication in internal/curve uses
// the big-endian decoding and the bit test. It is
// grounded on the constant-time limb style of mleku-p256k1/field.go
// (crypto/subtle-based compare/select over a fixed limb array).
package vli

import (
	"crypto/subtle"
	"encoding/binary"
)

// Width256 is the limb count of a 256-bit VLI value: eight 32-bit limbs,
// little-endian in memory, matching spec.md §3 exactly.
const Width256 = 8

// U256 is a 256-bit unsigned integer as eight little-endian 32-bit limbs.
type U256 [Width256]uint32

// U512 is the product type for Mul, sixteen little-endian 32-bit limbs.
type U512 [2 * Width256]uint32

// FromBigEndianBytes decodes the canonical 32-byte big-endian wire form
// spec.md §3/§4.E use for every field element and scalar on the wire.
func FromBigEndianBytes(b []byte) U256 {
	var u U256
	var be [32]byte
	copy(be[32-len(b):], b)
	for i := 0; i < Width256; i++ {
		// limb i holds octets [32-4*(i+1) : 32-4*i), i.e. limb 0 is least
		// significant and holds the last 4 octets of the big-endian form.
		off := 32 - 4*(i+1)
		u[i] = binary.BigEndian.Uint32(be[off : off+4])
	}
	return u
}

// BigEndianBytes encodes u as 32 canonical big-endian octets.
func (u U256) BigEndianBytes() [32]byte {
	var be [32]byte
	for i := 0; i < Width256; i++ {
		off := 32 - 4*(i+1)
		binary.BigEndian.PutUint32(be[off:off+4], u[i])
	}
	return be
}

// Add computes r = a + b mod 2^256 and returns the carry out of the top
// limb (0 or 1). Carry-propagating, limb-wise, no early exit.
func Add(a, b U256) (r U256, carry uint32) {
	var c uint64
	for i := 0; i < Width256; i++ {
		s := uint64(a[i]) + uint64(b[i]) + c
		r[i] = uint32(s)
		c = s >> 32
	}
	return r, uint32(c)
}

// Sub computes r = a - b mod 2^256 and returns the borrow out of the top
// limb (0 or 1).
func Sub(a, b U256) (r U256, borrow uint32) {
	var brw uint64
	for i := 0; i < Width256; i++ {
		ai, bi := uint64(a[i]), uint64(b[i])
		d := ai - bi - brw
		r[i] = uint32(d)
		if ai < bi+brw {
			brw = 1
		} else {
			brw = 0
		}
	}
	return r, uint32(brw)
}

// Mul computes the full 512-bit schoolbook product a*b.
func Mul(a, b U256) U512 {
	var r U512
	for i := 0; i < Width256; i++ {
		var carry uint64
		for j := 0; j < Width256; j++ {
			p := uint64(a[i])*uint64(b[j]) + uint64(r[i+j]) + carry
			r[i+j] = uint32(p)
			carry = p >> 32
		}
		r[i+Width256] = uint32(carry)
	}
	return r
}

// ShiftRight shifts a right by k bits, 0 < k < 32. Cross-limb blending;
// the source's VliRShift is undefined at k == 0 (spec.md §9 open
// question) — this implementation forbids it by contract instead of
// silently overflowing the (32-k) term.
func ShiftRight(a U256, k uint) U256 {
	if k == 0 || k >= 32 {
		panic("vli: ShiftRight requires 0 < k < 32")
	}
	var r U256
	for i := 0; i < Width256; i++ {
		r[i] = a[i] >> k
		if i+1 < Width256 {
			r[i] |= a[i+1] << (32 - k)
		}
	}
	return r
}

// Cmp is a constant-time three-way compare: -1, 0, or +1. It folds every
// limb's sign into a branch-free accumulator rather than returning on the
// first differing limb, so the number of limbs examined never depends on
// where a and b first differ.
func Cmp(a, b U256) int {
	gt, lt := uint32(0), uint32(0)
	for i := Width256 - 1; i >= 0; i-- {
		// Only the most significant differing limb should set gt/lt;
		// once either is set, further (lower, less significant) limbs
		// must not override it.
		already := gt | lt
		isGt := boolToMask(a[i] > b[i]) &^ already
		isLt := boolToMask(a[i] < b[i]) &^ already
		gt |= isGt
		lt |= isLt
	}
	switch {
	case gt != 0:
		return 1
	case lt != 0:
		return -1
	default:
		return 0
	}
}

func boolToMask(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// IsZero is a constant-time accumulator: ORs every limb together and
// reports whether the result is zero, without branching on individual
// limbs.
func IsZero(a U256) bool {
	var acc uint32
	for _, limb := range a {
		acc |= limb
	}
	return subtle.ConstantTimeEq(int32(acc), 0) == 1
}

// TestBit returns bit i of a as 0 or 1.
func TestBit(a U256, i int) uint32 {
	limb := a[i/32]
	return (limb >> uint(i%32)) & 1
}

// CondSelect is a branch-free select: returns t if flag == 1, f if
// flag == 0. Behavior for any other flag value is unspecified, matching
// spec.md's cond_select(t, f, flag) contract.
func CondSelect(t, f U256, flag uint32) U256 {
	mask := uint32(0) - (flag & 1)
	var r U256
	for i := range r {
		r[i] = (t[i] & mask) | (f[i] &^ mask)
	}
	return r
}

// CondSelectBytes is the byte-slice analogue of CondSelect, used where
// callers hold wire-form octets rather than a decoded U256 (e.g.
// selecting between two encoded points without branching on a secret
// flag).
func CondSelectBytes(dst, t, f []byte, flag int) {
	m := byte(subtle.ConstantTimeEq(int32(flag), 1))
	mask := -m // 0x00 or 0xFF
	for i := range dst {
		dst[i] = (t[i] & mask) | (f[i] &^ mask)
	}
}

// BarretteAssumptionHolds reports whether modulus begins with 32
// one-bits and does not end with 32 zero-bits, the precondition the
// specialized Barrett reducer in spec.md §4.A depends on.
// Implementations MUST call this once per modulus at context
// construction and refuse to proceed (or fall back to a general
// reducer) if it returns false — spec.md §9 explicitly forbids
// silently carrying the assumption forward.
func BarretteAssumptionHolds(modulus U256) bool {
	top := modulus[Width256-1]
	if top != 0xFFFFFFFF {
		return false
	}
	bottom := modulus[0]
	return bottom != 0
}
