// Package field implements spec.md §4.B: the prime field Fq, its scalar
// counterpart Fp (the BN curve's prime subgroup order), and the tower
// Fq² → Fq⁶ → Fq¹² used by the pairing's target group GT.
//
// Fq and Fp are github.com/consensys/gnark-crypto/ecc/bn254's fp.Element
// and fr.Element: both already carry Montgomery-form CIOS multiplication,
// Fermat-exponentiation inversion, and constant-time arithmetic for
// secret operands, hardened against exactly the BN254 modulus EPID's
// 256-bit curve family uses. The tower (Fq²/Fq⁶/Fq¹²) is
// github.com/consensys/gnark-crypto/ecc/bn254's E2/E6/E12, built with the
// same reduction polynomials spec.md §4.B names (u²+1, v³−ξ, w²−v) via
// Karatsuba multiplication. This package adds only what that library does
// not already expose: hash-to-field with the bias bound spec.md demands,
// and the encode/decode boundary to the VLI wire form.
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/epidcore/epid2/internal/vli"
)

// Fq is a base-field element (curve coordinates, h1/h2/w components).
type Fq = fp.Element

// Fp is a scalar-field element: EPID's "p", the prime order of G1/G2,
// used for the member secret f, the credential exponent x, and every
// Σ-protocol nonce/response (c, sx, sf, sa, sb).
type Fp = fr.Element

// Fq2 is the quadratic extension a0 + a1*i, i² = -1.
type Fq2 = bn254.E2

// Fq6 is the sextic extension over Fq2, reduction polynomial v³ - ξ.
type Fq6 = bn254.E6

// Fq12 is the full tower, reduction polynomial w² - v; GT lives here.
type Fq12 = bn254.E12

// FqSize and FpSize are the canonical big-endian wire width of Fq/Fp
// elements: 32 octets each, per spec.md §4.E.
const (
	FqSize = fp.Bytes
	FpSize = fr.Bytes
)

// FqFromBytes decodes a canonical (non-Montgomery) big-endian Fq element.
func FqFromBytes(b []byte) (Fq, error) {
	var e Fq
	if len(b) != FqSize {
		return e, errBadLen(FqSize, len(b))
	}
	if _, err := e.SetBytesCanonical(b); err != nil {
		return e, err
	}
	return e, nil
}

// FqBytes encodes e as FqSize canonical big-endian octets.
func FqBytes(e *Fq) []byte {
	b := e.Bytes()
	return b[:]
}

// FpFromBytes decodes a canonical big-endian Fp (scalar) element.
func FpFromBytes(b []byte) (Fp, error) {
	var e Fp
	if len(b) != FpSize {
		return e, errBadLen(FpSize, len(b))
	}
	if _, err := e.SetBytesCanonical(b); err != nil {
		return e, err
	}
	return e, nil
}

// FpBytes encodes e as FpSize canonical big-endian octets.
func FpBytes(e *Fp) []byte {
	b := e.Bytes()
	return b[:]
}

// HashToFq reduces a wide hash digest into Fq with bias at most 2^-128,
// per spec.md §4.B: digest must be at least FqSize+16 bytes so the
// modular reduction's bias is negligible relative to q.
func HashToFq(digest []byte) (Fq, error) {
	var e Fq
	if len(digest) < FqSize+16 {
		return e, errShortDigest(FqSize+16, len(digest))
	}
	i := new(big.Int).SetBytes(digest)
	i.Mod(i, fp.Modulus())
	e.SetBigInt(i)
	return e, nil
}

// HashToFp is HashToFq's analogue for the scalar field, used to derive
// the Σ-protocol challenge c from the signing transcript (spec.md §4.I
// step 5).
func HashToFp(digest []byte) (Fp, error) {
	var e Fp
	if len(digest) < FpSize+16 {
		return e, errShortDigest(FpSize+16, len(digest))
	}
	i := new(big.Int).SetBytes(digest)
	i.Mod(i, fr.Modulus())
	e.SetBigInt(i)
	return e, nil
}

// FpToBigInt and FqToBigInt expose the big.Int view gnark-crypto's
// Element carries, the form curve scalar multiplication and GT
// exponentiation take their scalars in.
func FpToBigInt(e *Fp) *big.Int {
	var i big.Int
	e.BigInt(&i)
	return &i
}

func FqToBigInt(e *Fq) *big.Int {
	var i big.Int
	e.BigInt(&i)
	return &i
}

// FpModulusU256 exposes the group order as a vli.U256.
func FpModulusU256() vli.U256 {
	return vli.FromBigEndianBytes(padTo32(fr.Modulus().Bytes()))
}

// FpModulusBig exposes the group order as a *big.Int.
func FpModulusBig() *big.Int {
	return fr.Modulus()
}

func padTo32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func errBadLen(want, got int) error {
	return &lengthError{want: want, got: got}
}

func errShortDigest(want, got int) error {
	return &lengthError{want: want, got: got, digest: true}
}

type lengthError struct {
	want, got int
	digest    bool
}

func (e *lengthError) Error() string {
	if e.digest {
		return "field: digest too short for negligible-bias reduction"
	}
	return "field: wrong-length encoded element"
}
