// Package curve implements spec.md §4.C: the G1 and G2 point groups, a
// constant-time fixed-window scalar multiplication, try-and-increment
// hash-to-curve, and the canonical affine wire encoding.
//
// Point addition/doubling and the on-curve / in-subgroup tests delegate
// to github.com/consensys/gnark-crypto/ecc/bn254's G1Affine/G2Affine,
// which already implement the BN254 group law correctly and in constant
// time for secret operands. What this package adds by hand is the part
// spec.md describes as protocol-specific, not group-law-specific: the
// windowed constant-time scalar table-scan algorithm, and EPID's
// try-and-increment hash-to-curve (gnark-crypto's own HashToG1/HashToG2
// use RFC 9380 SSWU, a different map than the EPID wire format assumes).
package curve

import (
	"crypto/subtle"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/internal/vli"
)

// windowWidth is the fixed window size for scalar_mul, spec.md §4.C
// ("width 4 or 5"); 4 keeps the precomputed table at a modest 16 points
// (2^w) per scalar multiplication.
const windowWidth = 4

// G1 wraps bn254.G1Affine with the EPID-specific operations spec.md
// names: encode/decode to fixed big-endian octets, and windowed scalar
// multiplication.
type G1 struct{ bn254.G1Affine }

// G2 is G1's analogue over the sextic twist.
type G2 struct{ bn254.G2Affine }

// G1Size/G2Size are the uncompressed affine wire sizes: two Fq octets
// for G1, two Fq2 (= 2*Fq) octets for G2.
const (
	G1Size = 2 * field.FqSize
	G2Size = 2 * 2 * field.FqSize
)

// IsIdentity reports whether p is the point at infinity. gnark-crypto
// represents G1 infinity as the affine zero point (0,0), which is never
// on the curve (b != 0), so this is an unambiguous check.
func (p *G1) IsIdentity() bool {
	return p.X.IsZero() && p.Y.IsZero()
}

func (p *G2) IsIdentity() bool {
	return p.X.IsZero() && p.Y.IsZero()
}

// Encode writes p's affine (x, y) as G1Size big-endian octets. Rejects
// the identity, per spec.md §4.C.
func (p *G1) Encode() ([]byte, error) {
	if p.IsIdentity() {
		return nil, errIdentity
	}
	out := make([]byte, 0, G1Size)
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	out = append(out, xb[:]...)
	out = append(out, yb[:]...)
	return out, nil
}

// Decode parses a G1Size buffer, re-checks on-curve and in-subgroup
// membership (spec.md §4.C decode contract for externally supplied
// points).
func DecodeG1(buf []byte) (G1, error) {
	var p G1
	if len(buf) != G1Size {
		return p, errWrongLen(G1Size, len(buf))
	}
	x, err := field.FqFromBytes(buf[:field.FqSize])
	if err != nil {
		return p, err
	}
	y, err := field.FqFromBytes(buf[field.FqSize:])
	if err != nil {
		return p, err
	}
	p.X, p.Y = x, y
	if !p.IsOnCurve() {
		return p, errNotOnCurve
	}
	if !p.IsInSubGroup() {
		return p, errNotInSubgroup
	}
	return p, nil
}

func (p *G2) Encode() ([]byte, error) {
	if p.IsIdentity() {
		return nil, errIdentity
	}
	out := make([]byte, 0, G2Size)
	out = append(out, encodeFq2(&p.X)...)
	out = append(out, encodeFq2(&p.Y)...)
	return out, nil
}

func DecodeG2(buf []byte) (G2, error) {
	var p G2
	if len(buf) != G2Size {
		return p, errWrongLen(G2Size, len(buf))
	}
	x, err := decodeFq2(buf[:2*field.FqSize])
	if err != nil {
		return p, err
	}
	y, err := decodeFq2(buf[2*field.FqSize:])
	if err != nil {
		return p, err
	}
	p.X, p.Y = x, y
	if !p.IsOnCurve() {
		return p, errNotOnCurve
	}
	if !p.IsInSubGroup() {
		return p, errNotInSubgroup
	}
	return p, nil
}

func encodeFq2(e *field.Fq2) []byte {
	a0 := e.A0.Bytes()
	a1 := e.A1.Bytes()
	out := make([]byte, 0, 2*field.FqSize)
	out = append(out, a0[:]...)
	out = append(out, a1[:]...)
	return out
}

func decodeFq2(buf []byte) (field.Fq2, error) {
	var e field.Fq2
	a0, err := field.FqFromBytes(buf[:field.FqSize])
	if err != nil {
		return e, err
	}
	a1, err := field.FqFromBytes(buf[field.FqSize:])
	if err != nil {
		return e, err
	}
	e.A0, e.A1 = a0, a1
	return e, nil
}

// Eq reports point equality (affine coordinates, both already in
// canonical/reduced form).
func (p *G1) Eq(q *G1) bool { return p.Equal(&q.G1Affine) }
func (p *G2) Eq(q *G2) bool { return p.Equal(&q.G2Affine) }

// Generators returns the standard BN254 G1/G2 generators, used as the
// issuer-fixed base points the pairing precomputation caches against
// (spec.md §4.D).
func Generators() (G1, G2) {
	_, _, g1, g2 := bn254.Generators()
	return G1{g1}, G2{g2}
}

// ScalarMul for G2 delegates directly to gnark-crypto's constant-time
// Jacobian scalar multiplication: G2 points appear only as the
// issuer-fixed w and h2-under-w term in EPID, never as a per-signature
// secret-scalar operand, so the extra windowed-table machinery
// G1.ScalarMul carries for the signer's hot path isn't warranted here.
func (p *G2) ScalarMul(k *big.Int) G2 {
	scalar := reduceScalar(k)
	var jac bn254.G2Jac
	jac.FromAffine(&p.G2Affine)
	jac.ScalarMultiplication(&jac, scalar)
	var out bn254.G2Affine
	out.FromJacobian(&jac)
	return G2{out}
}

// ScalarMul computes [k]*P using a constant-time fixed window: k is
// first reduced modulo the group order, then split into windowWidth-bit
// digits; a 2^w-entry table holding every multiple 1*P, ..., (2^w-1)*P
// (slot 0 holds P as a placeholder and is never selected) is built once
// (indexed directly by the raw digit value, so no
// sign/odd-digit recoding is needed), and every nonzero window is
// resolved against the *entire* table via a branch-free mask-and-OR scan
// so the memory access pattern never depends on the digit's value
// (spec.md §4.C).
func (p *G1) ScalarMul(k *big.Int) G1 {
	scalar := reduceScalar(k)
	table := buildG1Table(&p.G1Affine)
	return scalarMulWithTable(scalar, table)
}

func reduceScalar(k *big.Int) *big.Int {
	r := new(big.Int).Set(k)
	mod := field.FpModulusBig()
	r.Mod(r, mod)
	return r
}

// buildG1Table precomputes every multiple 1*P, 2*P, ..., (2^w-1)*P,
// indexed directly by digit value so the window scan never needs to
// recode the scalar into a signed/odd-only digit set first.
// scalarMulWithTable skips zero digits outright before touching the
// table, so table[0] is never selected; it's still set to a valid
// on-curve point (P itself) rather than (0,0) so nothing ever hands
// gnark-crypto's Add an off-curve value.
func buildG1Table(p *bn254.G1Affine) []bn254.G1Affine {
	size := 1 << windowWidth
	table := make([]bn254.G1Affine, size)
	table[0] = *p
	table[1] = *p
	for i := 2; i < size; i++ {
		table[i].Add(&table[i-1], p)
	}
	return table
}

// scalarMulWithTable walks the windows of scalar most-significant first,
// doubling the accumulator windowWidth times per step and then adding
// the table entry selected by a constant-time linear scan (never an
// indexed/branching lookup) for that window's raw digit value.
func scalarMulWithTable(scalar *big.Int, table []bn254.G1Affine) G1 {
	var acc bn254.G1Affine
	acc.X.SetZero()
	acc.Y.SetZero()

	bits := scalar.Bytes()
	u := vli.FromBigEndianBytes(bits)
	totalBits := vli.Width256 * 32
	numWindows := totalBits / windowWidth

	started := false
	for w := numWindows - 1; w >= 0; w-- {
		if started {
			for i := 0; i < windowWidth; i++ {
				acc.Double(&acc)
			}
		}
		digit := extractWindow(u, w, windowWidth)
		if digit == 0 {
			continue
		}
		started = true
		selected := constantTimeSelectG1(table, digit)
		acc.Add(&acc, &selected)
	}
	return G1{acc}
}

func extractWindow(u vli.U256, windowIdx, width int) uint32 {
	if windowIdx < 0 {
		return 0
	}
	startBit := windowIdx * width
	var v uint32
	for i := 0; i < width; i++ {
		v |= vli.TestBit(u, startBit+i) << uint(i)
	}
	return v
}

// constantTimeSelectG1 scans every table entry and ORs in the one whose
// index matches idx via a branch-free mask, so the access pattern is
// identical regardless of idx's value.
func constantTimeSelectG1(table []bn254.G1Affine, idx uint32) bn254.G1Affine {
	var out bn254.G1Affine
	out.X.SetZero()
	out.Y.SetZero()
	for i, entry := range table {
		mask := maskEq(uint32(i), idx)
		condAssignFq(&out.X, &entry.X, mask)
		condAssignFq(&out.Y, &entry.Y, mask)
	}
	return out
}

func maskEq(a, b uint32) uint64 {
	// Branch-free equality mask: diff is zero iff a == b; subtle.ConstantTimeEq
	// only does 32-bit comparisons, which is exactly what's needed here.
	return uint64(0) - uint64(subtle.ConstantTimeEq(int32(a), int32(b)))
}

// condAssignFq blends dst := mask!=0 ? src : dst at the byte level so the
// write pattern never depends on which table entry matched.
func condAssignFq(dst, src *field.Fq, mask uint64) {
	byteMask := byte(mask)
	dstBytes := dst.Bytes()
	srcBytes := src.Bytes()
	var blended [field.FqSize]byte
	for i := range blended {
		blended[i] = (srcBytes[i] & byteMask) | (dstBytes[i] &^ byteMask)
	}
	dst.SetBytesCanonical(blended[:])
}

// HashToCurveG1 is the try-and-increment hash-to-curve spec.md §4.C
// describes: compute x = H(counter || msg), test y^2 = x^3+b for a
// quadratic residue, increment counter on failure. G1's cofactor is 1 on
// BN curves, so no cofactor clearing is required once a valid (x, y) is
// found.
func HashToCurveG1(hasher func(counter byte, msg []byte) []byte, msg []byte) (G1, error) {
	for counter := 0; counter < 256; counter++ {
		digest := hasher(byte(counter), msg)
		x, err := field.HashToFq(digest)
		if err != nil {
			return G1{}, err
		}
		var y, rhs field.Fq
		rhs.Square(&x).Mul(&rhs, &x) // x^3
		rhs.Add(&rhs, &g1B)
		root := new(field.Fq).Sqrt(&rhs)
		if root == nil {
			continue
		}
		y = *root
		var p bn254.G1Affine
		p.X, p.Y = x, y
		if !p.IsOnCurve() || !p.IsInSubGroup() {
			continue
		}
		return G1{p}, nil
	}
	return G1{}, errHashToCurveExhausted
}

// HashToCurveG2 is G2's analogue. G2's twist has a large cofactor, so the
// candidate point must be explicitly cleared into the prime-order
// subgroup by multiplying by that cofactor (spec.md §4.C).
func HashToCurveG2(hasher func(counter byte, msg []byte) []byte, msg []byte) (G2, error) {
	for counter := 0; counter < 256; counter++ {
		digest := hasher(byte(counter), msg)
		if len(digest) < 2*(field.FqSize+16) {
			return G2{}, errHashToCurveExhausted
		}
		x0, err := field.HashToFq(digest[:len(digest)/2])
		if err != nil {
			return G2{}, err
		}
		x1, err := field.HashToFq(digest[len(digest)/2:])
		if err != nil {
			return G2{}, err
		}
		var x field.Fq2
		x.A0, x.A1 = x0, x1

		var rhs field.Fq2
		rhs.Square(&x).Mul(&rhs, &x) // x^3
		rhs.Add(&rhs, &g2B)

		var y field.Fq2
		root := new(field.Fq2).Sqrt(&rhs)
		if root == nil {
			continue
		}
		y = *root

		var p bn254.G2Affine
		p.X, p.Y = x, y
		if !p.IsOnCurve() {
			continue
		}
		var jac bn254.G2Jac
		jac.FromAffine(&p)
		var cleared bn254.G2Jac
		cleared.ScalarMultiplication(&jac, g2Cofactor)
		var affine bn254.G2Affine
		affine.FromJacobian(&cleared)
		if affine.X.IsZero() && affine.Y.IsZero() {
			continue
		}
		if !affine.IsInSubGroup() {
			continue
		}
		return G2{affine}, nil
	}
	return G2{}, errHashToCurveExhausted
}

var (
	g1B field.Fq
	g2B field.Fq2

	// g2Cofactor is the standard BN254 G2 (twist) cofactor, used only to
	// clear an arbitrary try-and-increment candidate into the
	// prime-order subgroup.
	g2Cofactor = mustBigIntHex("30644e72e131a029b85045b68181585e06ceecda572a2489345f2299c0f9fa8d")
)

func init() {
	g1B.SetUint64(3)
	// BN254's twist coefficient b' = b / xi in the tower's
	// representation; gnark-crypto's G2 curve equation constant.
	g2B = bn254.TwistB
}

func mustBigIntHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("curve: bad hex constant")
	}
	return n
}

var (
	errIdentity             = wireErr("curve: cannot encode the identity point")
	errNotOnCurve           = wireErr("curve: point not on curve")
	errNotInSubgroup        = wireErr("curve: point not in prime-order subgroup")
	errHashToCurveExhausted = wireErr("curve: hash-to-curve exhausted counter space")
)

type wireErr string

func (e wireErr) Error() string { return string(e) }

func errWrongLen(want, got int) error {
	return fmt.Errorf("curve: wrong-length buffer: want %d, got %d", want, got)
}
