// Package revocation implements spec.md §4.K: the four revocation-list
// checks a verifier runs against an incoming signature (group, private
// key, signature, and verifier-local lists), plus the non-revoked-proof
// Σ-protocol a member runs once per SigRL entry when signing.
//
// PrivRL checks are a single scalar multiplication and compare per list
// entry, and VerifierRL checks a plain compare per entry — no
// transcript, no challenge. SigRL entries
// are different: an entry only reveals (B_i, K_i) for a signature this
// member never produced, so proving non-revocation needs the small
// Σ-protocol below rather than a direct compare.
package revocation

import (
	"math/big"

	"github.com/epidcore/epid2/hashing"
	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/rng"
	"github.com/epidcore/epid2/status"
	"github.com/epidcore/epid2/wire"
)

// InPrivRL reports whether (B, K) from a signature's BasicSignature
// corresponds to a revoked member secret: K == [f_i]*B for some f_i in
// rl (spec.md §4.K, §4.J verify step "check against PrivRL").
func InPrivRL(rl wire.PrivRL, b, k curve.G1) bool {
	for i := range rl.F {
		fi := field.FpToBigInt(&rl.F[i])
		candidate := b.ScalarMul(fi)
		if candidate.Eq(&k) {
			return true
		}
	}
	return false
}

// InGroupRL reports whether gid is in the group revocation list.
func InGroupRL(rl wire.GroupRL, gid wire.GID) bool {
	return rl.Contains(gid)
}

// InVerifierRL reports whether K already appears in the verifier's
// local blacklist.
func InVerifierRL(rl wire.VerifierRL, k curve.G1) bool {
	return rl.Contains(k)
}

// nrpTranscript builds the challenge-hash input shared by GenerateNRP
// and VerifyNRP: gid || B || K || T || B_i || K_i || T' || msg || bsn.
func nrpTranscript(gid wire.GID, sig wire.BasicSignature, entry wire.SigRLEntry, tPrime curve.G1, msg, bsn []byte) ([]byte, error) {
	parts := [][]byte{gid[:]}
	for _, p := range []*curve.G1{&sig.B, &sig.K, &sig.T, &entry.B, &entry.K, &tPrime} {
		b, err := p.Encode()
		if err != nil {
			return nil, err
		}
		parts = append(parts, b)
	}
	parts = append(parts, msg, bsn)
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// GenerateNRP produces the non-revoked proof binding this signature's
// (B, K) to one SigRL entry (B_i, K_i), per spec.md §4.I step 6:
//
//	choose random r in [1, p)
//	T'  = [r]*B_i
//	c'  = Hash(gid || B || K || T || B_i || K_i || T' || msg || bsn)
//	s   = r + c'*f  (mod p)
//
// source is the injected randomness capability (spec.md treats rng as a
// black box this module never implements itself).
func GenerateNRP(source rng.Source, alg hashing.Algorithm, f *field.Fp, gid wire.GID, sig wire.BasicSignature, entry wire.SigRLEntry, msg, bsn []byte) (wire.NonRevokedProof, error) {
	r, err := randomFp(source)
	if err != nil {
		return wire.NonRevokedProof{}, status.Wrap(status.MathErr, err)
	}
	tPrime := entry.B.ScalarMul(field.FpToBigInt(&r))

	transcript, err := nrpTranscript(gid, sig, entry, tPrime, msg, bsn)
	if err != nil {
		return wire.NonRevokedProof{}, status.Wrap(status.MathErr, err)
	}
	digest, err := hashing.WideDigest(alg, field.FpSize+16, transcript)
	if err != nil {
		return wire.NonRevokedProof{}, status.Wrap(status.MathErr, err)
	}
	cPrime, err := field.HashToFp(digest)
	if err != nil {
		return wire.NonRevokedProof{}, status.Wrap(status.MathErr, err)
	}

	var s field.Fp
	s.Mul(&cPrime, f)
	s.Add(&s, &r)

	return wire.NonRevokedProof{TPrime: tPrime, CPrime: cPrime, S: s}, nil
}

// VerifyNRP checks one non-revoked proof against its SigRL entry:
//
//	T' =?= [s]*B_i - [c']*K_i
//
// A verifier recomputes c' itself from the same transcript and rejects
// any proof whose embedded c' doesn't match, before checking the
// algebraic relation — otherwise a forger could pick (T', s) first and
// solve for a consistent c' (spec.md §4.K).
func VerifyNRP(alg hashing.Algorithm, gid wire.GID, sig wire.BasicSignature, entry wire.SigRLEntry, proof wire.NonRevokedProof, msg, bsn []byte) (bool, error) {
	transcript, err := nrpTranscript(gid, sig, entry, proof.TPrime, msg, bsn)
	if err != nil {
		return false, err
	}
	digest, err := hashing.WideDigest(alg, field.FpSize+16, transcript)
	if err != nil {
		return false, err
	}
	expectedC, err := field.HashToFp(digest)
	if err != nil {
		return false, err
	}
	if !expectedC.Equal(&proof.CPrime) {
		return false, nil
	}

	lhs := entry.B.ScalarMul(field.FpToBigInt(&proof.S))
	neg := entry.K.ScalarMul(negateMod(field.FpToBigInt(&proof.CPrime)))
	rhs := combine(lhs, neg)
	return rhs.Eq(&proof.TPrime), nil
}

func combine(a, b curve.G1) curve.G1 {
	var out curve.G1
	out.Add(&a.G1Affine, &b.G1Affine)
	return out
}

func negateMod(k *big.Int) *big.Int {
	n := new(big.Int).Neg(k)
	n.Mod(n, field.FpModulusBig())
	return n
}

// randomFp draws a uniform nonzero scalar from source. EPID's rng is an
// injected capability (spec.md Non-goals): this just wraps whatever
// bytes it returns into a reduced field element.
func randomFp(source rng.Source) (field.Fp, error) {
	var buf [field.FpSize + 16]byte
	for {
		if err := source.Read(buf[:]); err != nil {
			var zero field.Fp
			return zero, err
		}
		r, err := field.HashToFp(buf[:])
		if err != nil || !r.IsZero() {
			return r, err
		}
	}
}
