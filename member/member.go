// Package member implements spec.md §4.I: the member's private key and
// credential, and the seven-step basic-signature algorithm the sign
// operation runs for every message.
//
// Issuer-side join/credential issuance is out of scope (spec.md
// Non-goals) — a Context is constructed already holding a valid
// (A, x, f) credential, exactly as the source's member_init_impl
// assumes a credential was provisioned out of band.
package member

import (
	"github.com/epidcore/epid2/groupkey"
	"github.com/epidcore/epid2/hashing"
	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/internal/pairing"
	"github.com/epidcore/epid2/revocation"
	"github.com/epidcore/epid2/rng"
	"github.com/epidcore/epid2/status"
	"github.com/epidcore/epid2/wire"
)

// Credential is the (A, x, f) triple the issuer grants a member:
// A = [1/(x+f)]*(g1 + [f]*h1 + h2), x and f the member's two secrets.
type Credential struct {
	A curve.G1
	X field.Fp
	F field.Fp
}

// CompressedPrivKey is the shorter provisioning form EPID 2.0 allows
// (spec.md §6): gid, A, x, and an issuer-chosen seed the member expands
// into f locally rather than receiving f directly over the wire.
type CompressedPrivKey struct {
	Gid  wire.GID
	A    curve.G1
	X    field.Fp
	Seed [32]byte
}

// ExpandCompressedPrivKey derives f from the provisioning seed the same
// way the issuer derived it, recovered from the source's compressed-key
// expansion path: f = HashToFp(seed || gid), a domain-separated
// hash-to-scalar rather than a raw scalar transfer.
func ExpandCompressedPrivKey(c CompressedPrivKey, alg hashing.Algorithm) (Credential, error) {
	digest, err := hashing.WideDigest(alg, field.FpSize+16, c.Seed[:], c.Gid[:])
	if err != nil {
		return Credential{}, status.Wrap(status.MathErr, err)
	}
	f, err := field.HashToFp(digest)
	if err != nil {
		return Credential{}, status.Wrap(status.MathErr, err)
	}
	return Credential{A: c.A, X: c.X, F: f}, nil
}

// Context is a member's signing context: a group public key, a bound
// credential, and the injected entropy source every sign call consumes
// (spec.md §4.I, §5 — the core blocks on nothing of its own).
type Context struct {
	pubKey     *groupkey.PubKey
	credential Credential
	source     rng.Source

	cache pairing.MemberCache
	ready bool
}

// New binds a group public key and credential into a signing context.
// The pub key must already have SetHashAlg applied.
func New(pubKey *groupkey.PubKey, cred Credential, source rng.Source) *Context {
	return &Context{pubKey: pubKey, credential: cred, source: source}
}

// Startup finishes member-side setup: it derives the pairing cache
// ea2 = e(A, g2) that every sign call reuses. This mirrors the source's
// split-key startup ordering (original_source/epid/member/split/src/
// startup.c): the credential and group key are fully decoded and bound
// first, and only then does the member derive anything that depends on
// both.
func (c *Context) Startup() error {
	pre, err := c.pubKey.Precomputed()
	if err != nil {
		return err
	}
	_, g2 := curve.Generators()
	cache, err := pre.WithCredential(g2, c.credential.A)
	if err != nil {
		return status.Wrap(status.MathErr, err)
	}
	c.cache = cache
	c.ready = true
	return nil
}

// Sign produces a full Signature over msg under the given SigRL. If
// bsn is non-empty the signature is name-based (B is deterministically
// derived from bsn, making two signatures against the same bsn
// linkable); if bsn is empty, B is drawn at random (spec.md §4.I).
func (c *Context) Sign(msg, bsn []byte, sigRL *wire.SigRL) (wire.Signature, error) {
	if !c.ready {
		return wire.Signature{}, status.New(status.OutOfSequenceError)
	}

	b, err := c.chooseB(bsn)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}
	k := b.ScalarMul(field.FpToBigInt(&c.credential.F))

	a, err := randomFp(c.source)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}
	rx, err := randomFp(c.source)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}
	rf, err := randomFp(c.source)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}
	ra, err := randomFp(c.source)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}
	rb, err := randomFp(c.source)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}

	// T = A * [a]*h2Effective, binding the credential without revealing A.
	h2 := c.pubKey.H2
	t := combineG1(c.credential.A, h2.ScalarMul(field.FpToBigInt(&a)))

	// R1 = [rx]*B + [rf]*h2Effective — the Σ-protocol commitment for the
	// (x, f) relation K = [f]*B, blinded by rx standing in for -x*a.
	r1 := combineG1(b.ScalarMul(field.FpToBigInt(&rx)), h2.ScalarMul(field.FpToBigInt(&rf)))

	// R2 lives in GT: e(T,g2)^rx * e(h1Effective,g2)^(-rf) * e(h2Effective,g2)^(-ra) * e(h2Effective,w)^(-rb)
	r2, err := c.computeR2(t, rx, rf, ra, rb)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}

	transcript, err := challengeTranscript(c.pubKey.Gid, b, k, t, r1, r2, msg, bsn)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}
	digest, err := hashing.WideDigest(c.pubKey.HashAlg(), field.FpSize+16, transcript)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}
	chal, err := field.HashToFp(digest)
	if err != nil {
		return wire.Signature{}, status.Wrap(status.MathErr, err)
	}

	sx := fpCombine(rx, chal, c.credential.X)
	sf := fpCombine(rf, chal, c.credential.F)
	sa := fpCombine(ra, chal, a)
	sb := fpCombine(rb, chal, mulFp(a, c.credential.X))

	sigma0 := wire.BasicSignature{B: b, K: k, T: t, C: chal, Sx: sx, Sf: sf, Sa: sa, Sb: sb}

	var proofs []wire.NonRevokedProof
	var rlVer uint32
	if sigRL != nil {
		rlVer = sigRL.RlVer
		for _, entry := range sigRL.Entries {
			if entry.K.Eq(&k) {
				return wire.Signature{}, status.New(status.SigRevokedInSigRl)
			}
			proof, err := revocation.GenerateNRP(c.source, c.pubKey.HashAlg(), &c.credential.F, c.pubKey.Gid, sigma0, entry, msg, bsn)
			if err != nil {
				return wire.Signature{}, err
			}
			proofs = append(proofs, proof)
		}
	}

	return wire.Signature{Sigma0: sigma0, RlVer: rlVer, SigmaI: proofs}, nil
}

// chooseB derives a deterministic name-based base point from bsn, or
// draws a random one when bsn is empty (spec.md §4.I step 1).
func (c *Context) chooseB(bsn []byte) (curve.G1, error) {
	if len(bsn) == 0 {
		buf := make([]byte, field.FqSize+16)
		if err := c.source.Read(buf); err != nil {
			return curve.G1{}, err
		}
		hasher := func(counter byte, msg []byte) []byte {
			d, _ := hashing.WideDigest(c.pubKey.HashAlg(), field.FqSize+16, []byte{counter}, msg)
			return d
		}
		return curve.HashToCurveG1(hasher, buf)
	}
	hasher := func(counter byte, msg []byte) []byte {
		d, _ := hashing.WideDigest(c.pubKey.HashAlg(), field.FqSize+16, []byte{counter}, msg)
		return d
	}
	return curve.HashToCurveG1(hasher, bsn)
}

func (c *Context) computeR2(t curve.G1, rx, rf, ra, rb field.Fp) (field.Fq12, error) {
	_, g2 := curve.Generators()
	eTg2, err := pairing.Pair(t, g2)
	if err != nil {
		return field.Fq12{}, err
	}

	var term1, term2, term3, term4 field.Fq12
	term1.Exp(eTg2, field.FpToBigInt(&rx))

	negRf := negateFp(rf)
	term2.Exp(field.Fq12(c.cache.E22), field.FpToBigInt(&negRf))

	negRa := negateFp(ra)
	term3.Exp(field.Fq12(c.cache.Eh2), field.FpToBigInt(&negRa))

	negRb := negateFp(rb)
	term4.Exp(field.Fq12(c.cache.E2W), field.FpToBigInt(&negRb))

	var out field.Fq12
	out.Mul(&term1, &term2).Mul(&out, &term3).Mul(&out, &term4)
	return out, nil
}

func challengeTranscript(gid wire.GID, b, k, t curve.G1, r1 curve.G1, r2 field.Fq12, msg, bsn []byte) ([]byte, error) {
	var out []byte
	out = append(out, gid[:]...)
	for _, p := range []*curve.G1{&b, &k, &t, &r1} {
		enc, err := p.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	out = append(out, r2.Bytes()...)
	out = append(out, msg...)
	out = append(out, bsn...)
	return out, nil
}

func combineG1(a, b curve.G1) curve.G1 {
	var out curve.G1
	out.Add(&a.G1Affine, &b.G1Affine)
	return out
}

// fpCombine computes s = r + chal*secret (mod p), the Σ-protocol
// response form shared by sx, sf, sa, sb.
func fpCombine(r, chal, secret field.Fp) field.Fp {
	var prod, out field.Fp
	prod.Mul(&chal, &secret)
	out.Add(&r, &prod)
	return out
}

func mulFp(a, b field.Fp) field.Fp {
	var out field.Fp
	out.Mul(&a, &b)
	return out
}

func negateFp(a field.Fp) field.Fp {
	var out field.Fp
	out.Neg(&a)
	return out
}

func randomFp(source rng.Source) (field.Fp, error) {
	buf := make([]byte, field.FpSize+16)
	if err := source.Read(buf); err != nil {
		var zero field.Fp
		return zero, err
	}
	return field.HashToFp(buf)
}
