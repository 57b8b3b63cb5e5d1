// Package verifier implements spec.md §4.J: the verifier context and
// the ordered signature-verification pipeline — group_rl, BasicSignature
// integrity, priv_rl, sig_rl non-revoked proofs, verifier_rl — plus the
// local blacklist and signature-linking helpers spec.md §4.K names.
package verifier

import (
	"math/big"

	"github.com/epidcore/epid2/groupkey"
	"github.com/epidcore/epid2/hashing"
	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/internal/pairing"
	"github.com/epidcore/epid2/revocation"
	"github.com/epidcore/epid2/status"
	"github.com/epidcore/epid2/wire"
)

// Context holds a group public key and the (optional, independently
// updatable) revocation lists a verifier checks an incoming signature
// against, in the fixed order spec.md §4.J mandates.
type Context struct {
	pubKey   *groupkey.PubKey
	basename []byte

	privRL     *wire.PrivRL
	sigRL      *wire.SigRL
	groupRL    *wire.GroupRL
	verifierRL wire.VerifierRL
}

// New binds a group public key. The key must already have SetHashAlg
// applied.
func New(pubKey *groupkey.PubKey) *Context {
	return &Context{pubKey: pubKey}
}

// SetBasename fixes this context to name-based signatures against bsn;
// an empty basename accepts random-base signatures instead (spec.md
// §4.I/§4.J).
func (c *Context) SetBasename(bsn []byte) { c.basename = append([]byte{}, bsn...) }

// SetPrivRl installs a private-key revocation list, after checking it
// names this context's group.
func (c *Context) SetPrivRl(rl wire.PrivRL) error {
	if rl.Gid != c.pubKey.Gid {
		return status.New(status.KeyNotInGroupErr)
	}
	c.privRL = &rl
	return nil
}

// SetSigRl installs a signature-based revocation list.
func (c *Context) SetSigRl(rl wire.SigRL) error {
	if rl.Gid != c.pubKey.Gid {
		return status.New(status.KeyNotInGroupErr)
	}
	c.sigRL = &rl
	return nil
}

// SetGroupRl installs the group revocation list (not gid-scoped: it
// lists every revoked group).
func (c *Context) SetGroupRl(rl wire.GroupRL) {
	c.groupRL = &rl
}

// SetVerifierRl installs (or replaces) the local blacklist.
func (c *Context) SetVerifierRl(rl wire.VerifierRL) error {
	if rl.Gid != c.pubKey.Gid {
		return status.New(status.KeyNotInGroupErr)
	}
	c.verifierRL = rl
	return nil
}

// VerifierRl returns the current local blacklist, e.g. to persist it
// between process runs.
func (c *Context) VerifierRl() wire.VerifierRL { return c.verifierRL }

// Verify checks sig over msg against every installed list, in the
// fixed order spec.md §4.J requires: group_rl, BasicSignature algebraic
// integrity, priv_rl, sig_rl non-revoked proofs, verifier_rl. The first
// failing check determines the returned status code.
func (c *Context) Verify(sig wire.Signature, msg []byte) error {
	if c.groupRL != nil && revocation.InGroupRL(*c.groupRL, c.pubKey.Gid) {
		return status.New(status.SigRevokedInGroupRl)
	}

	ok, err := c.verifyBasicSignature(sig.Sigma0, msg)
	if err != nil {
		return status.Wrap(status.MathErr, err)
	}
	if !ok {
		return status.New(status.SigInvalid)
	}

	if c.privRL != nil && revocation.InPrivRL(*c.privRL, sig.Sigma0.B, sig.Sigma0.K) {
		return status.New(status.SigRevokedInPrivRl)
	}

	if c.sigRL != nil {
		if len(sig.SigmaI) != len(c.sigRL.Entries) {
			return status.New(status.SigInvalid)
		}
		for i, entry := range c.sigRL.Entries {
			valid, err := revocation.VerifyNRP(c.pubKey.HashAlg(), c.pubKey.Gid, sig.Sigma0, entry, sig.SigmaI[i], msg, c.basename)
			if err != nil {
				return status.Wrap(status.MathErr, err)
			}
			if !valid {
				return status.New(status.SigRevokedInSigRl)
			}
		}
	}

	if revocation.InVerifierRL(c.verifierRL, sig.Sigma0.K) {
		return status.New(status.SigRevokedInVerifierRl)
	}

	return nil
}

// verifyBasicSignature reconstructs R1', R2' and the challenge from
// (B, K, T, sx, sf, sa, sb, c) and compares against the embedded c
// (spec.md §4.I/§4.J verification relation).
func (c *Context) verifyBasicSignature(s wire.BasicSignature, msg []byte) (bool, error) {
	if s.B.IsIdentity() || s.K.IsIdentity() || s.T.IsIdentity() {
		return false, nil
	}

	pre, err := c.pubKey.Precomputed()
	if err != nil {
		return false, err
	}

	// R1' = [sx]*B + [sf]*h2 - [c]*K
	r1 := addG1(
		s.B.ScalarMul(field.FpToBigInt(&s.Sx)),
		addG1(
			c.pubKey.H2.ScalarMul(field.FpToBigInt(&s.Sf)),
			s.K.ScalarMul(negBig(field.FpToBigInt(&s.C))),
		),
	)

	_, g2 := curve.Generators()
	eTg2, err := pairing.Pair(s.T, g2)
	if err != nil {
		return false, err
	}
	eTw, err := pairing.Pair(s.T, c.pubKey.W)
	if err != nil {
		return false, err
	}

	var term1, term2, term3, term4, corr field.Fq12
	term1.Exp(eTg2, field.FpToBigInt(&s.Sx))
	term2.Exp(field.Fq12(pre.E22), negBig(field.FpToBigInt(&s.Sf)))
	term3.Exp(field.Fq12(pre.Eh2), negBig(field.FpToBigInt(&s.Sa)))
	term4.Exp(field.Fq12(pre.E2W), negBig(field.FpToBigInt(&s.Sb)))

	var eTwInv field.Fq12
	eTwInv.Inverse(&eTw)
	e12 := pre.E12
	var base field.Fq12
	base.Mul(&e12, &eTwInv)
	corr.Exp(base, field.FpToBigInt(&s.C))

	var r2 field.Fq12
	r2.Mul(&term1, &term2).Mul(&r2, &term3).Mul(&r2, &term4).Mul(&r2, &corr)

	transcript, err := challengeTranscript(c.pubKey.Gid, s.B, s.K, s.T, r1, r2, msg, c.basename)
	if err != nil {
		return false, err
	}
	digest, err := hashing.WideDigest(c.pubKey.HashAlg(), field.FpSize+16, transcript)
	if err != nil {
		return false, err
	}
	expected, err := field.HashToFp(digest)
	if err != nil {
		return false, err
	}
	return expected.Equal(&s.C), nil
}

// BlacklistSig runs Verify on sig over msg and, only if it reports
// valid, appends sig's K to the local verifier revocation list,
// advancing rl_ver — spec.md §4.J's blacklist_sig operation. A sig that
// fails Verify (malformed, or already revoked by any other list) is
// left out of verifier_rl and that same status is returned unchanged,
// so a caller can't blacklist a signature this context wouldn't accept
// in the first place.
func (c *Context) BlacklistSig(sig wire.Signature, msg []byte) error {
	if err := c.Verify(sig, msg); err != nil {
		return err
	}
	c.verifierRL = c.verifierRL.Append(sig.Sigma0.K)
	return nil
}

// AreSigsLinked reports whether two name-based signatures came from the
// same member against the same basename: B1 == B2 and K1 == K2 (spec.md
// §4.K, "Signature Linking"). Per the source's null/short-buffer
// handling (recovered from sigs_linked.c, which treats an undersized
// signature buffer as "not linked" rather than an error), a signature
// whose B or K fails to encode is likewise treated as not linked rather
// than propagating an error — this is a best-effort diagnostic, not a
// security check.
func AreSigsLinked(sig1, sig2 wire.Signature) bool {
	if _, err := sig1.Sigma0.B.Encode(); err != nil {
		return false
	}
	if _, err := sig2.Sigma0.B.Encode(); err != nil {
		return false
	}
	if _, err := sig1.Sigma0.K.Encode(); err != nil {
		return false
	}
	if _, err := sig2.Sigma0.K.Encode(); err != nil {
		return false
	}
	return sig1.Sigma0.B.Eq(&sig2.Sigma0.B) && sig1.Sigma0.K.Eq(&sig2.Sigma0.K)
}

func challengeTranscript(gid wire.GID, b, k, t, r1 curve.G1, r2 field.Fq12, msg, bsn []byte) ([]byte, error) {
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

func addG1(a, b curve.G1) curve.G1 {
	var out curve.G1
	out.Add(&a.G1Affine, &b.G1Affine)
	return out
}

func negBig(k *big.Int) *big.Int {
	n := new(big.Int).Neg(k)
	n.Mod(n, field.FpModulusBig())
	return n
}
