// Package groupkey implements spec.md §4.G: the group public key as
// members and verifiers actually use it, including split-key mode
// where h1' = hash_to_curve_g1(serialize(h1)) stands in for h1 so that
// a TPM-style signing device never has to be told h1 itself.
//
// The decode-then-derive order here follows the issuer's own startup
// sequence recovered from original_source/epid/member/split/src/startup.c:
// the group public key and member credential are decoded first, and
// only then is h1' derived and the pairing cache built against it —
// deriving h1' before the key is fully validated would let a malformed
// h1 slip through unnoticed.
package groupkey

import (
	"github.com/epidcore/epid2/hashing"
	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/pairing"
	"github.com/epidcore/epid2/status"
	"github.com/epidcore/epid2/wire"
)

// PubKey wraps the decoded (gid, h1, h2, w) tuple with the hash
// algorithm gid names and, once SetHashAlg has run, the precomputed
// pairings every member and verifier operation needs.
type PubKey struct {
	wire.GroupPubKey

	hashAlg hashing.Algorithm
	h1Split curve.G1 // hash_to_curve_g1(serialize(h1)), split-key mode only
	split   bool

	pre pairing.Precomputed
	ok  bool
}

// New decodes the hash algorithm out of gid and returns a PubKey ready
// for SetHashAlg.
func New(key wire.GroupPubKey) (*PubKey, error) {
	alg, err := algFromGid(key.Gid)
	if err != nil {
		return nil, err
	}
	return &PubKey{GroupPubKey: key, hashAlg: alg}, nil
}

func algFromGid(gid wire.GID) (hashing.Algorithm, error) {
	octets := gid.HashAlgOctets()
	alg := hashing.Algorithm(uint16(octets[0])<<8 | uint16(octets[1]))
	if !alg.Valid() {
		return 0, status.New(status.HashAlgorithmNotSupported)
	}
	return alg, nil
}

// HashAlg returns the algorithm gid names.
func (k *PubKey) HashAlg() hashing.Algorithm { return k.hashAlg }

// SetHashAlg derives h1' from the serialized h1 and builds the pairing
// cache e(g1,g2), e(h1,g2) [or e(h1',g2) under split mode], e(h2,g2),
// e(h2,w). It must run once, after the key and any credential bound to
// it have been fully decoded and validated (spec.md §4.G, §4.I).
func (k *PubKey) SetHashAlg(split bool) error {
	h1Bytes, err := k.H1.Encode()
	if err != nil {
		return err
	}

	hasher := func(counter byte, msg []byte) []byte {
		d, _ := hashing.WideDigest(k.hashAlg, 48, []byte{counter}, msg)
		return d
	}

	h1 := k.H1
	if split {
		h1Split, err := curve.HashToCurveG1(hasher, h1Bytes)
		if err != nil {
			return status.Wrap(status.MathErr, err)
		}
		k.h1Split = h1Split
		k.split = true
		h1 = h1Split
	}

	_, g2 := curve.Generators()
	pre, err := pairing.Precompute(g2, h1, k.H2, k.W)
	if err != nil {
		return status.Wrap(status.MathErr, err)
	}
	k.pre = pre
	k.ok = true
	return nil
}

// Precomputed returns the cached pairing set. SetHashAlg must have run.
func (k *PubKey) Precomputed() (pairing.Precomputed, error) {
	if !k.ok {
		return pairing.Precomputed{}, status.New(status.OutOfSequenceError)
	}
	return k.pre, nil
}

// H1Effective returns h1 (or h1' under split mode) — the point members
// and verifiers actually exponentiate and pair against.
func (k *PubKey) H1Effective() curve.G1 {
	if k.split {
		return k.h1Split
	}
	return k.H1
}

// Split reports whether this key is operating in split-key mode.
func (k *PubKey) Split() bool { return k.split }
