package wire

import (
	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/status"
)

// EcdsaSignatureSize is the fixed size of the opaque ECDSA-over-P-256
// trailer on CA-signed files (spec.md §4.E/§6). The core never
// interprets these bytes itself — it asks an injected CAVerifier to
// accept or reject them.
const EcdsaSignatureSize = 64

// CAVerifier is the injected "authenticate this buffer" capability
// spec.md §1 treats as a black box: issuing-CA signature verification of
// group-public-key and revocation-list files is out of this module's
// scope.
type CAVerifier interface {
	Verify(signedData, signature []byte) error
}

// GroupPubKey is the decoded (gid, h1, h2, w) tuple (spec.md §3).
type GroupPubKey struct {
	Gid GID
	H1  curve.G1
	H2  curve.G1
	W   curve.G2
}

// GroupPubKeyFile is the full file layout: EpidFileHeader || GroupPubKey
// || EcdsaSignature(64).
type GroupPubKeyFile struct {
	Header    Header
	Key       GroupPubKey
	Signature [EcdsaSignatureSize]byte
}

func (f GroupPubKeyFile) Encode() []byte {
	out := f.Header.Encode()
	out = append(out, f.Key.Gid[:]...)
	h1b, _ := f.Key.H1.Encode()
	h2b, _ := f.Key.H2.Encode()
	wb, _ := f.Key.W.Encode()
	out = append(out, h1b...)
	out = append(out, h2b...)
	out = append(out, wb...)
	out = append(out, f.Signature[:]...)
	return out
}

// DecodeGroupPubKeyFile parses a group-public-key file and, if ca is
// non-nil, verifies the trailing ECDSA signature over everything that
// precedes it before accepting the key (spec.md §4.E).
func DecodeGroupPubKeyFile(buf []byte, ca CAVerifier) (GroupPubKeyFile, error) {
	var f GroupPubKeyFile
	h, rest, err := DecodeHeader(buf)
	if err != nil {
		return f, err
	}
	if h.FileType != FileTypeGroupPubKey {
		return f, status.New(status.BadArgErr)
	}
	want := 16 + curve.G1Size*2 + curve.G2Size + EcdsaSignatureSize
	if len(rest) != want {
		return f, status.New(status.BadArgErr)
	}

	var gid GID
	copy(gid[:], rest[:16])
	rest = rest[16:]

	h1, err := curve.DecodeG1(rest[:curve.G1Size])
	if err != nil {
		return f, status.Wrap(status.BadArgErr, err)
	}
	rest = rest[curve.G1Size:]

	h2, err := curve.DecodeG1(rest[:curve.G1Size])
	if err != nil {
		return f, status.Wrap(status.BadArgErr, err)
	}
	rest = rest[curve.G1Size:]

	w, err := curve.DecodeG2(rest[:curve.G2Size])
	if err != nil {
		return f, status.Wrap(status.BadArgErr, err)
	}
	rest = rest[curve.G2Size:]

	var sig [EcdsaSignatureSize]byte
	copy(sig[:], rest)

	if ca != nil {
		signedData := buf[:len(buf)-EcdsaSignatureSize]
		if err := ca.Verify(signedData, sig[:]); err != nil {
			return f, status.Wrap(status.SigInvalid, err)
		}
	}

	f = GroupPubKeyFile{
		Header:    h,
		Key:       GroupPubKey{Gid: gid, H1: h1, H2: h2, W: w},
		Signature: sig,
	}
	return f, nil
}

// H1SerializedSize is the octet width of an encoded G1 point, exposed so
// callers can recover exactly the bytes split-key derivation hashes
// (spec.md §4.G requires hashing the *serialized* h1, not a
// re-encoding of the decoded point, though for a canonical decoder the
// two coincide).
const H1SerializedSize = curve.G1Size
