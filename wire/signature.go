package wire

import (
	"encoding/binary"

	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/status"
)

// BasicSignature is (B, K, T, c, sx, sf, sa, sb) — spec.md §3.
type BasicSignature struct {
	B, K, T           curve.G1
	C, Sx, Sf, Sa, Sb field.Fp
}

// BasicSignatureSize is the fixed encoded size: three G1 points plus
// five 256-bit scalars.
const BasicSignatureSize = 3*curve.G1Size + 5*field.FpSize

func (s BasicSignature) Encode() ([]byte, error) {
	out := make([]byte, 0, BasicSignatureSize)
	for _, p := range []*curve.G1{&s.B, &s.K, &s.T} {
		b, err := p.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	for _, f := range []*field.Fp{&s.C, &s.Sx, &s.Sf, &s.Sa, &s.Sb} {
		out = append(out, field.FpBytes(f)...)
	}
	return out, nil
}

func DecodeBasicSignature(buf []byte) (BasicSignature, error) {
	var s BasicSignature
	if len(buf) != BasicSignatureSize {
		return s, status.New(status.SigInvalid)
	}
	off := 0
	readG1 := func() (curve.G1, error) {
		p, err := curve.DecodeG1(buf[off : off+curve.G1Size])
		off += curve.G1Size
		return p, err
	}
	readFp := func() (field.Fp, error) {
		f, err := field.FpFromBytes(buf[off : off+field.FpSize])
		off += field.FpSize
		return f, err
	}

	var err error
	if s.B, err = readG1(); err != nil {
		return s, status.Wrap(status.SigInvalid, err)
	}
	if s.K, err = readG1(); err != nil {
		return s, status.Wrap(status.SigInvalid, err)
	}
	if s.T, err = readG1(); err != nil {
		return s, status.Wrap(status.SigInvalid, err)
	}
	if s.C, err = readFp(); err != nil {
		return s, status.Wrap(status.SigInvalid, err)
	}
	if s.Sx, err = readFp(); err != nil {
		return s, status.Wrap(status.SigInvalid, err)
	}
	if s.Sf, err = readFp(); err != nil {
		return s, status.Wrap(status.SigInvalid, err)
	}
	if s.Sa, err = readFp(); err != nil {
		return s, status.Wrap(status.SigInvalid, err)
	}
	if s.Sb, err = readFp(); err != nil {
		return s, status.Wrap(status.SigInvalid, err)
	}
	return s, nil
}

// NonRevokedProof ties a BasicSignature to one SigRL entry (spec.md
// §3/§4.K): (T', c', s).
type NonRevokedProof struct {
	TPrime curve.G1
	CPrime field.Fp
	S      field.Fp
}

const NonRevokedProofSize = curve.G1Size + 2*field.FpSize

func (p NonRevokedProof) Encode() ([]byte, error) {
	tb, err := p.TPrime.Encode()
	if err != nil {
		return nil, err
	}
	out := append([]byte{}, tb...)
	out = append(out, field.FpBytes(&p.CPrime)...)
	out = append(out, field.FpBytes(&p.S)...)
	return out, nil
}

func DecodeNonRevokedProof(buf []byte) (NonRevokedProof, error) {
	var p NonRevokedProof
	if len(buf) != NonRevokedProofSize {
		return p, status.New(status.SigInvalid)
	}
	tp, err := curve.DecodeG1(buf[:curve.G1Size])
	if err != nil {
		return p, status.Wrap(status.SigInvalid, err)
	}
	cp, err := field.FpFromBytes(buf[curve.G1Size : curve.G1Size+field.FpSize])
	if err != nil {
		return p, status.Wrap(status.SigInvalid, err)
	}
	s, err := field.FpFromBytes(buf[curve.G1Size+field.FpSize:])
	if err != nil {
		return p, status.Wrap(status.SigInvalid, err)
	}
	return NonRevokedProof{TPrime: tp, CPrime: cp, S: s}, nil
}

// Signature is sigma0 || rl_ver || n2 || n2 copies of NonRevokedProof
// (spec.md §3/§6).
type Signature struct {
	Sigma0 BasicSignature
	RlVer  uint32
	SigmaI []NonRevokedProof
}

func (s Signature) Encode() ([]byte, error) {
	sig0, err := s.Sigma0.Encode()
	if err != nil {
		return nil, err
	}
	out := append([]byte{}, sig0...)
	out = append(out, encodeUint32(s.RlVer)...)
	out = append(out, encodeUint32(uint32(len(s.SigmaI)))...)
	for _, nrp := range s.SigmaI {
		b, err := nrp.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// DecodeSignature parses a full Signature, validating that n2 times
// NonRevokedProofSize matches the remaining buffer exactly (spec.md
// §4.E).
func DecodeSignature(buf []byte) (Signature, error) {
	var s Signature
	if len(buf) < BasicSignatureSize+8 {
		return s, status.New(status.SigInvalid)
	}
	sigma0, err := DecodeBasicSignature(buf[:BasicSignatureSize])
	if err != nil {
		return s, err
	}
	rest := buf[BasicSignatureSize:]

	rlVer := binary.BigEndian.Uint32(rest[:4])
	n2 := binary.BigEndian.Uint32(rest[4:8])
	rest = rest[8:]

	if err := requireLen(rest, int(n2), NonRevokedProofSize); err != nil {
		return s, status.New(status.SigInvalid)
	}

	nrps := make([]NonRevokedProof, n2)
	for i := range nrps {
		nrp, err := DecodeNonRevokedProof(rest[:NonRevokedProofSize])
		if err != nil {
			return s, err
		}
		nrps[i] = nrp
		rest = rest[NonRevokedProofSize:]
	}

	return Signature{Sigma0: sigma0, RlVer: rlVer, SigmaI: nrps}, nil
}
