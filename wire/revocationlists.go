package wire

import (
	"encoding/binary"

	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/status"
)

// PrivRL is the private-key revocation list: gid, rl_ver, and n1 revoked
// member secrets (spec.md §3/§6).
type PrivRL struct {
	Gid   GID
	RlVer uint32
	F     []field.Fp
}

func (rl PrivRL) Encode() []byte {
	out := append([]byte{}, rl.Gid[:]...)
	out = append(out, encodeUint32(rl.RlVer)...)
	out = append(out, encodeUint32(uint32(len(rl.F)))...)
	for i := range rl.F {
		out = append(out, field.FpBytes(&rl.F[i])...)
	}
	return out
}

// DecodePrivRLBody parses the gid || rl_ver || n1 || n1*Fp body that
// follows the EpidFileHeader.
func DecodePrivRLBody(buf []byte) (PrivRL, error) {
	var rl PrivRL
	if len(buf) < 16+8 {
		return rl, status.New(status.BadArgErr)
	}
	copy(rl.Gid[:], buf[:16])
	rest := buf[16:]
	rl.RlVer = binary.BigEndian.Uint32(rest[:4])
	n1 := binary.BigEndian.Uint32(rest[4:8])
	rest = rest[8:]

	if err := requireLen(rest, int(n1), field.FpSize); err != nil {
		return rl, err
	}
	rl.F = make([]field.Fp, n1)
	for i := range rl.F {
		f, err := field.FpFromBytes(rest[:field.FpSize])
		if err != nil {
			return rl, status.Wrap(status.BadArgErr, err)
		}
		rl.F[i] = f
		rest = rest[field.FpSize:]
	}
	return rl, nil
}

// SigRLEntry is one (B, K) pair a SigRL revokes.
type SigRLEntry struct {
	B, K curve.G1
}

const sigRLEntrySize = 2 * curve.G1Size

// SigRL is gid, rl_ver, and n2 (B,K) entries.
type SigRL struct {
	Gid     GID
	RlVer   uint32
	Entries []SigRLEntry
}

func (rl SigRL) Encode() ([]byte, error) {
	out := append([]byte{}, rl.Gid[:]...)
	out = append(out, encodeUint32(rl.RlVer)...)
	out = append(out, encodeUint32(uint32(len(rl.Entries)))...)
	for _, e := range rl.Entries {
		bb, err := e.B.Encode()
		if err != nil {
			return nil, err
		}
		kb, err := e.K.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, bb...)
		out = append(out, kb...)
	}
	return out, nil
}

func DecodeSigRLBody(buf []byte) (SigRL, error) {
	var rl SigRL
	if len(buf) < 16+8 {
		return rl, status.New(status.BadArgErr)
	}
	copy(rl.Gid[:], buf[:16])
	rest := buf[16:]
	rl.RlVer = binary.BigEndian.Uint32(rest[:4])
	n2 := binary.BigEndian.Uint32(rest[4:8])
	rest = rest[8:]

	if err := requireLen(rest, int(n2), sigRLEntrySize); err != nil {
		return rl, err
	}
	rl.Entries = make([]SigRLEntry, n2)
	for i := range rl.Entries {
		b, err := curve.DecodeG1(rest[:curve.G1Size])
		if err != nil {
			return rl, status.Wrap(status.BadArgErr, err)
		}
		k, err := curve.DecodeG1(rest[curve.G1Size:sigRLEntrySize])
		if err != nil {
			return rl, status.Wrap(status.BadArgErr, err)
		}
		rl.Entries[i] = SigRLEntry{B: b, K: k}
		rest = rest[sigRLEntrySize:]
	}
	return rl, nil
}

// GroupRL is rl_ver and n3 revoked gids (group-wide revocation).
type GroupRL struct {
	RlVer uint32
	Gids  []GID
}

func (rl GroupRL) Encode() []byte {
	out := append([]byte{}, encodeUint32(rl.RlVer)...)
	out = append(out, encodeUint32(uint32(len(rl.Gids)))...)
	for _, g := range rl.Gids {
		out = append(out, g[:]...)
	}
	return out
}

func DecodeGroupRLBody(buf []byte) (GroupRL, error) {
	var rl GroupRL
	if len(buf) < 8 {
		return rl, status.New(status.BadArgErr)
	}
	rl.RlVer = binary.BigEndian.Uint32(buf[:4])
	n3 := binary.BigEndian.Uint32(buf[4:8])
	rest := buf[8:]

	if err := requireLen(rest, int(n3), 16); err != nil {
		return rl, err
	}
	rl.Gids = make([]GID, n3)
	for i := range rl.Gids {
		copy(rl.Gids[i][:], rest[:16])
		rest = rest[16:]
	}
	return rl, nil
}

// Contains reports whether gid appears in the group revocation list.
func (rl GroupRL) Contains(gid GID) bool {
	for _, g := range rl.Gids {
		if g == gid {
			return true
		}
	}
	return false
}

// VerifierRL is the verifier-local blacklist (spec.md §3/§4.J): gid,
// bsn_hash, rl_ver, and n4 revoked K values. It carries no CA signature
// — it is produced and consumed entirely locally.
type VerifierRL struct {
	Gid     GID
	BsnHash curve.G1
	RlVer   uint32
	K       []curve.G1
}

func (rl VerifierRL) Encode() ([]byte, error) {
	out := append([]byte{}, rl.Gid[:]...)
	bh, err := rl.BsnHash.Encode()
	if err != nil {
		return nil, err
	}
	out = append(out, bh...)
	out = append(out, encodeUint32(rl.RlVer)...)
	out = append(out, encodeUint32(uint32(len(rl.K)))...)
	for _, k := range rl.K {
		kb, err := k.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
	}
	return out, nil
}

func DecodeVerifierRL(buf []byte) (VerifierRL, error) {
	var rl VerifierRL
	if len(buf) < 16+curve.G1Size+8 {
		return rl, status.New(status.BadArgErr)
	}
	copy(rl.Gid[:], buf[:16])
	rest := buf[16:]

	bh, err := curve.DecodeG1(rest[:curve.G1Size])
	if err != nil {
		return rl, status.Wrap(status.BadArgErr, err)
	}
	rl.BsnHash = bh
	rest = rest[curve.G1Size:]

	rl.RlVer = binary.BigEndian.Uint32(rest[:4])
	n4 := binary.BigEndian.Uint32(rest[4:8])
	rest = rest[8:]

	if err := requireLen(rest, int(n4), curve.G1Size); err != nil {
		return rl, err
	}
	rl.K = make([]curve.G1, n4)
	for i := range rl.K {
		k, err := curve.DecodeG1(rest[:curve.G1Size])
		if err != nil {
			return rl, status.Wrap(status.BadArgErr, err)
		}
		rl.K[i] = k
		rest = rest[curve.G1Size:]
	}
	return rl, nil
}

// Contains reports whether k appears in the blacklist.
func (rl VerifierRL) Contains(k curve.G1) bool {
	for _, existing := range rl.K {
		if existing.Eq(&k) {
			return true
		}
	}
	return false
}

// Append returns a copy of rl with k appended and rl_ver/n4 advanced by
// one (spec.md §4.J blacklist_sig state transition).
func (rl VerifierRL) Append(k curve.G1) VerifierRL {
	next := rl
	next.K = append(append([]curve.G1{}, rl.K...), k)
	next.RlVer = rl.RlVer + 1
	return next
}
