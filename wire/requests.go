package wire

import (
	"encoding/binary"

	"github.com/epidcore/epid2/status"
)

// SigRLRequest is the wire layout a member/issuer uses to ask for a
// fresh SigRL (spec.md §6): EpidFileHeader || gid || BasicSignature ||
// be_msg_size(4) || msg. The signature lets the recipient confirm the
// requester actually holds a valid credential for gid before handing
// back a list.
type SigRLRequest struct {
	Gid GID
	Sig BasicSignature
	Msg []byte
}

func (r SigRLRequest) Encode() ([]byte, error) {
	out := append([]byte{}, r.Gid[:]...)
	sig, err := r.Sig.Encode()
	if err != nil {
		return nil, err
	}
	out = append(out, sig...)
	out = append(out, encodeUint32(uint32(len(r.Msg)))...)
	out = append(out, r.Msg...)
	return out, nil
}

// DecodeSigRLRequestBody parses the gid || BasicSignature || msg_size ||
// msg body that follows the EpidFileHeader.
func DecodeSigRLRequestBody(buf []byte) (SigRLRequest, error) {
	var r SigRLRequest
	if len(buf) < 16+BasicSignatureSize+4 {
		return r, status.New(status.BadArgErr)
	}
	copy(r.Gid[:], buf[:16])
	rest := buf[16:]

	sig, err := DecodeBasicSignature(rest[:BasicSignatureSize])
	if err != nil {
		return r, err
	}
	r.Sig = sig
	rest = rest[BasicSignatureSize:]

	msgSize := binary.BigEndian.Uint32(rest[:4])
	rest = rest[4:]
	if uint32(len(rest)) != msgSize {
		return r, status.New(status.BadArgErr)
	}
	r.Msg = append([]byte{}, rest...)
	return r, nil
}

// GroupRLRequestEntry is one (gid, reason) pair in a GroupRLRequest.
type GroupRLRequestEntry struct {
	Gid    GID
	Reason byte
}

const groupRLRequestEntrySize = 16 + 1

// GroupRLRequest asks an issuer for the reasons a set of groups were
// added to the GroupRL (spec.md §6): EpidFileHeader || count(4,BE) ||
// count entries of (gid(16), reason(1)).
type GroupRLRequest struct {
	Entries []GroupRLRequestEntry
}

func (r GroupRLRequest) Encode() []byte {
	out := encodeUint32(uint32(len(r.Entries)))
	for _, e := range r.Entries {
		out = append(out, e.Gid[:]...)
		out = append(out, e.Reason)
	}
	return out
}

func DecodeGroupRLRequestBody(buf []byte) (GroupRLRequest, error) {
	var r GroupRLRequest
	if len(buf) < 4 {
		return r, status.New(status.BadArgErr)
	}
	count := binary.BigEndian.Uint32(buf[:4])
	rest := buf[4:]

	if err := requireLen(rest, int(count), groupRLRequestEntrySize); err != nil {
		return r, err
	}
	r.Entries = make([]GroupRLRequestEntry, count)
	for i := range r.Entries {
		var e GroupRLRequestEntry
		copy(e.Gid[:], rest[:16])
		e.Reason = rest[16]
		r.Entries[i] = e
		rest = rest[groupRLRequestEntrySize:]
	}
	return r, nil
}
