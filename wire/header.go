// Package wire implements spec.md §4.E/§6: canonical big-endian
// encoding and decoding of every EPID wire structure — file headers,
// group public keys, revocation lists, signatures, and non-revoked
// proofs — plus the length-vs-buffer validation spec.md requires of
// every list.
//
// Every structure here is a plain data type; the behavior that
// interprets them (split-key derivation, signing, verification,
// revocation-list semantics) lives in groupkey/member/verifier/
// revocation, which embed or alias these types rather than redefining
// the wire shape.
package wire

import (
	"encoding/binary"

	"github.com/epidcore/epid2/status"
)

// FileType is the file_type field of an EpidFileHeader (spec.md §6).
type FileType uint16

const (
	FileTypeGroupPubKey FileType = iota + 1
	FileTypePrivRL
	FileTypeSigRL
	FileTypeGroupRL
	FileTypeSigRLRequest
	FileTypeGroupRLRequest
)

func (t FileType) Valid() bool {
	return t >= FileTypeGroupPubKey && t <= FileTypeGroupRLRequest
}

// EpidVersion2_0 is the current epid_version value, {0x00, 0x02, 0x00,
// 0x00} with major/minor in the first two octets (spec.md §6).
const EpidVersion2_0 uint16 = 0x0002

// HeaderSize is the fixed 4-octet EpidFileHeader size.
const HeaderSize = 4

// Header is the EpidFileHeader every top-level wire structure starts
// with.
type Header struct {
	EpidVersion uint16
	FileType    FileType
}

func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], h.EpidVersion)
	binary.BigEndian.PutUint16(buf[2:4], uint16(h.FileType))
	return buf
}

// DecodeHeader parses and validates a header: unknown version or file
// type is rejected outright (spec.md §6: "Implementations MUST reject
// headers with unknown version or file type").
func DecodeHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < HeaderSize {
		return Header{}, nil, status.New(status.BadArgErr)
	}
	h := Header{
		EpidVersion: binary.BigEndian.Uint16(buf[0:2]),
		FileType:    FileType(binary.BigEndian.Uint16(buf[2:4])),
	}
	if h.EpidVersion != EpidVersion2_0 {
		return Header{}, nil, status.New(status.BadArgErr)
	}
	if !h.FileType.Valid() {
		return Header{}, nil, status.New(status.BadArgErr)
	}
	return h, buf[HeaderSize:], nil
}

// GID is the 16-octet group identifier: octets 0-1 encode the hash
// algorithm, octets 2-15 are the issuer-assigned opaque group id
// (spec.md §6).
type GID [16]byte

func (g GID) HashAlgOctets() [2]byte {
	return [2]byte{g[0], g[1]}
}

func (g GID) Equal(o GID) bool { return g == o }

func decodeUint32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, status.New(status.BadArgErr)
	}
	return binary.BigEndian.Uint32(buf[:4]), buf[4:], nil
}

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// requireLen validates that a declared element count times per-element
// size matches the remaining buffer length exactly (spec.md §4.E:
// "Implementations MUST reject any list whose declared count ×
// entry-size does not match the remaining buffer length").
func requireLen(buf []byte, count, elemSize int) error {
	want := count * elemSize
	if len(buf) != want {
		return status.New(status.BadArgErr)
	}
	return nil
}
