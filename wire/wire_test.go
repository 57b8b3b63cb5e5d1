package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/wire"
)

func testPoint(t *testing.T, seed uint64) curve.G1 {
	t.Helper()
	g1, _ := curve.Generators()
	var scalar field.Fp
	scalar.SetUint64(seed)
	return g1.ScalarMul(field.FpToBigInt(&scalar))
}

func TestHeaderRoundTrip(t *testing.T) {
	h := wire.Header{EpidVersion: wire.EpidVersion2_0, FileType: wire.FileTypeSigRL}
	decoded, rest, err := wire.DecodeHeader(h.Encode())
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, h, decoded)
}

func TestDecodeHeaderRejectsUnknownVersion(t *testing.T) {
	buf := []byte{0x00, 0x01, 0x00, 0x01}
	_, _, err := wire.DecodeHeader(buf)
	require.Error(t, err)
}

func TestDecodeHeaderRejectsUnknownFileType(t *testing.T) {
	h := wire.Header{EpidVersion: wire.EpidVersion2_0, FileType: 99}
	_, _, err := wire.DecodeHeader(h.Encode())
	require.Error(t, err)
}

func TestGroupPubKeyFileRoundTripNoCA(t *testing.T) {
	var gid wire.GID
	gid[5] = 0xAB

	f := wire.GroupPubKeyFile{
		Header: wire.Header{EpidVersion: wire.EpidVersion2_0, FileType: wire.FileTypeGroupPubKey},
		Key: wire.GroupPubKey{
			Gid: gid,
			H1:  testPoint(t, 2),
			H2:  testPoint(t, 3),
		},
	}
	_, g2 := curve.Generators()
	f.Key.W = g2

	decoded, err := wire.DecodeGroupPubKeyFile(f.Encode(), nil)
	require.NoError(t, err)
	require.Equal(t, f.Key.Gid, decoded.Key.Gid)
	require.True(t, f.Key.H1.Eq(&decoded.Key.H1))
	require.True(t, f.Key.H2.Eq(&decoded.Key.H2))
	require.True(t, f.Key.W.Eq(&decoded.Key.W))
}

type fakeCA struct{ fail bool }

func (c fakeCA) Verify(signedData, signature []byte) error {
	if c.fail {
		return errFakeCA
	}
	return nil
}

type errString string

func (e errString) Error() string { return string(e) }

const errFakeCA = errString("fake CA rejected signature")

func TestGroupPubKeyFileCAVerification(t *testing.T) {
	_, g2 := curve.Generators()
	f := wire.GroupPubKeyFile{
		Header: wire.Header{EpidVersion: wire.EpidVersion2_0, FileType: wire.FileTypeGroupPubKey},
		Key:    wire.GroupPubKey{H1: testPoint(t, 2), H2: testPoint(t, 3), W: g2},
	}
	buf := f.Encode()

	_, err := wire.DecodeGroupPubKeyFile(buf, fakeCA{fail: false})
	require.NoError(t, err)

	_, err = wire.DecodeGroupPubKeyFile(buf, fakeCA{fail: true})
	require.Error(t, err)
}

func TestBasicSignatureRoundTrip(t *testing.T) {
	s := wire.BasicSignature{B: testPoint(t, 2), K: testPoint(t, 3), T: testPoint(t, 4)}
	s.C.SetUint64(5)
	s.Sx.SetUint64(6)
	s.Sf.SetUint64(7)
	s.Sa.SetUint64(8)
	s.Sb.SetUint64(9)

	enc, err := s.Encode()
	require.NoError(t, err)
	require.Len(t, enc, wire.BasicSignatureSize)

	decoded, err := wire.DecodeBasicSignature(enc)
	require.NoError(t, err)
	require.True(t, s.B.Eq(&decoded.B))
	require.True(t, s.K.Eq(&decoded.K))
	require.True(t, s.T.Eq(&decoded.T))
	require.Equal(t, s.C, decoded.C)
}

func TestSignatureRoundTripWithNonRevokedProofs(t *testing.T) {
	sig := wire.Signature{
		Sigma0: wire.BasicSignature{B: testPoint(t, 2), K: testPoint(t, 3), T: testPoint(t, 4)},
		RlVer:  7,
		SigmaI: []wire.NonRevokedProof{
			{TPrime: testPoint(t, 5)},
			{TPrime: testPoint(t, 6)},
		},
	}

	enc, err := sig.Encode()
	require.NoError(t, err)

	decoded, err := wire.DecodeSignature(enc)
	require.NoError(t, err)
	require.Equal(t, sig.RlVer, decoded.RlVer)
	require.Len(t, decoded.SigmaI, 2)
}

func TestDecodeSignatureRejectsTruncatedNRPList(t *testing.T) {
	sig := wire.Signature{
		Sigma0: wire.BasicSignature{B: testPoint(t, 2), K: testPoint(t, 3), T: testPoint(t, 4)},
		SigmaI: []wire.NonRevokedProof{{TPrime: testPoint(t, 5)}},
	}
	enc, err := sig.Encode()
	require.NoError(t, err)

	_, err = wire.DecodeSignature(enc[:len(enc)-1])
	require.Error(t, err)
}

func TestPrivRLRoundTrip(t *testing.T) {
	var f1, f2 field.Fp
	f1.SetUint64(11)
	f2.SetUint64(22)
	rl := wire.PrivRL{RlVer: 3, F: []field.Fp{f1, f2}}

	decoded, err := wire.DecodePrivRLBody(rl.Encode())
	require.NoError(t, err)
	require.Equal(t, rl.RlVer, decoded.RlVer)
	require.Equal(t, rl.F, decoded.F)
}

func TestSigRLRoundTrip(t *testing.T) {
	rl := wire.SigRL{
		RlVer: 9,
		Entries: []wire.SigRLEntry{
			{B: testPoint(t, 2), K: testPoint(t, 3)},
			{B: testPoint(t, 4), K: testPoint(t, 5)},
		},
	}
	enc, err := rl.Encode()
	require.NoError(t, err)

	decoded, err := wire.DecodeSigRLBody(enc)
	require.NoError(t, err)
	require.Len(t, decoded.Entries, 2)
	require.True(t, rl.Entries[0].B.Eq(&decoded.Entries[0].B))
}

func TestGroupRLRoundTripAndContains(t *testing.T) {
	var gid1, gid2 wire.GID
	gid1[0] = 1
	gid2[0] = 2
	rl := wire.GroupRL{RlVer: 1, Gids: []wire.GID{gid1, gid2}}

	decoded, err := wire.DecodeGroupRLBody(rl.Encode())
	require.NoError(t, err)
	require.True(t, decoded.Contains(gid1))

	var gid3 wire.GID
	gid3[0] = 3
	require.False(t, decoded.Contains(gid3))
}

func TestVerifierRLRoundTripAppendContains(t *testing.T) {
	rl := wire.VerifierRL{BsnHash: testPoint(t, 2), RlVer: 0}

	k := testPoint(t, 9)
	rl = rl.Append(k)
	require.Equal(t, uint32(1), rl.RlVer)
	require.True(t, rl.Contains(k))

	enc, err := rl.Encode()
	require.NoError(t, err)
	decoded, err := wire.DecodeVerifierRL(enc)
	require.NoError(t, err)
	require.True(t, decoded.Contains(k))
}

func TestSigRLRequestRoundTrip(t *testing.T) {
	req := wire.SigRLRequest{
		Sig: wire.BasicSignature{B: testPoint(t, 2), K: testPoint(t, 3), T: testPoint(t, 4)},
		Msg: []byte("hello world"),
	}
	enc, err := req.Encode()
	require.NoError(t, err)

	decoded, err := wire.DecodeSigRLRequestBody(enc)
	require.NoError(t, err)
	require.Equal(t, req.Msg, decoded.Msg)
}

func TestGroupRLRequestRoundTrip(t *testing.T) {
	var gid wire.GID
	gid[0] = 4
	req := wire.GroupRLRequest{Entries: []wire.GroupRLRequestEntry{{Gid: gid, Reason: 1}}}

	decoded, err := wire.DecodeGroupRLRequestBody(req.Encode())
	require.NoError(t, err)
	require.Equal(t, req.Entries, decoded.Entries)
}
