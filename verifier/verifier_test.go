package verifier_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epidcore/epid2/groupkey"
	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/member"
	"github.com/epidcore/epid2/rng"
	"github.com/epidcore/epid2/status"
	"github.com/epidcore/epid2/verifier"
	"github.com/epidcore/epid2/wire"
)

func testSource(seed int64) rng.Source {
	r := rand.New(rand.NewSource(seed))
	return rng.Func(func(buf []byte) error {
		_, err := r.Read(buf)
		return err
	})
}

func randomFp(t *testing.T) field.Fp {
	t.Helper()
	var f field.Fp
	_, err := f.SetRandom()
	require.NoError(t, err)
	return f
}

func addG1(a, b curve.G1) curve.G1 {
	var out curve.G1
	out.Add(&a.G1Affine, &b.G1Affine)
	return out
}

func newSignedContext(t *testing.T) (*groupkey.PubKey, *member.Context, wire.GID) {
	t.Helper()
	g1, g2 := curve.Generators()

	gamma := randomFp(t)
	w := g2.ScalarMul(field.FpToBigInt(&gamma))
	hs1 := randomFp(t)
	hs2 := randomFp(t)
	h1 := g1.ScalarMul(field.FpToBigInt(&hs1))
	h2 := g1.ScalarMul(field.FpToBigInt(&hs2))

	var gid wire.GID
	gid[0], gid[1] = 0x00, 0x00

	pk, err := groupkey.New(wire.GroupPubKey{Gid: gid, H1: h1, H2: h2, W: w})
	require.NoError(t, err)
	require.NoError(t, pk.SetHashAlg(false))

	x := randomFp(t)
	f := randomFp(t)
	sum := addG1(g1, addG1(h1.ScalarMul(field.FpToBigInt(&f)), h2))
	var denom, inv field.Fp
	denom.Add(&x, &f)
	inv.Inverse(&denom)
	a := sum.ScalarMul(field.FpToBigInt(&inv))

	memberCtx := member.New(pk, member.Credential{A: a, X: x, F: f}, testSource(42))
	require.NoError(t, memberCtx.Startup())

	return pk, memberCtx, gid
}

func TestVerifyRejectsGroupRevokedGid(t *testing.T) {
	pk, memberCtx, gid := newSignedContext(t)
	sig, err := memberCtx.Sign([]byte("msg"), nil, nil)
	require.NoError(t, err)

	v := verifier.New(pk)
	v.SetGroupRl(wire.GroupRL{Gids: []wire.GID{gid}})

	err = v.Verify(sig, []byte("msg"))
	require.True(t, errors.Is(err, status.New(status.SigRevokedInGroupRl)))
}

// TestVerifyAcceptsUnaffectedPrivRL checks that installing a PrivRL
// with no entry matching this member doesn't reject a valid signature;
// the positive (actually-revoked) case is covered directly in the
// revocation package's own InPrivRL test.
func TestVerifyAcceptsUnaffectedPrivRL(t *testing.T) {
	pk, memberCtx, gid := newSignedContext(t)
	sig, err := memberCtx.Sign([]byte("msg"), nil, nil)
	require.NoError(t, err)

	v := verifier.New(pk)
	require.NoError(t, v.SetPrivRl(wire.PrivRL{Gid: gid}))

	require.NoError(t, v.Verify(sig, []byte("msg")))
}

func TestVerifySucceedsWithEmptyLists(t *testing.T) {
	pk, memberCtx, _ := newSignedContext(t)
	sig, err := memberCtx.Sign([]byte("msg"), nil, nil)
	require.NoError(t, err)

	v := verifier.New(pk)
	require.NoError(t, v.Verify(sig, []byte("msg")))
}

func TestBlacklistSigThenVerifyRejects(t *testing.T) {
	pk, memberCtx, _ := newSignedContext(t)
	sig, err := memberCtx.Sign([]byte("msg"), []byte("bsn"), nil)
	require.NoError(t, err)

	v := verifier.New(pk)
	v.SetBasename([]byte("bsn"))
	require.NoError(t, v.Verify(sig, []byte("msg")))

	require.NoError(t, v.BlacklistSig(sig, []byte("msg")))
	err = v.Verify(sig, []byte("msg"))
	require.True(t, errors.Is(err, status.New(status.SigRevokedInVerifierRl)))
}

func TestBlacklistSigRejectsAlreadyGroupRevoked(t *testing.T) {
	pk, memberCtx, gid := newSignedContext(t)
	sig, err := memberCtx.Sign([]byte("msg"), nil, nil)
	require.NoError(t, err)

	v := verifier.New(pk)
	v.SetGroupRl(wire.GroupRL{Gids: []wire.GID{gid}})

	err = v.BlacklistSig(sig, []byte("msg"))
	require.True(t, errors.Is(err, status.New(status.SigRevokedInGroupRl)))
	require.False(t, v.VerifierRl().Contains(sig.Sigma0.K))
}

func TestBlacklistSigRejectsInvalidSignature(t *testing.T) {
	pk, memberCtx, _ := newSignedContext(t)
	sig, err := memberCtx.Sign([]byte("msg"), nil, nil)
	require.NoError(t, err)
	sig.Sigma0.Sx = randomFp(t) // corrupt the signature

	v := verifier.New(pk)
	err = v.BlacklistSig(sig, []byte("msg"))
	require.True(t, errors.Is(err, status.New(status.SigInvalid)))
	require.False(t, v.VerifierRl().Contains(sig.Sigma0.K))
}

func TestAreSigsLinked(t *testing.T) {
	_, memberCtx, _ := newSignedContext(t)
	bsn := []byte("linked-bsn")
	sig1, err := memberCtx.Sign([]byte("m1"), bsn, nil)
	require.NoError(t, err)
	sig2, err := memberCtx.Sign([]byte("m2"), bsn, nil)
	require.NoError(t, err)

	require.True(t, verifier.AreSigsLinked(sig1, sig2))
}

func TestAreSigsNotLinkedAcrossRandomBase(t *testing.T) {
	_, memberCtx, _ := newSignedContext(t)
	sig1, err := memberCtx.Sign([]byte("m1"), nil, nil)
	require.NoError(t, err)
	sig2, err := memberCtx.Sign([]byte("m2"), nil, nil)
	require.NoError(t, err)

	require.False(t, verifier.AreSigsLinked(sig1, sig2))
}
