package groupkey_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epidcore/epid2/groupkey"
	"github.com/epidcore/epid2/hashing"
	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/status"
	"github.com/epidcore/epid2/wire"
)

func testKey(t *testing.T) wire.GroupPubKey {
	t.Helper()
	g1, g2 := curve.Generators()
	var s1, s2, s3 field.Fp
	s1.SetUint64(11)
	s2.SetUint64(22)
	s3.SetUint64(33)

	var gid wire.GID
	gid[0], gid[1] = 0x00, 0x00

	return wire.GroupPubKey{
		Gid: gid,
		H1:  g1.ScalarMul(field.FpToBigInt(&s1)),
		H2:  g1.ScalarMul(field.FpToBigInt(&s2)),
		W:   g2.ScalarMul(field.FpToBigInt(&s3)),
	}
}

func TestNewRejectsUnsupportedHashAlg(t *testing.T) {
	key := testKey(t)
	key.Gid[0], key.Gid[1] = 0xFF, 0xFF
	_, err := groupkey.New(key)
	require.ErrorIs(t, err, status.New(status.HashAlgorithmNotSupported))
}

func TestSetHashAlgPopulatesPrecomputed(t *testing.T) {
	pk, err := groupkey.New(testKey(t))
	require.NoError(t, err)
	require.Equal(t, hashing.SHA256, pk.HashAlg())

	_, err = pk.Precomputed()
	require.Error(t, err) // not ready before SetHashAlg

	require.NoError(t, pk.SetHashAlg(false))
	require.False(t, pk.Split())

	pre, err := pk.Precomputed()
	require.NoError(t, err)
	require.False(t, pre.E12.IsZero())
}

func TestSplitModeDerivesDistinctH1(t *testing.T) {
	pk, err := groupkey.New(testKey(t))
	require.NoError(t, err)
	require.NoError(t, pk.SetHashAlg(true))

	require.True(t, pk.Split())
	require.False(t, pk.H1Effective().Eq(&pk.H1))
}
