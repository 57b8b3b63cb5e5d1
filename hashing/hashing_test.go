package hashing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epidcore/epid2/hashing"
)

func TestAllFourAlgorithmsSupported(t *testing.T) {
	for _, alg := range []hashing.Algorithm{hashing.SHA256, hashing.SHA384, hashing.SHA512, hashing.SHA512256} {
		require.True(t, alg.Valid())
		h, err := hashing.New(alg)
		require.NoError(t, err)
		require.NotZero(t, h.Size())
	}
}

func TestUnsupportedAlgorithmRejected(t *testing.T) {
	_, err := hashing.New(hashing.Algorithm(99))
	require.Error(t, err)
	require.False(t, hashing.Algorithm(99).Valid())
}

func TestDigestIsDeterministic(t *testing.T) {
	d1, err := hashing.Digest(hashing.SHA256, []byte("a"), []byte("b"))
	require.NoError(t, err)
	d2, err := hashing.Digest(hashing.SHA256, []byte("a"), []byte("b"))
	require.NoError(t, err)
	require.Equal(t, d1, d2)

	d3, err := hashing.Digest(hashing.SHA256, []byte("ab"))
	require.NoError(t, err)
	require.Equal(t, d1, d3)
}

func TestWideDigestMeetsMinLength(t *testing.T) {
	d, err := hashing.WideDigest(hashing.SHA256, 100, []byte("msg"))
	require.NoError(t, err)
	require.Len(t, d, 100)
}

func TestWideDigestDeterministic(t *testing.T) {
	d1, err := hashing.WideDigest(hashing.SHA512256, 64, []byte("x"), []byte("y"))
	require.NoError(t, err)
	d2, err := hashing.WideDigest(hashing.SHA512256, 64, []byte("x"), []byte("y"))
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}
