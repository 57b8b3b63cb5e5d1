package field_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/internal/vli"
)

func TestFpRoundTrip(t *testing.T) {
	var f field.Fp
	f.SetUint64(424242)

	encoded := field.FpBytes(&f)
	require.Len(t, encoded, field.FpSize)

	decoded, err := field.FpFromBytes(encoded)
	require.NoError(t, err)
	require.True(t, f.Equal(&decoded))
}

func TestFpFromBytesRejectsWrongLength(t *testing.T) {
	_, err := field.FpFromBytes(make([]byte, field.FpSize-1))
	require.Error(t, err)
}

func TestFqRoundTrip(t *testing.T) {
	var f field.Fq
	f.SetUint64(9999)

	encoded := field.FqBytes(&f)
	require.Len(t, encoded, field.FqSize)

	decoded, err := field.FqFromBytes(encoded)
	require.NoError(t, err)
	require.True(t, f.Equal(&decoded))
}

func TestHashToFpIsDeterministicAndRejectsShortDigest(t *testing.T) {
	digest := make([]byte, field.FpSize+16)
	for i := range digest {
		digest[i] = byte(i)
	}

	a, err := field.HashToFp(digest)
	require.NoError(t, err)
	b, err := field.HashToFp(digest)
	require.NoError(t, err)
	require.True(t, a.Equal(&b))

	_, err = field.HashToFp(digest[:field.FpSize])
	require.Error(t, err)
}

func TestHashToFqIsDeterministicAndRejectsShortDigest(t *testing.T) {
	digest := make([]byte, field.FqSize+16)
	for i := range digest {
		digest[i] = byte(255 - i)
	}

	a, err := field.HashToFq(digest)
	require.NoError(t, err)
	b, err := field.HashToFq(digest)
	require.NoError(t, err)
	require.True(t, a.Equal(&b))

	_, err = field.HashToFq(digest[:field.FqSize])
	require.Error(t, err)
}

func TestFpToBigIntRoundTrip(t *testing.T) {
	var f field.Fp
	f.SetUint64(777)

	i := field.FpToBigInt(&f)
	require.Equal(t, uint64(777), i.Uint64())
}

func TestFpModulusU256MatchesFpModulusBig(t *testing.T) {
	u256 := field.FpModulusU256()
	modulus := field.FpModulusBig()

	want := vli.FromBigEndianBytes(padModulusBytes(modulus.Bytes()))
	require.Equal(t, want, u256)
}

func padModulusBytes(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
