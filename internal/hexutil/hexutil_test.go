package hexutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epidcore/epid2/wire"
)

func TestGIDRoundTrip(t *testing.T) {
	var gid wire.GID
	copy(gid[:], []byte("0123456789abcdef"))

	s := GID(gid)
	require.Len(t, s, 32)

	parsed, err := ParseGID(s)
	require.NoError(t, err)
	require.Equal(t, gid, parsed)
}

func TestParseGIDRejectsWrongLength(t *testing.T) {
	_, err := ParseGID("abcd")
	require.Error(t, err)
}

func TestBytesJSONRoundTrip(t *testing.T) {
	b := Bytes{0xde, 0xad, 0xbe, 0xef}
	data, err := b.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"0xdeadbeef"`, string(data))

	var out Bytes
	require.NoError(t, out.UnmarshalJSON(data))
	require.Equal(t, b, out)
}

func TestBytesJSONAcceptsBase64(t *testing.T) {
	var out Bytes
	require.NoError(t, out.UnmarshalJSON([]byte(`"3q2+7w=="`)))
	require.Equal(t, Bytes{0xde, 0xad, 0xbe, 0xef}, out)
}
