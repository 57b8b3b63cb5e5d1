package status_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epidcore/epid2/status"
)

func TestErrorIsComparesCode(t *testing.T) {
	err := status.Wrap(status.SigRevokedInSigRl, errors.New("boom"))
	require.True(t, errors.Is(err, status.New(status.SigRevokedInSigRl)))
	require.False(t, errors.Is(err, status.New(status.SigRevokedInPrivRl)))
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("root cause")
	err := status.Wrap(status.MathErr, cause)
	require.Equal(t, cause, errors.Unwrap(err))
}

func TestRevokedCodes(t *testing.T) {
	revoked := []status.Code{
		status.SigRevokedInGroupRl,
		status.SigRevokedInPrivRl,
		status.SigRevokedInSigRl,
		status.SigRevokedInVerifierRl,
	}
	for _, c := range revoked {
		require.True(t, c.Revoked())
	}
	require.False(t, status.NoErr.Revoked())
	require.False(t, status.SigInvalid.Revoked())
}
