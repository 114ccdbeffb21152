package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	a, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	b, err := GenerateToken(TokenSize256)
	require.NoError(t, err)

	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}

func TestFingerprintTokenIsDeterministic(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(TokenSize128)
	require.NoError(t, err)

	require.Equal(t, FingerprintToken(token), FingerprintToken(token))
	require.NotEqual(t, FingerprintToken(token), FingerprintToken(token+"x"))
	require.NotEqual(t, token, FingerprintToken(token))
}
