package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	require.Error(t, VerifyPassword("wrong password", hash))
}

func TestPasswordHashesAreSalted(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same password")
	require.NoError(t, err)
	b, err := HashPassword("same password")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	t.Parallel()

	require.Error(t, VerifyPassword("anything", ""))
	require.Error(t, VerifyPassword("anything", "not-a-phc-string"))
	require.Error(t, VerifyPassword("anything", "$argon2id$v=19$m=19456,t=2,p=1$badsalt$badhash"))
}
