package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundtrip(t *testing.T) {
	t.Parallel()

	keys, err := NewEphemeralKeypair("test-issuer")
	require.NoError(t, err)

	claims := NewSessionClaims(
		"user-1", "tenant-1", "admin", "boss@example.com",
		"test-issuer", time.Hour, time.Now().UTC(),
	)

	token, err := keys.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := keys.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", parsed.Subject)
	require.Equal(t, "tenant-1", parsed.TenantID)
	require.Equal(t, "admin", parsed.Role)
	require.Equal(t, "boss@example.com", parsed.Email)
	require.NoError(t, parsed.ValidateExpiry())
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralKeypair("test-issuer")
	require.NoError(t, err)
	verifier, err := NewEphemeralKeypair("test-issuer")
	require.NoError(t, err)

	claims := NewSessionClaims("u", "t", "member", "", "test-issuer", time.Hour, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	keys, err := NewEphemeralKeypair("test-issuer")
	require.NoError(t, err)

	claims := NewSessionClaims("u", "t", "member", "", "test-issuer", time.Minute, time.Now().UTC().Add(-time.Hour))
	token, err := keys.Sign(claims)
	require.NoError(t, err)

	_, err = keys.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	keys, err := NewEphemeralKeypair("expected-issuer")
	require.NoError(t, err)

	claims := NewSessionClaims("u", "t", "member", "", "someone-else", time.Hour, time.Now().UTC())
	token, err := keys.Sign(claims)
	require.NoError(t, err)

	_, err = keys.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	keys, err := NewEphemeralKeypair("test-issuer")
	require.NoError(t, err)

	_, err = keys.Verify("not.a.jwt")
	require.Error(t, err)
	_, err = keys.Verify("")
	require.Error(t, err)
}
