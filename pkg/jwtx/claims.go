package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime for session tokens. The original
// product kept users signed in for a week.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Claims are the session-token claims. The subject is the user id; the
// tenant id and role pin the session to the tenant boundary resolved at
// login or invitation acceptance. We keep changes additive to preserve
// compatibility for later.
type Claims struct {
	jwt.RegisteredClaims

	// TenantID scopes every request made with this session.
	TenantID string `json:"tenant_id"`

	// Role within the tenant ("admin" or "member").
	Role string `json:"role"`

	// Email of the authenticated user.
	Email string `json:"email,omitempty"`
}

// NewSessionClaims builds minimally-correct session claims.
func NewSessionClaims(
	userID, tenantID, role, email string,
	issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TenantID: tenantID,
		Role:     role,
		Email:    email,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}
