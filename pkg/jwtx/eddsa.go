package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Signer is our interface for anything that can sign session tokens.
type Signer interface {
	KID() string
	Sign(Claims) (string, error)
}

// Verifier validates a session token and gives you back the claims if it's
// legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Keypair signs and verifies session tokens with a single Ed25519 key.
// Keys are generated on the fly and only exist in memory, so sessions
// become invalid when the service restarts.
type Keypair struct {
	kid    string
	priv   ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
}

// NewEphemeralKeypair generates a fresh Ed25519 keypair for signing
// session tokens. The issuer is stamped into and enforced on every token.
func NewEphemeralKeypair(issuer string) (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate ed25519 key: %w", err)
	}
	return &Keypair{
		kid:    NewJTI(),
		priv:   priv,
		pub:    pub,
		issuer: issuer,
	}, nil
}

func (k *Keypair) KID() string { return k.kid }

// Sign produces a compact EdDSA-signed JWT for the claims.
func (k *Keypair) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, c)
	tok.Header["kid"] = k.kid
	return tok.SignedString(k.priv)
}

// Verify parses and validates a compact JWT, enforcing the EdDSA algorithm,
// the signature, expiry/nbf and the issuer.
func (k *Keypair) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return k.pub, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, ErrMalformed
		}
	}

	if err := claims.ValidateIssuer(k.issuer); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
