package domain

import "time"

// InvitationStatus is the stored invitation state. There is no stored
// "expired" state: expiry is logical and enforced at query time via
// ExpiresAt, so a pending record past its expiry behaves as expired even if
// housekeeping has not removed it yet.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
)

// Invitation is a time-limited, token-bearing capability allowing an email
// address to join a tenant with a given role. Only the SHA-256 fingerprint
// of the token is stored; the raw token is returned once, at issue time.
type Invitation struct {
	ID        string
	Email     string // lowercased, trimmed
	TenantID  string
	InvitedBy string // user id of the issuing admin
	Role      Role
	Status    InvitationStatus
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the invitation is logically expired at t.
func (i Invitation) Expired(t time.Time) bool {
	return !i.ExpiresAt.After(t)
}
