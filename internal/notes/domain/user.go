package domain

import "time"

// Role is a user's role within their tenant.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role value.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User belongs to exactly one tenant at any instant. TenantID and Role are
// only ever changed by invitation acceptance.
type User struct {
	ID           string
	Email        string // unique system-wide, lowercased
	PasswordHash string // argon2id encoded
	Role         Role
	TenantID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
