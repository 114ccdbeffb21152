package service

import "github.com/aussiebroadwan/tabnotes/internal/notes/domain"

// Principal is the authenticated (user, tenant, role) context resolved by
// the HTTP layer from the session token. Services treat it as ground truth
// and never re-derive it; it is threaded explicitly into every operation
// rather than living in ambient state.
type Principal struct {
	UserID   string
	TenantID string
	Role     domain.Role
	Email    string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }
