package httpx

import "context"

type ctxKey string

const (
	CtxKeyPrincipal ctxKey = "principal"
	CtxKeyClaims    ctxKey = "claims" // full jwtx.Claims if you want them
)

// Principal is the authenticated (user, tenant, role) context resolved from
// the session token. Core operations trust this as ground truth and never
// re-derive it.
type Principal struct {
	UserID   string
	TenantID string
	Role     string
	Email    string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(Principal)
	return p, ok
}

func principalKey(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.UserID
	}
	return ""
}
