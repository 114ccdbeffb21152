package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tabnotes/pkg/jwtx"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

// AuthnMiddleware verifies the bearer session token and injects the
// resolved principal into the request context.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyPrincipal, Principal{
		UserID:   c.Subject,
		TenantID: c.TenantID,
		Role:     c.Role,
		Email:    c.Email,
	})
	return context.WithValue(ctx, CtxKeyClaims, c)
}

// RFC 6750 challenge header plus the usual envelope body, so API clients
// can treat auth failures like any other error.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "Authentication required")
}
