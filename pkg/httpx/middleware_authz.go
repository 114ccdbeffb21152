package httpx

import "net/http"

// RequireAdmin rejects requests whose principal does not hold the admin
// role. It must run after AuthnMiddleware.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}
			if !p.IsAdmin() {
				WriteError(w, http.StatusForbidden, "Admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
