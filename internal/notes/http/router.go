package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/service"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/httpx"
	"github.com/aussiebroadwan/tabnotes/pkg/jwtx"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier  jwtx.Verifier
	startTime time.Time
	logger    *slog.Logger

	store store.Store

	// FrontendURL is the base for invitation links embedded in issue
	// responses.
	FrontendURL string

	// AdminKey guards the out-of-band maintenance endpoints. Empty
	// disables them.
	AdminKey string

	SignupService  *service.SignupService
	SessionService *service.SessionService
	NoteService    *service.NoteService
	TenantService  *service.TenantService
	InviteService  *service.InviteService
	AdminService   *service.AdminService
}

func NewRouter(
	verifier jwtx.Verifier,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		verifier:  verifier,
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerNotes()
	r.registerTenants()
	r.registerInvites()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		SignupService:  r.SignupService,
		SessionService: r.SessionService,
	}

	// Both endpoints are unauthenticated; strict IP limiting slows
	// credential stuffing and signup spam.
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerNotes() {
	h := &NotesHandler{NoteService: r.NoteService}

	secured := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /notes", secured(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /notes", secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /notes/{id}", secured(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /notes/{id}", secured(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /notes/{id}", secured(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerTenants() {
	h := &TenantsHandler{TenantService: r.TenantService}

	r.Mux.Handle("POST /tenants/{slug}/upgrade",
		httpx.Chain(http.HandlerFunc(h.HandleUpgrade),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /tenants/stats",
		httpx.Chain(http.HandlerFunc(h.HandleStats),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{
		InviteService: r.InviteService,
		FrontendURL:   r.FrontendURL,
	}

	// Admin-only invitation management.
	adminSecured := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /users/invite", adminSecured(http.HandlerFunc(h.HandleInvite)))
	r.Mux.Handle("GET /users/invitations", adminSecured(http.HandlerFunc(h.HandleListForTenant)))
	r.Mux.Handle("DELETE /users/invitations/{id}", adminSecured(http.HandlerFunc(h.HandleCancel)))

	// Any authenticated user can see invitations addressed to them.
	r.Mux.Handle("GET /users/my-invitations",
		httpx.Chain(http.HandlerFunc(h.HandleMyInvitations),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// The token itself is the capability on the accept flow; no session
	// required. Strict IP limiting slows token guessing.
	r.Mux.Handle("GET /users/accept-invitation/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleInspect),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /users/accept-invitation",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{
		AdminService: r.AdminService,
		AdminKey:     r.AdminKey,
	}

	r.Mux.Handle("POST /admin/clear-all-data",
		httpx.Chain(http.HandlerFunc(h.HandleWipe),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /health", &HealthHandler{
		Store:     r.store,
		StartTime: r.startTime,
	})
}
