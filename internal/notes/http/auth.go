package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabnotes/internal/notes/service"
	"github.com/aussiebroadwan/tabnotes/pkg/httpx"
	"github.com/aussiebroadwan/tabnotes/pkg/notesdk"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

type AuthHandler struct {
	SignupService  *service.SignupService
	SessionService *service.SessionService
}

// HandleRegister provisions a tenant with its first admin user and logs
// them straight in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req notesdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, tenant, err := h.SignupService.Register(ctx, req.TenantName, req.Slug, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignup):
			httpx.WriteError(w, http.StatusBadRequest,
				"tenantName, slug, email and a password of at least 6 characters are required")
		case errors.Is(err, service.ErrSlugTaken):
			httpx.WriteError(w, http.StatusBadRequest, "This workspace URL is already taken")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusBadRequest, "This email is already registered")
		default:
			log.Error("registration failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	token, err := h.SessionService.IssueFor(user)
	if err != nil {
		log.Error("failed to issue session after registration", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	httpx.WriteData(w, http.StatusCreated, notesdk.SessionResponse{
		Token: token,
		User:  toUserSummary(user, tenant),
	})
}

// HandleLogin authenticates email+password and returns a session token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req notesdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	token, user, tenant, err := h.SessionService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	httpx.WriteData(w, http.StatusOK, notesdk.SessionResponse{
		Token: token,
		User:  toUserSummary(user, tenant),
	})
}
