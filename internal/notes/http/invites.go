package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/service"
	"github.com/aussiebroadwan/tabnotes/pkg/httpx"
	"github.com/aussiebroadwan/tabnotes/pkg/notesdk"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

type InvitesHandler struct {
	InviteService *service.InviteService

	// FrontendURL is the base for the invitation links embedded in issue
	// responses.
	FrontendURL string
}

func (h *InvitesHandler) invitationLink(token string) string {
	base := strings.TrimRight(h.FrontendURL, "/")
	return fmt.Sprintf("%s/accept-invitation?token=%s", base, url.QueryEscape(token))
}

// HandleInvite issues an invitation for an email to join the admin's
// tenant. The response carries the only copy of the invitation link.
func (h *InvitesHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req notesdk.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleMember
	}

	detail, token, err := h.InviteService.Issue(ctx, p, req.Email, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminOnly):
			httpx.WriteError(w, http.StatusForbidden, "Only admins can invite users")
		case errors.Is(err, service.ErrInvalidInvite):
			httpx.WriteError(w, http.StatusBadRequest, "A valid email and role are required")
		case errors.Is(err, service.ErrAlreadyMember):
			httpx.WriteError(w, http.StatusBadRequest, "This user is already a member of your tenant")
		case errors.Is(err, service.ErrInvitePending):
			httpx.WriteError(w, http.StatusBadRequest, "A pending invitation already exists for this email")
		default:
			log.Error("failed to issue invitation", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to create invitation")
		}
		return
	}

	inv := toInvitation(detail)
	inv.InvitationLink = h.invitationLink(token)

	httpx.WriteMessage(w, http.StatusCreated, "Invitation created",
		map[string]any{"invitation": inv})
}

// HandleListForTenant returns the admin's tenant's pending invitations.
func (h *InvitesHandler) HandleListForTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	details, err := h.InviteService.ListForTenant(ctx, p)
	if err != nil {
		if errors.Is(err, service.ErrAdminOnly) {
			httpx.WriteError(w, http.StatusForbidden, "Only admins can view tenant invitations")
			return
		}
		log.Error("failed to list tenant invitations", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to list invitations")
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{"invitations": toInvitations(details)})
}

// HandleMyInvitations returns pending invitations addressed to the
// caller's email, across all tenants.
func (h *InvitesHandler) HandleMyInvitations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	details, err := h.InviteService.ListForEmail(ctx, p)
	if err != nil {
		log.Error("failed to list user invitations", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to list invitations")
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{"invitations": toInvitations(details)})
}

// HandleCancel removes a pending invitation in the admin's tenant.
func (h *InvitesHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	err := h.InviteService.Cancel(ctx, p, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminOnly):
			httpx.WriteError(w, http.StatusForbidden, "Only admins can cancel invitations")
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Invitation not found")
		default:
			log.Error("failed to cancel invitation", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to cancel invitation")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Invitation cancelled", nil)
}

// HandleInspect previews a pending invitation by its raw token, for the
// accept page. No session is required.
func (h *InvitesHandler) HandleInspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	detail, err := h.InviteService.Inspect(ctx, r.PathValue("token"))
	if err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Invitation not found or expired")
			return
		}
		log.Error("failed to inspect invitation", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to fetch invitation")
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{"invitation": toInvitation(detail)})
}

// HandleAccept redeems an invitation token and returns a fresh session.
func (h *InvitesHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req notesdk.AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	token, user, tenant, err := h.InviteService.Accept(ctx, req.Token, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Invitation not found or expired")
		case errors.Is(err, service.ErrPasswordTooShort):
			httpx.WriteError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		case errors.Is(err, service.ErrPasswordMismatch):
			httpx.WriteError(w, http.StatusBadRequest, "Passwords do not match")
		default:
			log.Error("failed to accept invitation", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to accept invitation")
		}
		return
	}

	httpx.WriteData(w, http.StatusCreated, notesdk.SessionResponse{
		Token: token,
		User:  toUserSummary(user, tenant),
	})
}
