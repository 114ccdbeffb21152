package http

import (
	"net/http"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/service"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/httpx"
	"github.com/aussiebroadwan/tabnotes/pkg/notesdk"
)

// principal adapts the authenticated request context for the service
// layer. The authn middleware guarantees it is present on secured routes.
func principal(r *http.Request) (service.Principal, bool) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		return service.Principal{}, false
	}
	return service.Principal{
		UserID:   p.UserID,
		TenantID: p.TenantID,
		Role:     domain.Role(p.Role),
		Email:    p.Email,
	}, true
}

func toTenantSummary(t domain.Tenant) notesdk.TenantSummary {
	return notesdk.TenantSummary{
		ID:   t.ID,
		Name: t.Name,
		Slug: t.Slug,
		Plan: string(t.Plan),
	}
}

func toUserSummary(u domain.User, t domain.Tenant) notesdk.UserSummary {
	return notesdk.UserSummary{
		ID:     u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
		Tenant: toTenantSummary(t),
	}
}

func toNote(n domain.Note) notesdk.Note {
	return notesdk.Note{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		UserID:    n.UserID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toInvitation(d store.InvitationDetail) notesdk.Invitation {
	return notesdk.Invitation{
		ID:     d.ID,
		Email:  d.Email,
		Role:   string(d.Role),
		Status: string(d.Status),
		Tenant: &notesdk.TenantSummary{
			ID:   d.TenantID,
			Name: d.TenantName,
			Slug: d.TenantSlug,
		},
		InvitedBy: d.InviterEmail,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

func toInvitations(details []store.InvitationDetail) []notesdk.Invitation {
	out := make([]notesdk.Invitation, 0, len(details))
	for _, d := range details {
		out = append(out, toInvitation(d))
	}
	return out
}
