package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabnotes/internal/notes/service"
	"github.com/aussiebroadwan/tabnotes/pkg/httpx"
	"github.com/aussiebroadwan/tabnotes/pkg/notesdk"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

type TenantsHandler struct {
	TenantService *service.TenantService
}

// HandleUpgrade moves the caller's tenant onto the pro plan. The slug in
// the path must name the caller's own tenant.
func (h *TenantsHandler) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	tenant, err := h.TenantService.Upgrade(ctx, p, r.PathValue("slug"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Tenant not found")
		case errors.Is(err, service.ErrForbidden):
			httpx.WriteError(w, http.StatusForbidden, "You can only upgrade your own tenant")
		default:
			log.Error("failed to upgrade tenant", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to upgrade tenant")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Tenant upgraded to Pro",
		map[string]any{"tenant": toTenantSummary(tenant)})
}

// HandleStats reports the caller's tenant plan and note usage.
func (h *TenantsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := h.TenantService.Stats(ctx, p)
	if err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Tenant not found")
			return
		}
		log.Error("failed to fetch tenant stats", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to fetch tenant stats")
		return
	}

	var limit *int
	if stats.NoteLimit > 0 {
		limit = &stats.NoteLimit
	}

	httpx.WriteData(w, http.StatusOK, notesdk.TenantStats{
		Tenant:        toTenantSummary(stats.Tenant),
		NoteCount:     stats.NoteCount,
		NoteLimit:     limit,
		CanCreateMore: stats.CanCreateMore,
	})
}
