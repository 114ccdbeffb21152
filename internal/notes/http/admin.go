package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/aussiebroadwan/tabnotes/internal/notes/service"
	"github.com/aussiebroadwan/tabnotes/pkg/httpx"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

// AdminHandler exposes the out-of-band maintenance surface. It is guarded
// by a shared key header, not a user session; an empty key disables it.
type AdminHandler struct {
	AdminService *service.AdminService
	AdminKey     string
}

// HandleWipe deletes all data. Demo-reset tooling only.
func (h *AdminHandler) HandleWipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if h.AdminKey == "" {
		httpx.WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	key := r.Header.Get("X-Admin-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.AdminKey)) != 1 {
		log.Warn("admin wipe rejected: bad key")
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	if err := h.AdminService.WipeAll(ctx); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to clear data")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "All data cleared", nil)
}
