package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/httpx"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	Store     store.Store
	StartTime time.Time
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.Store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	httpx.WriteJSON(w, code, map[string]any{
		"status":  status,
		"uptime":  time.Since(h.StartTime).Round(time.Second).String(),
		"service": "tabnotes",
	})
}
