package api

import (
	"net/http"

	"github.com/erazemk/shramba/internal/db"
)

// HealthHandler reports database connectivity.
type HealthHandler struct {
	Conn *db.Conn
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	if err := h.Conn.Ping(r.Context()); err != nil {
		jsonResponse(w, http.StatusServiceUnavailable, map[string]any{"healthy": false})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"healthy": true})
}
