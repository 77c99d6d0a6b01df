package api

import (
	"net/http"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/resource"
	"github.com/erazemk/shramba/internal/store"
)

// LotsHandler serves inventory lots. Lots reuse the generic list and delete
// paths but replace create/update with a single compound-key upsert, so two
// receipts of the same item, location and lot code land on one record.
type LotsHandler struct {
	ResourceHandler
}

func NewLotsHandler(conn *db.Conn) *LotsHandler {
	return &LotsHandler{ResourceHandler{Conn: conn, Schema: resource.Lot}}
}

func (h *LotsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.readDraft(w, r)
	if !ok {
		return
	}

	doc, err := h.Schema.Normalize(draft, false)
	if err != nil {
		failFromError(w, err, "")
		return
	}

	stored, created, err := store.UpsertLot(r.Context(), h.Conn, doc)
	if err != nil {
		failFromError(w, err, "Failed to upsert lot.")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	jsonResponse(w, status, map[string]any{h.Schema.Singular: h.Schema.Serialize(stored)})
}
