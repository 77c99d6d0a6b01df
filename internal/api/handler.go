package api

import (
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/apperr"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/resource"
	"github.com/erazemk/shramba/internal/store"
	"github.com/erazemk/shramba/internal/validate"
)

// ResourceHandler serves the CRUD endpoints for one resource kind. All
// behavior is driven by the schema: the same handler serves items,
// locations, transactions, audits and users.
type ResourceHandler struct {
	Conn   *db.Conn
	Schema *resource.Schema
}

// readDraft runs the shared front half of every write: readiness check,
// payload guard, wrapper key check. It returns the unwrapped draft.
func (h *ResourceHandler) readDraft(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	if !h.Conn.Ready() {
		failFromError(w, apperr.Unavailable(), "")
		return nil, false
	}

	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return nil, false
	}

	if err := validate.AssertSafe(body, "payload"); err != nil {
		failFromError(w, err, "")
		return nil, false
	}

	draft, ok := body[h.Schema.Singular].(map[string]any)
	if !ok {
		jsonError(w, http.StatusBadRequest,
			fmt.Sprintf("Request body must contain a %q object.", h.Schema.Singular), nil)
		return nil, false
	}
	return draft, true
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.readDraft(w, r)
	if !ok {
		return
	}

	doc, err := h.Schema.Normalize(draft, false)
	if err != nil {
		failFromError(w, err, "")
		return
	}

	stored, err := store.Create(r.Context(), h.Conn, h.Schema, doc)
	if err != nil {
		failFromError(w, err, fmt.Sprintf("Failed to create %s.", h.Schema.Singular))
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{h.Schema.Singular: h.Schema.Serialize(stored)})
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.Conn.Ready() {
		failFromError(w, apperr.Unavailable(), "")
		return
	}

	filter := bson.M{}
	for _, name := range h.Schema.Filters {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		id, err := validate.ObjectID(raw, name)
		if err != nil {
			failFromError(w, err, "")
			return
		}
		filter[name] = id
	}

	docs, err := store.List(r.Context(), h.Conn, h.Schema, filter)
	if err != nil {
		failFromError(w, err, fmt.Sprintf("Failed to list %s.", h.Schema.Plural))
		return
	}

	if len(docs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	out := make([]map[string]any, len(docs))
	for i, doc := range docs {
		out[i] = h.Schema.Serialize(doc)
	}
	jsonResponse(w, http.StatusOK, map[string]any{h.Schema.Plural: out})
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.readDraft(w, r)
	if !ok {
		return
	}

	id, err := validate.ObjectID(r.PathValue("id"), "id")
	if err != nil {
		failFromError(w, err, "")
		return
	}

	patch, err := h.Schema.Normalize(draft, true)
	if err != nil {
		failFromError(w, err, "")
		return
	}

	stored, err := store.Update(r.Context(), h.Conn, h.Schema, id, patch)
	if err != nil {
		failFromError(w, err, fmt.Sprintf("Failed to update %s.", h.Schema.Singular))
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{h.Schema.Singular: h.Schema.Serialize(stored)})
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.Conn.Ready() {
		failFromError(w, apperr.Unavailable(), "")
		return
	}

	id, err := validate.ObjectID(r.PathValue("id"), "id")
	if err != nil {
		failFromError(w, err, "")
		return
	}

	if err := store.Delete(r.Context(), h.Conn, h.Schema, id); err != nil {
		failFromError(w, err, fmt.Sprintf("Failed to delete %s.", h.Schema.Singular))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
