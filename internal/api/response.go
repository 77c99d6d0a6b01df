package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/erazemk/shramba/internal/apperr"
)

// errorBody is the uniform failure envelope: a display-ready message plus
// optional structured issues for programmatic clients.
type errorBody struct {
	Message string         `json:"message"`
	Issues  map[string]any `json:"issues,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string, issues map[string]any) {
	jsonResponse(w, status, map[string]errorBody{"error": {Message: message, Issues: issues}})
}

// failFromError classifies err and writes the failure response. Errors that
// classify as internal are logged and replaced by the fallback message so no
// raw storage-layer text reaches the caller.
func failFromError(w http.ResponseWriter, err error, fallback string) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	jsonError(w, status, apperr.Message(err, fallback), apperr.Issues(err))
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
