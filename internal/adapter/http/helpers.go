package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/perchlabs/perch/internal/adapter/operator"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

// urlParam is a short alias for chi.URLParam.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// requireField writes a 400 error and returns false when value is empty.
func requireField(w http.ResponseWriter, value, fieldName string) bool {
	if value == "" {
		writeError(w, http.StatusBadRequest, fieldName+" is required")
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeBackendError relays a backend failure to the client. Typed API
// errors pass through with their original status and message; everything
// else is logged and masked as an internal error. Absence and permission
// failures are routine, so they log at debug instead of error.
func writeBackendError(w http.ResponseWriter, err error) {
	var apiErr *operator.APIError
	if errors.As(err, &apiErr) {
		if operator.IsNotFound(err) || operator.IsForbidden(err) {
			slog.Debug("backend refused request", "status", apiErr.StatusCode, "error", err)
		} else {
			slog.Error("backend request failed", "status", apiErr.StatusCode, "error", err)
		}
		writeError(w, apiErr.StatusCode, apiErr.Message)
		return
	}
	slog.Error("backend request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeNotFound is the absence response for single-resource gets.
func writeNotFound(w http.ResponseWriter, kind string) {
	writeError(w, http.StatusNotFound, kind+" not found")
}
