// Package middleware provides HTTP middleware for Perch.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/perchlabs/perch/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or mints a new one,
// stores it in the request context for log correlation, and echoes it
// on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
