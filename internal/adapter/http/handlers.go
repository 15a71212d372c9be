// Package http exposes the dashboard's REST and WebSocket surface over
// the dataservice facade.
package http

import (
	"log/slog"
	"net/http"

	"github.com/perchlabs/perch/internal/adapter/otel"
	"github.com/perchlabs/perch/internal/dataservice"
)

// Handlers holds the facade every endpoint delegates to.
type Handlers struct {
	svc     dataservice.Service
	log     *slog.Logger
	metrics *otel.Metrics
}

// NewHandlers creates the handler set. Metric instruments are best-effort;
// a failure only disables counters.
func NewHandlers(svc dataservice.Service, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	metrics, err := otel.NewMetrics()
	if err != nil {
		log.Warn("metric instruments unavailable", "error", err)
		metrics = nil
	}
	return &Handlers{svc: svc, log: log, metrics: metrics}
}

// countRequests is route middleware tallying resource API traffic.
func (h *Handlers) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics != nil {
			h.metrics.ResourceRequests.Add(r.Context(), 1)
		}
		next.ServeHTTP(w, r)
	})
}
