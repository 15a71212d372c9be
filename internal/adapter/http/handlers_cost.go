package http

import (
	"net/http"
	"time"
)

// CostReport handles GET /api/costs. Backend trouble is reflected in the
// report's availability flag, never as an error status.
func (h *Handlers) CostReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	report := h.svc.CostReport(r.Context())
	if h.metrics != nil {
		h.metrics.CostQueries.Add(r.Context(), 1)
		h.metrics.CostQueryDuration.Record(r.Context(), time.Since(start).Seconds())
	}
	writeJSON(w, http.StatusOK, report)
}

type healthResponse struct {
	Status       string `json:"status"`
	Mode         string `json:"mode"`
	Backend      string `json:"backend"`
	DashboardURL string `json:"dashboard_url,omitempty"`
}

// Health handles GET /api/health. The service itself is always "ok" when
// it can answer; backend reachability is reported alongside.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	backend := "ok"
	if err := h.svc.Healthy(r.Context()); err != nil {
		h.log.Warn("backend health probe failed", "error", err)
		backend = "unreachable"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Mode:         h.svc.Mode(),
		Backend:      backend,
		DashboardURL: h.svc.MetricsDashboardURL(),
	})
}
