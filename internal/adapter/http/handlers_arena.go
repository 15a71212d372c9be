package http

import (
	"net/http"
	"strconv"

	"github.com/perchlabs/perch/internal/adapter/operator"
	"github.com/perchlabs/perch/internal/domain/arena"
)

// --- Arena sources ---

// ListArenaSources handles GET /api/workspaces/{workspace}/arena/sources
func (h *Handlers) ListArenaSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.svc.ListArenaSources(r.Context(), urlParam(r, "workspace"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if sources == nil {
		sources = []arena.Source{}
	}
	writeJSON(w, http.StatusOK, sources)
}

// GetArenaSource handles GET /api/workspaces/{workspace}/arena/sources/{name}
func (h *Handlers) GetArenaSource(w http.ResponseWriter, r *http.Request) {
	source, err := h.svc.GetArenaSource(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if source == nil {
		writeNotFound(w, "arena source")
		return
	}
	writeJSON(w, http.StatusOK, source)
}

// CreateArenaSource handles POST /api/workspaces/{workspace}/arena/sources
func (h *Handlers) CreateArenaSource(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[arena.CreateSourceRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Name, "name") {
		return
	}
	created, err := h.svc.CreateArenaSource(r.Context(), urlParam(r, "workspace"), req)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteArenaSource handles DELETE /api/workspaces/{workspace}/arena/sources/{name}
func (h *Handlers) DeleteArenaSource(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteArenaSource(r.Context(), urlParam(r, "workspace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncArenaSource handles POST /api/workspaces/{workspace}/arena/sources/{name}/sync
func (h *Handlers) SyncArenaSource(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SyncArenaSource(r.Context(), urlParam(r, "workspace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ArenaScenarios handles GET /api/workspaces/{workspace}/arena/sources/{name}/scenarios
func (h *Handlers) ArenaScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.svc.ArenaScenarios(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scenarios)
}

// --- Arena configs ---

// ListArenaConfigs handles GET /api/workspaces/{workspace}/arena/configs
func (h *Handlers) ListArenaConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.svc.ListArenaConfigs(r.Context(), urlParam(r, "workspace"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if configs == nil {
		configs = []arena.Config{}
	}
	writeJSON(w, http.StatusOK, configs)
}

// GetArenaConfig handles GET /api/workspaces/{workspace}/arena/configs/{name}
func (h *Handlers) GetArenaConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.GetArenaConfig(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if cfg == nil {
		writeNotFound(w, "arena config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// CreateArenaConfig handles POST /api/workspaces/{workspace}/arena/configs
func (h *Handlers) CreateArenaConfig(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[arena.CreateConfigRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Name, "name") {
		return
	}
	created, err := h.svc.CreateArenaConfig(r.Context(), urlParam(r, "workspace"), req)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteArenaConfig handles DELETE /api/workspaces/{workspace}/arena/configs/{name}
func (h *Handlers) DeleteArenaConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteArenaConfig(r.Context(), urlParam(r, "workspace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Arena jobs ---

// ListArenaJobs handles GET /api/workspaces/{workspace}/arena/jobs
func (h *Handlers) ListArenaJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := operator.JobListOptions{
		Type:  q.Get("type"),
		Phase: arena.JobPhase(q.Get("phase")),
		Sort:  q.Get("sort"),
	}
	if l := q.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			opts.Limit = parsed
		}
	}
	jobs, err := h.svc.ListArenaJobs(r.Context(), urlParam(r, "workspace"), opts)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if jobs == nil {
		jobs = []arena.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetArenaJob handles GET /api/workspaces/{workspace}/arena/jobs/{name}
func (h *Handlers) GetArenaJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.GetArenaJob(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if job == nil {
		writeNotFound(w, "arena job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// CreateArenaJob handles POST /api/workspaces/{workspace}/arena/jobs
func (h *Handlers) CreateArenaJob(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[arena.CreateJobRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Name, "name") {
		return
	}
	created, err := h.svc.CreateArenaJob(r.Context(), urlParam(r, "workspace"), req)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CancelArenaJob handles POST /api/workspaces/{workspace}/arena/jobs/{name}/cancel
func (h *Handlers) CancelArenaJob(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelArenaJob(r.Context(), urlParam(r, "workspace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// DeleteArenaJob handles DELETE /api/workspaces/{workspace}/arena/jobs/{name}
func (h *Handlers) DeleteArenaJob(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteArenaJob(r.Context(), urlParam(r, "workspace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ArenaJobResults handles GET /api/workspaces/{workspace}/arena/jobs/{name}/results
func (h *Handlers) ArenaJobResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.ArenaJobResults(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// ArenaJobMetrics handles GET /api/workspaces/{workspace}/arena/jobs/{name}/metrics
func (h *Handlers) ArenaJobMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.svc.ArenaJobMetrics(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if metrics == nil {
		writeNotFound(w, "arena job")
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
