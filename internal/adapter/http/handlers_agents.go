package http

import (
	"net/http"
	"strconv"

	"github.com/perchlabs/perch/internal/domain/agentruntime"
)

// ListAgents handles GET /api/workspaces/{workspace}/agents
func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.svc.ListAgents(r.Context(), urlParam(r, "workspace"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if agents == nil {
		agents = []agentruntime.AgentRuntime{}
	}
	writeJSON(w, http.StatusOK, agents)
}

// GetAgent handles GET /api/workspaces/{workspace}/agents/{name}
func (h *Handlers) GetAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := h.svc.GetAgent(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if agent == nil {
		writeNotFound(w, "agent")
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// CreateAgent handles POST /api/workspaces/{workspace}/agents
func (h *Handlers) CreateAgent(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[agentruntime.CreateRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Name, "name") {
		return
	}
	created, err := h.svc.CreateAgent(r.Context(), urlParam(r, "workspace"), req)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateAgent handles PUT /api/workspaces/{workspace}/agents/{name}
func (h *Handlers) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	spec, ok := readJSON[agentruntime.Spec](w, r)
	if !ok {
		return
	}
	updated, err := h.svc.UpdateAgent(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"), spec)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteAgent handles DELETE /api/workspaces/{workspace}/agents/{name}
func (h *Handlers) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAgent(r.Context(), urlParam(r, "workspace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ScaleAgent handles POST /api/workspaces/{workspace}/agents/{name}/scale
func (h *Handlers) ScaleAgent(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[agentruntime.ScaleRequest](w, r)
	if !ok {
		return
	}
	if req.Replicas < 0 {
		writeError(w, http.StatusBadRequest, "replicas must not be negative")
		return
	}
	if err := h.svc.ScaleAgent(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"), req.Replicas); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AgentLogs handles GET /api/workspaces/{workspace}/agents/{name}/logs
func (h *Handlers) AgentLogs(w http.ResponseWriter, r *http.Request) {
	opts := agentruntime.LogOptions{Replica: r.URL.Query().Get("replica")}
	if t := r.URL.Query().Get("tail"); t != "" {
		if parsed, err := strconv.Atoi(t); err == nil && parsed > 0 {
			opts.Tail = parsed
		}
	}
	lines, err := h.svc.AgentLogs(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"), opts)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, lines)
}

// AgentEvents handles GET /api/workspaces/{workspace}/agents/{name}/events
func (h *Handlers) AgentEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.AgentEvents(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
