package http

import (
	"net/http"
	"strconv"

	"github.com/perchlabs/perch/internal/domain/secret"
	"github.com/perchlabs/perch/internal/domain/session"
)

// --- Sessions ---

// ListSessions handles GET /api/workspaces/{workspace}/sessions
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := session.ListOptions{
		AgentName: q.Get("agent"),
		Status:    session.Status(q.Get("status")),
	}
	if l := q.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			opts.Limit = parsed
		}
	}
	sessions, err := h.svc.ListSessions(r.Context(), urlParam(r, "workspace"), opts)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GetSession handles GET /api/workspaces/{workspace}/sessions/{id}
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.GetSession(r.Context(), urlParam(r, "workspace"), urlParam(r, "id"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if sess == nil {
		writeNotFound(w, "session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// transcriptResponse pairs the reconstructed conversation with its derived
// metrics.
type transcriptResponse struct {
	Messages []session.Message `json:"messages"`
	Metrics  session.Metrics   `json:"metrics"`
}

// SessionTranscript handles GET /api/workspaces/{workspace}/sessions/{id}/transcript
func (h *Handlers) SessionTranscript(w http.ResponseWriter, r *http.Request) {
	messages, metrics, err := h.svc.SessionTranscript(r.Context(), urlParam(r, "workspace"), urlParam(r, "id"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if messages == nil {
		messages = []session.Message{}
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Messages: messages, Metrics: metrics})
}

// SessionEvalResults handles GET /api/workspaces/{workspace}/sessions/{id}/evals
func (h *Handlers) SessionEvalResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.SessionEvalResults(r.Context(), urlParam(r, "workspace"), urlParam(r, "id"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if results == nil {
		results = []session.EvalResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// --- Secrets ---

// ListSecrets handles GET /api/secrets?namespace=...
func (h *Handlers) ListSecrets(w http.ResponseWriter, r *http.Request) {
	secrets, err := h.svc.ListSecrets(r.Context(), r.URL.Query().Get("namespace"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if secrets == nil {
		secrets = []secret.Meta{}
	}
	writeJSON(w, http.StatusOK, secrets)
}

// GetSecret handles GET /api/secrets/{namespace}/{name}
func (h *Handlers) GetSecret(w http.ResponseWriter, r *http.Request) {
	meta, err := h.svc.GetSecret(r.Context(), urlParam(r, "namespace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if meta == nil {
		writeNotFound(w, "secret")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// CreateSecret handles POST /api/secrets
func (h *Handlers) CreateSecret(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[secret.CreateRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Name, "name") || !requireField(w, req.Namespace, "namespace") {
		return
	}
	if len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "at least one value is required")
		return
	}
	created, err := h.svc.CreateSecret(r.Context(), req)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteSecret handles DELETE /api/secrets/{namespace}/{name}
func (h *Handlers) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSecret(r.Context(), urlParam(r, "namespace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
