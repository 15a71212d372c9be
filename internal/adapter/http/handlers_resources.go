package http

import (
	"net/http"

	"github.com/perchlabs/perch/internal/domain/promptpack"
	"github.com/perchlabs/perch/internal/domain/provider"
	"github.com/perchlabs/perch/internal/domain/toolregistry"
)

// --- Prompt packs ---

// ListPromptPacks handles GET /api/workspaces/{workspace}/promptpacks
func (h *Handlers) ListPromptPacks(w http.ResponseWriter, r *http.Request) {
	packs, err := h.svc.ListPromptPacks(r.Context(), urlParam(r, "workspace"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if packs == nil {
		packs = []promptpack.PromptPack{}
	}
	writeJSON(w, http.StatusOK, packs)
}

// GetPromptPack handles GET /api/workspaces/{workspace}/promptpacks/{name}
func (h *Handlers) GetPromptPack(w http.ResponseWriter, r *http.Request) {
	pack, err := h.svc.GetPromptPack(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if pack == nil {
		writeNotFound(w, "prompt pack")
		return
	}
	writeJSON(w, http.StatusOK, pack)
}

// CreatePromptPack handles POST /api/workspaces/{workspace}/promptpacks
func (h *Handlers) CreatePromptPack(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[promptpack.CreateRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Name, "name") {
		return
	}
	created, err := h.svc.CreatePromptPack(r.Context(), urlParam(r, "workspace"), req)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeletePromptPack handles DELETE /api/workspaces/{workspace}/promptpacks/{name}
func (h *Handlers) DeletePromptPack(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePromptPack(r.Context(), urlParam(r, "workspace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PromptPackContent handles GET /api/workspaces/{workspace}/promptpacks/{name}/content
func (h *Handlers) PromptPackContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.svc.PromptPackContent(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// --- Tool registries ---

// ListToolRegistries handles GET /api/workspaces/{workspace}/toolregistries
func (h *Handlers) ListToolRegistries(w http.ResponseWriter, r *http.Request) {
	registries, err := h.svc.ListToolRegistries(r.Context(), urlParam(r, "workspace"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if registries == nil {
		registries = []toolregistry.ToolRegistry{}
	}
	writeJSON(w, http.StatusOK, registries)
}

// GetToolRegistry handles GET /api/workspaces/{workspace}/toolregistries/{name}
func (h *Handlers) GetToolRegistry(w http.ResponseWriter, r *http.Request) {
	registry, err := h.svc.GetToolRegistry(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if registry == nil {
		writeNotFound(w, "tool registry")
		return
	}
	writeJSON(w, http.StatusOK, registry)
}

// CreateToolRegistry handles POST /api/workspaces/{workspace}/toolregistries
func (h *Handlers) CreateToolRegistry(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[toolregistry.CreateRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Name, "name") {
		return
	}
	created, err := h.svc.CreateToolRegistry(r.Context(), urlParam(r, "workspace"), req)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteToolRegistry handles DELETE /api/workspaces/{workspace}/toolregistries/{name}
func (h *Handlers) DeleteToolRegistry(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteToolRegistry(r.Context(), urlParam(r, "workspace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Providers ---

// ListProviders handles GET /api/workspaces/{workspace}/providers
func (h *Handlers) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.svc.ListProviders(r.Context(), urlParam(r, "workspace"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if providers == nil {
		providers = []provider.Provider{}
	}
	writeJSON(w, http.StatusOK, providers)
}

// GetProvider handles GET /api/workspaces/{workspace}/providers/{name}
func (h *Handlers) GetProvider(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProvider(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if p == nil {
		writeNotFound(w, "provider")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProvider handles POST /api/workspaces/{workspace}/providers
func (h *Handlers) CreateProvider(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[provider.CreateRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Name, "name") {
		return
	}
	created, err := h.svc.CreateProvider(r.Context(), urlParam(r, "workspace"), req)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProvider handles PUT /api/workspaces/{workspace}/providers/{name}
func (h *Handlers) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	spec, ok := readJSON[provider.Spec](w, r)
	if !ok {
		return
	}
	updated, err := h.svc.UpdateProvider(r.Context(), urlParam(r, "workspace"), urlParam(r, "name"), spec)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProvider handles DELETE /api/workspaces/{workspace}/providers/{name}
func (h *Handlers) DeleteProvider(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProvider(r.Context(), urlParam(r, "workspace"), urlParam(r, "name")); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
