package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/api/health", h.Health)
	r.Get("/api/costs", h.CostReport)

	r.Route("/api/workspaces/{workspace}", func(r chi.Router) {
		r.Use(h.countRequests)

		// Agent runtimes
		r.Get("/agents", h.ListAgents)
		r.Post("/agents", h.CreateAgent)
		r.Get("/agents/{name}", h.GetAgent)
		r.Put("/agents/{name}", h.UpdateAgent)
		r.Delete("/agents/{name}", h.DeleteAgent)
		r.Post("/agents/{name}/scale", h.ScaleAgent)
		r.Get("/agents/{name}/logs", h.AgentLogs)
		r.Get("/agents/{name}/events", h.AgentEvents)

		// Prompt packs
		r.Get("/promptpacks", h.ListPromptPacks)
		r.Post("/promptpacks", h.CreatePromptPack)
		r.Get("/promptpacks/{name}", h.GetPromptPack)
		r.Delete("/promptpacks/{name}", h.DeletePromptPack)
		r.Get("/promptpacks/{name}/content", h.PromptPackContent)

		// Tool registries
		r.Get("/toolregistries", h.ListToolRegistries)
		r.Post("/toolregistries", h.CreateToolRegistry)
		r.Get("/toolregistries/{name}", h.GetToolRegistry)
		r.Delete("/toolregistries/{name}", h.DeleteToolRegistry)

		// Providers
		r.Get("/providers", h.ListProviders)
		r.Post("/providers", h.CreateProvider)
		r.Get("/providers/{name}", h.GetProvider)
		r.Put("/providers/{name}", h.UpdateProvider)
		r.Delete("/providers/{name}", h.DeleteProvider)

		// Arena
		r.Get("/arena/sources", h.ListArenaSources)
		r.Post("/arena/sources", h.CreateArenaSource)
		r.Get("/arena/sources/{name}", h.GetArenaSource)
		r.Delete("/arena/sources/{name}", h.DeleteArenaSource)
		r.Post("/arena/sources/{name}/sync", h.SyncArenaSource)
		r.Get("/arena/sources/{name}/scenarios", h.ArenaScenarios)
		r.Get("/arena/configs", h.ListArenaConfigs)
		r.Post("/arena/configs", h.CreateArenaConfig)
		r.Get("/arena/configs/{name}", h.GetArenaConfig)
		r.Delete("/arena/configs/{name}", h.DeleteArenaConfig)
		r.Get("/arena/jobs", h.ListArenaJobs)
		r.Post("/arena/jobs", h.CreateArenaJob)
		r.Get("/arena/jobs/{name}", h.GetArenaJob)
		r.Delete("/arena/jobs/{name}", h.DeleteArenaJob)
		r.Post("/arena/jobs/{name}/cancel", h.CancelArenaJob)
		r.Get("/arena/jobs/{name}/results", h.ArenaJobResults)
		r.Get("/arena/jobs/{name}/metrics", h.ArenaJobMetrics)

		// Sessions
		r.Get("/sessions", h.ListSessions)
		r.Get("/sessions/{id}", h.GetSession)
		r.Get("/sessions/{id}/transcript", h.SessionTranscript)
		r.Get("/sessions/{id}/evals", h.SessionEvalResults)
	})

	// Secrets are namespace-scoped, not workspace-scoped.
	r.Get("/api/secrets", h.ListSecrets)
	r.Post("/api/secrets", h.CreateSecret)
	r.Get("/api/secrets/{namespace}/{name}", h.GetSecret)
	r.Delete("/api/secrets/{namespace}/{name}", h.DeleteSecret)

	// Realtime agent chat
	r.Get("/api/agents/{namespace}/{name}/ws", h.AgentChannel)
}
