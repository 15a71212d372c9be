// Package dataservice exposes the single facade the HTTP layer talks to.
// Exactly one implementation is active per process: Live speaks to the
// operator and metrics backends, Mock serves in-memory fixtures for demos
// and local frontend work. Both honor the same conventions: absent
// resources are (nil, nil), lists the caller may not read come back empty,
// and write failures carry the backend's message.
package dataservice

import (
	"context"
	"log/slog"

	"github.com/perchlabs/perch/internal/adapter/operator"
	"github.com/perchlabs/perch/internal/agentconn"
	"github.com/perchlabs/perch/internal/config"
	"github.com/perchlabs/perch/internal/domain/agentruntime"
	"github.com/perchlabs/perch/internal/domain/arena"
	costdomain "github.com/perchlabs/perch/internal/domain/cost"
	"github.com/perchlabs/perch/internal/domain/promptpack"
	"github.com/perchlabs/perch/internal/domain/provider"
	"github.com/perchlabs/perch/internal/domain/resource"
	"github.com/perchlabs/perch/internal/domain/secret"
	"github.com/perchlabs/perch/internal/domain/session"
	"github.com/perchlabs/perch/internal/domain/toolregistry"
)

// Service is the full data surface of the dashboard.
type Service interface {
	// Mode identifies the active implementation: "live" or "demo".
	Mode() string
	// Healthy reports whether the resource backend answers.
	Healthy(ctx context.Context) error

	ListAgents(ctx context.Context, workspace string) ([]agentruntime.AgentRuntime, error)
	GetAgent(ctx context.Context, workspace, name string) (*agentruntime.AgentRuntime, error)
	CreateAgent(ctx context.Context, workspace string, req agentruntime.CreateRequest) (*agentruntime.AgentRuntime, error)
	UpdateAgent(ctx context.Context, workspace, name string, spec agentruntime.Spec) (*agentruntime.AgentRuntime, error)
	DeleteAgent(ctx context.Context, workspace, name string) error
	ScaleAgent(ctx context.Context, workspace, name string, replicas int) error
	AgentLogs(ctx context.Context, workspace, name string, opts agentruntime.LogOptions) ([]string, error)
	AgentEvents(ctx context.Context, workspace, name string) ([]resource.Event, error)

	ListPromptPacks(ctx context.Context, workspace string) ([]promptpack.PromptPack, error)
	GetPromptPack(ctx context.Context, workspace, name string) (*promptpack.PromptPack, error)
	CreatePromptPack(ctx context.Context, workspace string, req promptpack.CreateRequest) (*promptpack.PromptPack, error)
	DeletePromptPack(ctx context.Context, workspace, name string) error
	PromptPackContent(ctx context.Context, workspace, name string) ([]promptpack.Content, error)

	ListToolRegistries(ctx context.Context, workspace string) ([]toolregistry.ToolRegistry, error)
	GetToolRegistry(ctx context.Context, workspace, name string) (*toolregistry.ToolRegistry, error)
	CreateToolRegistry(ctx context.Context, workspace string, req toolregistry.CreateRequest) (*toolregistry.ToolRegistry, error)
	DeleteToolRegistry(ctx context.Context, workspace, name string) error

	ListProviders(ctx context.Context, workspace string) ([]provider.Provider, error)
	GetProvider(ctx context.Context, workspace, name string) (*provider.Provider, error)
	CreateProvider(ctx context.Context, workspace string, req provider.CreateRequest) (*provider.Provider, error)
	UpdateProvider(ctx context.Context, workspace, name string, spec provider.Spec) (*provider.Provider, error)
	DeleteProvider(ctx context.Context, workspace, name string) error

	ListArenaSources(ctx context.Context, workspace string) ([]arena.Source, error)
	GetArenaSource(ctx context.Context, workspace, name string) (*arena.Source, error)
	CreateArenaSource(ctx context.Context, workspace string, req arena.CreateSourceRequest) (*arena.Source, error)
	DeleteArenaSource(ctx context.Context, workspace, name string) error
	SyncArenaSource(ctx context.Context, workspace, name string) error
	ArenaScenarios(ctx context.Context, workspace, name string) ([]arena.Scenario, error)

	ListArenaConfigs(ctx context.Context, workspace string) ([]arena.Config, error)
	GetArenaConfig(ctx context.Context, workspace, name string) (*arena.Config, error)
	CreateArenaConfig(ctx context.Context, workspace string, req arena.CreateConfigRequest) (*arena.Config, error)
	DeleteArenaConfig(ctx context.Context, workspace, name string) error

	ListArenaJobs(ctx context.Context, workspace string, opts operator.JobListOptions) ([]arena.Job, error)
	GetArenaJob(ctx context.Context, workspace, name string) (*arena.Job, error)
	CreateArenaJob(ctx context.Context, workspace string, req arena.CreateJobRequest) (*arena.Job, error)
	CancelArenaJob(ctx context.Context, workspace, name string) error
	DeleteArenaJob(ctx context.Context, workspace, name string) error
	ArenaJobResults(ctx context.Context, workspace, name string) ([]arena.JobResult, error)
	ArenaJobMetrics(ctx context.Context, workspace, name string) (*arena.JobMetrics, error)

	ListSecrets(ctx context.Context, namespace string) ([]secret.Meta, error)
	GetSecret(ctx context.Context, namespace, name string) (*secret.Meta, error)
	CreateSecret(ctx context.Context, req secret.CreateRequest) (*secret.Meta, error)
	DeleteSecret(ctx context.Context, namespace, name string) error

	ListSessions(ctx context.Context, workspace string, opts session.ListOptions) ([]session.Session, error)
	GetSession(ctx context.Context, workspace, id string) (*session.Session, error)
	// SessionTranscript returns the reconstructed conversation and the
	// metrics derived from it.
	SessionTranscript(ctx context.Context, workspace, id string) ([]session.Message, session.Metrics, error)
	SessionEvalResults(ctx context.Context, workspace, id string) ([]session.EvalResult, error)

	// CostReport never fails; backend trouble yields an unavailable report.
	CostReport(ctx context.Context) *costdomain.Report
	// MetricsDashboardURL is the external dashboard link surfaced to the
	// frontend; empty when none is configured.
	MetricsDashboardURL() string

	// Connection returns a fresh realtime channel for one agent. The
	// caller owns its lifecycle.
	Connection(namespace, name string) agentconn.Connection
}

// New selects the implementation from the demo-mode flag. The choice is
// made once; there is no runtime switching.
func New(cfg config.Config, log *slog.Logger) (Service, error) {
	if cfg.DemoMode {
		return NewMock(log), nil
	}
	return NewLive(cfg, log)
}
