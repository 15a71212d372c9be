package dataservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/perchlabs/perch/internal/adapter/operator"
	"github.com/perchlabs/perch/internal/adapter/prom"
	"github.com/perchlabs/perch/internal/agentconn"
	"github.com/perchlabs/perch/internal/config"
	"github.com/perchlabs/perch/internal/cost"
	"github.com/perchlabs/perch/internal/domain/agentruntime"
	"github.com/perchlabs/perch/internal/domain/arena"
	costdomain "github.com/perchlabs/perch/internal/domain/cost"
	"github.com/perchlabs/perch/internal/domain/promptpack"
	"github.com/perchlabs/perch/internal/domain/provider"
	"github.com/perchlabs/perch/internal/domain/resource"
	"github.com/perchlabs/perch/internal/domain/secret"
	"github.com/perchlabs/perch/internal/domain/session"
	"github.com/perchlabs/perch/internal/domain/toolregistry"
	"github.com/perchlabs/perch/internal/transcript"
)

// Live serves the dashboard from the operator's REST API and the metrics
// backend. Constructing it eagerly builds all sub-clients; a missing
// metrics configuration only degrades cost reports.
type Live struct {
	op      *operator.Client
	metrics *prom.Client
	costs   *cost.Service
	cfg     config.Config
	log     *slog.Logger
}

// NewLive wires the live implementation from configuration.
func NewLive(cfg config.Config, log *slog.Logger) (*Live, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Operator.BaseURL == "" {
		return nil, fmt.Errorf("dataservice: operator base URL is required outside demo mode")
	}

	op := operator.NewClient(cfg.Operator.BaseURL, operator.WithTimeout(cfg.Operator.Timeout))

	var (
		metrics *prom.Client
		querier cost.Querier
	)
	if cfg.Metrics.BaseURL != "" {
		metrics = prom.NewClient(cfg.Metrics.BaseURL, cfg.Metrics.Timeout)
		querier = metrics
	}

	var reportCache *cost.Cache
	if cfg.Cache.MaxSizeMB > 0 {
		var err error
		reportCache, err = cost.NewCache(cfg.Cache.MaxSizeMB, cfg.Cache.CostTTL)
		if err != nil {
			return nil, fmt.Errorf("dataservice: create cost cache: %w", err)
		}
	}

	return &Live{
		op:      op,
		metrics: metrics,
		costs:   cost.NewService(querier, reportCache, log.With("component", "cost")),
		cfg:     cfg,
		log:     log,
	}, nil
}

func (l *Live) Mode() string { return "live" }

func (l *Live) Healthy(ctx context.Context) error {
	return l.op.Ping(ctx)
}

func (l *Live) ListAgents(ctx context.Context, workspace string) ([]agentruntime.AgentRuntime, error) {
	return l.op.Agents.List(ctx, workspace)
}

func (l *Live) GetAgent(ctx context.Context, workspace, name string) (*agentruntime.AgentRuntime, error) {
	return l.op.Agents.Get(ctx, workspace, name)
}

func (l *Live) CreateAgent(ctx context.Context, workspace string, req agentruntime.CreateRequest) (*agentruntime.AgentRuntime, error) {
	return l.op.Agents.Create(ctx, workspace, req)
}

func (l *Live) UpdateAgent(ctx context.Context, workspace, name string, spec agentruntime.Spec) (*agentruntime.AgentRuntime, error) {
	return l.op.Agents.Update(ctx, workspace, name, spec)
}

func (l *Live) DeleteAgent(ctx context.Context, workspace, name string) error {
	return l.op.Agents.Delete(ctx, workspace, name)
}

func (l *Live) ScaleAgent(ctx context.Context, workspace, name string, replicas int) error {
	return l.op.Agents.Scale(ctx, workspace, name, replicas)
}

func (l *Live) AgentLogs(ctx context.Context, workspace, name string, opts agentruntime.LogOptions) ([]string, error) {
	return l.op.Agents.Logs(ctx, workspace, name, opts)
}

func (l *Live) AgentEvents(ctx context.Context, workspace, name string) ([]resource.Event, error) {
	return l.op.Agents.Events(ctx, workspace, name)
}

func (l *Live) ListPromptPacks(ctx context.Context, workspace string) ([]promptpack.PromptPack, error) {
	return l.op.PromptPacks.List(ctx, workspace)
}

func (l *Live) GetPromptPack(ctx context.Context, workspace, name string) (*promptpack.PromptPack, error) {
	return l.op.PromptPacks.Get(ctx, workspace, name)
}

func (l *Live) CreatePromptPack(ctx context.Context, workspace string, req promptpack.CreateRequest) (*promptpack.PromptPack, error) {
	return l.op.PromptPacks.Create(ctx, workspace, req)
}

func (l *Live) DeletePromptPack(ctx context.Context, workspace, name string) error {
	return l.op.PromptPacks.Delete(ctx, workspace, name)
}

func (l *Live) PromptPackContent(ctx context.Context, workspace, name string) ([]promptpack.Content, error) {
	return l.op.PromptPacks.Content(ctx, workspace, name)
}

func (l *Live) ListToolRegistries(ctx context.Context, workspace string) ([]toolregistry.ToolRegistry, error) {
	return l.op.ToolRegistries.List(ctx, workspace)
}

func (l *Live) GetToolRegistry(ctx context.Context, workspace, name string) (*toolregistry.ToolRegistry, error) {
	return l.op.ToolRegistries.Get(ctx, workspace, name)
}

func (l *Live) CreateToolRegistry(ctx context.Context, workspace string, req toolregistry.CreateRequest) (*toolregistry.ToolRegistry, error) {
	return l.op.ToolRegistries.Create(ctx, workspace, req)
}

func (l *Live) DeleteToolRegistry(ctx context.Context, workspace, name string) error {
	return l.op.ToolRegistries.Delete(ctx, workspace, name)
}

func (l *Live) ListProviders(ctx context.Context, workspace string) ([]provider.Provider, error) {
	return l.op.Providers.List(ctx, workspace)
}

func (l *Live) GetProvider(ctx context.Context, workspace, name string) (*provider.Provider, error) {
	return l.op.Providers.Get(ctx, workspace, name)
}

func (l *Live) CreateProvider(ctx context.Context, workspace string, req provider.CreateRequest) (*provider.Provider, error) {
	return l.op.Providers.Create(ctx, workspace, req)
}

func (l *Live) UpdateProvider(ctx context.Context, workspace, name string, spec provider.Spec) (*provider.Provider, error) {
	return l.op.Providers.Update(ctx, workspace, name, spec)
}

func (l *Live) DeleteProvider(ctx context.Context, workspace, name string) error {
	return l.op.Providers.Delete(ctx, workspace, name)
}

func (l *Live) ListArenaSources(ctx context.Context, workspace string) ([]arena.Source, error) {
	return l.op.Arena.ListSources(ctx, workspace)
}

func (l *Live) GetArenaSource(ctx context.Context, workspace, name string) (*arena.Source, error) {
	return l.op.Arena.GetSource(ctx, workspace, name)
}

func (l *Live) CreateArenaSource(ctx context.Context, workspace string, req arena.CreateSourceRequest) (*arena.Source, error) {
	return l.op.Arena.CreateSource(ctx, workspace, req)
}

func (l *Live) DeleteArenaSource(ctx context.Context, workspace, name string) error {
	return l.op.Arena.DeleteSource(ctx, workspace, name)
}

func (l *Live) SyncArenaSource(ctx context.Context, workspace, name string) error {
	return l.op.Arena.SyncSource(ctx, workspace, name)
}

func (l *Live) ArenaScenarios(ctx context.Context, workspace, name string) ([]arena.Scenario, error) {
	return l.op.Arena.Scenarios(ctx, workspace, name)
}

func (l *Live) ListArenaConfigs(ctx context.Context, workspace string) ([]arena.Config, error) {
	return l.op.Arena.ListConfigs(ctx, workspace)
}

func (l *Live) GetArenaConfig(ctx context.Context, workspace, name string) (*arena.Config, error) {
	return l.op.Arena.GetConfig(ctx, workspace, name)
}

func (l *Live) CreateArenaConfig(ctx context.Context, workspace string, req arena.CreateConfigRequest) (*arena.Config, error) {
	return l.op.Arena.CreateConfig(ctx, workspace, req)
}

func (l *Live) DeleteArenaConfig(ctx context.Context, workspace, name string) error {
	return l.op.Arena.DeleteConfig(ctx, workspace, name)
}

func (l *Live) ListArenaJobs(ctx context.Context, workspace string, opts operator.JobListOptions) ([]arena.Job, error) {
	return l.op.Arena.ListJobs(ctx, workspace, opts)
}

func (l *Live) GetArenaJob(ctx context.Context, workspace, name string) (*arena.Job, error) {
	return l.op.Arena.GetJob(ctx, workspace, name)
}

func (l *Live) CreateArenaJob(ctx context.Context, workspace string, req arena.CreateJobRequest) (*arena.Job, error) {
	return l.op.Arena.CreateJob(ctx, workspace, req)
}

func (l *Live) CancelArenaJob(ctx context.Context, workspace, name string) error {
	return l.op.Arena.CancelJob(ctx, workspace, name)
}

func (l *Live) DeleteArenaJob(ctx context.Context, workspace, name string) error {
	return l.op.Arena.DeleteJob(ctx, workspace, name)
}

func (l *Live) ArenaJobResults(ctx context.Context, workspace, name string) ([]arena.JobResult, error) {
	return l.op.Arena.JobResults(ctx, workspace, name)
}

func (l *Live) ArenaJobMetrics(ctx context.Context, workspace, name string) (*arena.JobMetrics, error) {
	return l.op.Arena.JobMetrics(ctx, workspace, name)
}

func (l *Live) ListSecrets(ctx context.Context, namespace string) ([]secret.Meta, error) {
	return l.op.Secrets.List(ctx, namespace)
}

func (l *Live) GetSecret(ctx context.Context, namespace, name string) (*secret.Meta, error) {
	return l.op.Secrets.Get(ctx, namespace, name)
}

func (l *Live) CreateSecret(ctx context.Context, req secret.CreateRequest) (*secret.Meta, error) {
	return l.op.Secrets.Create(ctx, req)
}

func (l *Live) DeleteSecret(ctx context.Context, namespace, name string) error {
	return l.op.Secrets.Delete(ctx, namespace, name)
}

func (l *Live) ListSessions(ctx context.Context, workspace string, opts session.ListOptions) ([]session.Session, error) {
	return l.op.Sessions.List(ctx, workspace, opts)
}

func (l *Live) GetSession(ctx context.Context, workspace, id string) (*session.Session, error) {
	return l.op.Sessions.Get(ctx, workspace, id)
}

// SessionTranscript fetches the raw event stream and reconstructs the
// conversation. The session's model feeds the cost estimate; an absent
// session yields an empty transcript.
func (l *Live) SessionTranscript(ctx context.Context, workspace, id string) ([]session.Message, session.Metrics, error) {
	sess, err := l.op.Sessions.Get(ctx, workspace, id)
	if err != nil {
		return nil, session.Metrics{}, err
	}
	if sess == nil {
		return []session.Message{}, session.Metrics{}, nil
	}

	raw, err := l.op.Sessions.Messages(ctx, workspace, id)
	if err != nil {
		return nil, session.Metrics{}, err
	}

	messages := transcript.Reconstruct(raw)
	return messages, transcript.Metrics(messages, sess.Model), nil
}

func (l *Live) SessionEvalResults(ctx context.Context, workspace, id string) ([]session.EvalResult, error) {
	return l.op.Sessions.EvalResults(ctx, workspace, id)
}

func (l *Live) CostReport(ctx context.Context) *costdomain.Report {
	return l.costs.Report(ctx)
}

func (l *Live) MetricsDashboardURL() string {
	return l.cfg.Metrics.DashboardURL
}

// Connection builds a live channel for the agent. The realtime proxy wins
// over direct operator dialing when configured.
func (l *Live) Connection(namespace, name string) agentconn.Connection {
	base := l.cfg.Realtime.ProxyURL
	if base == "" || l.cfg.Realtime.Direct {
		base = strings.TrimRight(l.cfg.Operator.BaseURL, "/")
	}
	return agentconn.NewLive(namespace, name, base, nil, l.log)
}
