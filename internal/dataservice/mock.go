package dataservice

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/perchlabs/perch/internal/adapter/operator"
	"github.com/perchlabs/perch/internal/agentconn"
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

// Mock serves seeded in-memory fixtures and accepts mutations against
// them. Nothing persists across restarts. It mirrors the live error
// conventions: absent resources are (nil, nil) and writes against missing
// or conflicting resources fail with a typed API error.
type Mock struct {
	log *slog.Logger

	mu         sync.Mutex
	agents     []agentruntime.AgentRuntime
	packs      []promptpack.PromptPack
	registries []toolregistry.ToolRegistry
	providers  []provider.Provider
	sources    []arena.Source
	configs    []arena.Config
	jobs       []arena.Job
	secrets    []secret.Meta
	sessions   []session.Session
	rawMsgs    map[string][]session.RawMessage
	evals      map[string][]session.EvalResult
	costReport *costdomain.Report
}

// NewMock creates a mock service seeded with demo fixtures.
func NewMock(log *slog.Logger) *Mock {
	if log == nil {
		log = slog.Default()
	}
	m := &Mock{log: log}
	seedFixtures(m)
	return m
}

func (m *Mock) Mode() string { return "demo" }

func (m *Mock) Healthy(context.Context) error { return nil }

func notFound(kind, name string) error {
	return &operator.APIError{
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("%s %q not found", kind, name),
	}
}

func conflict(kind, name string) error {
	return &operator.APIError{
		StatusCode: http.StatusConflict,
		Message:    fmt.Sprintf("%s %q already exists", kind, name),
	}
}

// inWorkspace matches fixture metadata against the requested workspace. An
// empty workspace matches everything.
func inWorkspace(meta resource.Meta, workspace string) bool {
	return workspace == "" || meta.Namespace == workspace
}

func (m *Mock) ListAgents(_ context.Context, workspace string) ([]agentruntime.AgentRuntime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []agentruntime.AgentRuntime{}
	for _, a := range m.agents {
		if inWorkspace(a.Meta, workspace) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Mock) GetAgent(_ context.Context, workspace, name string) (*agentruntime.AgentRuntime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if inWorkspace(a.Meta, workspace) && a.Meta.Name == name {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Mock) CreateAgent(_ context.Context, workspace string, req agentruntime.CreateRequest) (*agentruntime.AgentRuntime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.Meta.Namespace == workspace && a.Meta.Name == req.Name {
			return nil, conflict("agent", req.Name)
		}
	}
	now := time.Now().UTC()
	spec := req.Spec
	spec.Limits = agentruntime.EffectiveLimits(spec)
	created := agentruntime.AgentRuntime{
		Meta: resource.Meta{Name: req.Name, Namespace: workspace, CreatedAt: now, UpdatedAt: now},
		Spec: spec,
		Status: agentruntime.Status{
			Phase:         agentruntime.PhaseRunning,
			ReadyReplicas: req.Spec.Replicas,
		},
	}
	m.agents = append(m.agents, created)
	return &created, nil
}

func (m *Mock) UpdateAgent(_ context.Context, workspace, name string, spec agentruntime.Spec) (*agentruntime.AgentRuntime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.agents {
		a := &m.agents[i]
		if a.Meta.Namespace == workspace && a.Meta.Name == name {
			a.Spec = spec
			a.Status.ReadyReplicas = spec.Replicas
			a.Meta.UpdatedAt = time.Now().UTC()
			out := *a
			return &out, nil
		}
	}
	return nil, notFound("agent", name)
}

func (m *Mock) DeleteAgent(_ context.Context, workspace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.agents {
		if a.Meta.Namespace == workspace && a.Meta.Name == name {
			m.agents = append(m.agents[:i], m.agents[i+1:]...)
			return nil
		}
	}
	return notFound("agent", name)
}

func (m *Mock) ScaleAgent(_ context.Context, workspace, name string, replicas int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.agents {
		a := &m.agents[i]
		if a.Meta.Namespace == workspace && a.Meta.Name == name {
			a.Spec.Replicas = replicas
			a.Status.ReadyReplicas = replicas
			a.Meta.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return notFound("agent", name)
}

func (m *Mock) AgentLogs(_ context.Context, workspace, name string, opts agentruntime.LogOptions) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.Meta.Namespace == workspace && a.Meta.Name == name {
			lines := demoLogLines(name, opts.Replica)
			if opts.Tail > 0 && opts.Tail < len(lines) {
				lines = lines[len(lines)-opts.Tail:]
			}
			return lines, nil
		}
	}
	return []string{}, nil
}

func (m *Mock) AgentEvents(_ context.Context, workspace, name string) ([]resource.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.Meta.Namespace == workspace && a.Meta.Name == name {
			return demoEvents(a), nil
		}
	}
	return []resource.Event{}, nil
}

func (m *Mock) ListPromptPacks(_ context.Context, workspace string) ([]promptpack.PromptPack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []promptpack.PromptPack{}
	for _, p := range m.packs {
		if inWorkspace(p.Meta, workspace) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Mock) GetPromptPack(_ context.Context, workspace, name string) (*promptpack.PromptPack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.packs {
		if inWorkspace(p.Meta, workspace) && p.Meta.Name == name {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Mock) CreatePromptPack(_ context.Context, workspace string, req promptpack.CreateRequest) (*promptpack.PromptPack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.packs {
		if p.Meta.Namespace == workspace && p.Meta.Name == req.Name {
			return nil, conflict("prompt pack", req.Name)
		}
	}
	now := time.Now().UTC()
	created := promptpack.PromptPack{
		Meta:   resource.Meta{Name: req.Name, Namespace: workspace, CreatedAt: now, UpdatedAt: now},
		Spec:   req.Spec,
		Status: promptpack.Status{Phase: promptpack.PhaseReady},
	}
	m.packs = append(m.packs, created)
	return &created, nil
}

func (m *Mock) DeletePromptPack(_ context.Context, workspace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.packs {
		if p.Meta.Namespace == workspace && p.Meta.Name == name {
			m.packs = append(m.packs[:i], m.packs[i+1:]...)
			return nil
		}
	}
	return notFound("prompt pack", name)
}

func (m *Mock) PromptPackContent(_ context.Context, workspace, name string) ([]promptpack.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.packs {
		if inWorkspace(p.Meta, workspace) && p.Meta.Name == name {
			return demoPackContent(p), nil
		}
	}
	return []promptpack.Content{}, nil
}

func (m *Mock) ListToolRegistries(_ context.Context, workspace string) ([]toolregistry.ToolRegistry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []toolregistry.ToolRegistry{}
	for _, r := range m.registries {
		if inWorkspace(r.Meta, workspace) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Mock) GetToolRegistry(_ context.Context, workspace, name string) (*toolregistry.ToolRegistry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.registries {
		if inWorkspace(r.Meta, workspace) && r.Meta.Name == name {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Mock) CreateToolRegistry(_ context.Context, workspace string, req toolregistry.CreateRequest) (*toolregistry.ToolRegistry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.registries {
		if r.Meta.Namespace == workspace && r.Meta.Name == req.Name {
			return nil, conflict("tool registry", req.Name)
		}
	}
	now := time.Now().UTC()
	created := toolregistry.ToolRegistry{
		Meta: resource.Meta{Name: req.Name, Namespace: workspace, CreatedAt: now, UpdatedAt: now},
		Spec: req.Spec,
		Status: toolregistry.Status{
			Phase:     toolregistry.PhaseReady,
			ToolCount: len(req.Spec.Tools),
		},
	}
	m.registries = append(m.registries, created)
	return &created, nil
}

func (m *Mock) DeleteToolRegistry(_ context.Context, workspace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.registries {
		if r.Meta.Namespace == workspace && r.Meta.Name == name {
			m.registries = append(m.registries[:i], m.registries[i+1:]...)
			return nil
		}
	}
	return notFound("tool registry", name)
}

func (m *Mock) ListProviders(_ context.Context, workspace string) ([]provider.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []provider.Provider{}
	for _, p := range m.providers {
		if inWorkspace(p.Meta, workspace) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Mock) GetProvider(_ context.Context, workspace, name string) (*provider.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.providers {
		if inWorkspace(p.Meta, workspace) && p.Meta.Name == name {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Mock) CreateProvider(_ context.Context, workspace string, req provider.CreateRequest) (*provider.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.providers {
		if p.Meta.Namespace == workspace && p.Meta.Name == req.Name {
			return nil, conflict("provider", req.Name)
		}
	}
	now := time.Now().UTC()
	created := provider.Provider{
		Meta:   resource.Meta{Name: req.Name, Namespace: workspace, CreatedAt: now, UpdatedAt: now},
		Spec:   req.Spec,
		Status: provider.Status{Phase: provider.PhaseReady},
	}
	m.providers = append(m.providers, created)
	return &created, nil
}

func (m *Mock) UpdateProvider(_ context.Context, workspace, name string, spec provider.Spec) (*provider.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.providers {
		p := &m.providers[i]
		if p.Meta.Namespace == workspace && p.Meta.Name == name {
			p.Spec = spec
			p.Meta.UpdatedAt = time.Now().UTC()
			out := *p
			return &out, nil
		}
	}
	return nil, notFound("provider", name)
}

func (m *Mock) DeleteProvider(_ context.Context, workspace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.providers {
		if p.Meta.Namespace == workspace && p.Meta.Name == name {
			m.providers = append(m.providers[:i], m.providers[i+1:]...)
			return nil
		}
	}
	return notFound("provider", name)
}

func (m *Mock) ListArenaSources(_ context.Context, workspace string) ([]arena.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []arena.Source{}
	for _, s := range m.sources {
		if inWorkspace(s.Meta, workspace) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Mock) GetArenaSource(_ context.Context, workspace, name string) (*arena.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if inWorkspace(s.Meta, workspace) && s.Meta.Name == name {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Mock) CreateArenaSource(_ context.Context, workspace string, req arena.CreateSourceRequest) (*arena.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if s.Meta.Namespace == workspace && s.Meta.Name == req.Name {
			return nil, conflict("arena source", req.Name)
		}
	}
	now := time.Now().UTC()
	created := arena.Source{
		Meta:   resource.Meta{Name: req.Name, Namespace: workspace, CreatedAt: now, UpdatedAt: now},
		Spec:   req.Spec,
		Status: arena.SourceStatus{Phase: arena.SourcePhasePending},
	}
	m.sources = append(m.sources, created)
	return &created, nil
}

func (m *Mock) DeleteArenaSource(_ context.Context, workspace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sources {
		if s.Meta.Namespace == workspace && s.Meta.Name == name {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return nil
		}
	}
	return notFound("arena source", name)
}

func (m *Mock) SyncArenaSource(_ context.Context, workspace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sources {
		s := &m.sources[i]
		if s.Meta.Namespace == workspace && s.Meta.Name == name {
			now := time.Now().UTC()
			s.Status.Phase = arena.SourcePhaseReady
			s.Status.LastSyncTime = &now
			return nil
		}
	}
	return notFound("arena source", name)
}

func (m *Mock) ArenaScenarios(_ context.Context, workspace, name string) ([]arena.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if inWorkspace(s.Meta, workspace) && s.Meta.Name == name {
			return demoScenarios(s), nil
		}
	}
	return []arena.Scenario{}, nil
}

func (m *Mock) ListArenaConfigs(_ context.Context, workspace string) ([]arena.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []arena.Config{}
	for _, c := range m.configs {
		if inWorkspace(c.Meta, workspace) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Mock) GetArenaConfig(_ context.Context, workspace, name string) (*arena.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.configs {
		if inWorkspace(c.Meta, workspace) && c.Meta.Name == name {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Mock) CreateArenaConfig(_ context.Context, workspace string, req arena.CreateConfigRequest) (*arena.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.configs {
		if c.Meta.Namespace == workspace && c.Meta.Name == req.Name {
			return nil, conflict("arena config", req.Name)
		}
	}
	now := time.Now().UTC()
	created := arena.Config{
		Meta: resource.Meta{Name: req.Name, Namespace: workspace, CreatedAt: now, UpdatedAt: now},
		Spec: req.Spec,
	}
	m.configs = append(m.configs, created)
	return &created, nil
}

func (m *Mock) DeleteArenaConfig(_ context.Context, workspace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.configs {
		if c.Meta.Namespace == workspace && c.Meta.Name == name {
			m.configs = append(m.configs[:i], m.configs[i+1:]...)
			return nil
		}
	}
	return notFound("arena config", name)
}

func (m *Mock) ListArenaJobs(_ context.Context, workspace string, opts operator.JobListOptions) ([]arena.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []arena.Job{}
	for _, j := range m.jobs {
		if !inWorkspace(j.Meta, workspace) {
			continue
		}
		if opts.Type != "" && j.Spec.Type != opts.Type {
			continue
		}
		if opts.Phase != "" && j.Status.Phase != opts.Phase {
			continue
		}
		out = append(out, j)
	}
	if opts.Sort == "recent" {
		sort.Slice(out, func(i, j int) bool {
			return out[i].Meta.CreatedAt.After(out[j].Meta.CreatedAt)
		})
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *Mock) GetArenaJob(_ context.Context, workspace, name string) (*arena.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if inWorkspace(j.Meta, workspace) && j.Meta.Name == name {
			out := j
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Mock) CreateArenaJob(_ context.Context, workspace string, req arena.CreateJobRequest) (*arena.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.Meta.Namespace == workspace && j.Meta.Name == req.Name {
			return nil, conflict("arena job", req.Name)
		}
	}
	now := time.Now().UTC()
	created := arena.Job{
		Meta:   resource.Meta{Name: req.Name, Namespace: workspace, CreatedAt: now, UpdatedAt: now},
		Spec:   req.Spec,
		Status: arena.JobStatus{Phase: arena.JobPhasePending},
	}
	m.jobs = append(m.jobs, created)
	return &created, nil
}

func (m *Mock) CancelArenaJob(_ context.Context, workspace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.jobs {
		j := &m.jobs[i]
		if j.Meta.Namespace == workspace && j.Meta.Name == name {
			if j.Status.Phase.Terminal() {
				return &operator.APIError{
					StatusCode: http.StatusConflict,
					Message:    fmt.Sprintf("arena job %q is already %s", name, j.Status.Phase),
				}
			}
			now := time.Now().UTC()
			j.Status.Phase = arena.JobPhaseCancelled
			j.Status.CompletionTime = &now
			return nil
		}
	}
	return notFound("arena job", name)
}

func (m *Mock) DeleteArenaJob(_ context.Context, workspace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, j := range m.jobs {
		if j.Meta.Namespace == workspace && j.Meta.Name == name {
			m.jobs = append(m.jobs[:i], m.jobs[i+1:]...)
			return nil
		}
	}
	return notFound("arena job", name)
}

func (m *Mock) ArenaJobResults(_ context.Context, workspace, name string) ([]arena.JobResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if inWorkspace(j.Meta, workspace) && j.Meta.Name == name {
			return demoJobResults(j), nil
		}
	}
	return []arena.JobResult{}, nil
}

func (m *Mock) ArenaJobMetrics(_ context.Context, workspace, name string) (*arena.JobMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if inWorkspace(j.Meta, workspace) && j.Meta.Name == name {
			return demoJobMetrics(j), nil
		}
	}
	return nil, nil
}

func (m *Mock) ListSecrets(_ context.Context, namespace string) ([]secret.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []secret.Meta{}
	for _, s := range m.secrets {
		if namespace == "" || s.Namespace == namespace {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Mock) GetSecret(_ context.Context, namespace, name string) (*secret.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.secrets {
		if (namespace == "" || s.Namespace == namespace) && s.Name == name {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Mock) CreateSecret(_ context.Context, req secret.CreateRequest) (*secret.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.secrets {
		if s.Namespace == req.Namespace && s.Name == req.Name {
			return nil, conflict("secret", req.Name)
		}
	}
	// Only key names are retained; the values never leave this call.
	keys := make([]string, 0, len(req.Values))
	for k := range req.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	created := secret.Meta{
		Name:      req.Name,
		Namespace: req.Namespace,
		Keys:      keys,
		CreatedAt: time.Now().UTC(),
	}
	m.secrets = append(m.secrets, created)
	return &created, nil
}

func (m *Mock) DeleteSecret(_ context.Context, namespace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.secrets {
		if s.Namespace == namespace && s.Name == name {
			m.secrets = append(m.secrets[:i], m.secrets[i+1:]...)
			return nil
		}
	}
	return notFound("secret", name)
}

func (m *Mock) ListSessions(_ context.Context, workspace string, opts session.ListOptions) ([]session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []session.Session{}
	for _, s := range m.sessions {
		if workspace != "" && s.Namespace != workspace {
			continue
		}
		if opts.AgentName != "" && s.AgentName != opts.AgentName {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		out = append(out, s)
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *Mock) GetSession(_ context.Context, workspace, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if (workspace == "" || s.Namespace == workspace) && s.ID == id {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Mock) SessionTranscript(ctx context.Context, workspace, id string) ([]session.Message, session.Metrics, error) {
	sess, err := m.GetSession(ctx, workspace, id)
	if err != nil || sess == nil {
		return []session.Message{}, session.Metrics{}, err
	}

	m.mu.Lock()
	raw := m.rawMsgs[id]
	m.mu.Unlock()

	messages := transcript.Reconstruct(raw)
	return messages, transcript.Metrics(messages, sess.Model), nil
}

func (m *Mock) SessionEvalResults(_ context.Context, _, id string) ([]session.EvalResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if results, ok := m.evals[id]; ok {
		return results, nil
	}
	return []session.EvalResult{}, nil
}

func (m *Mock) CostReport(context.Context) *costdomain.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.costReport
}

func (m *Mock) MetricsDashboardURL() string { return "" }

// Connection returns a timer-driven mock channel.
func (m *Mock) Connection(namespace, name string) agentconn.Connection {
	return agentconn.NewMock(m.log.With("agent", name, "namespace", namespace))
}
