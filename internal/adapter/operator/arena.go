package operator

import (
	"context"
	"net/http"

	"github.com/perchlabs/perch/internal/domain/arena"
)

// ArenaClient manages the evaluation-pipeline resources: sources, configs
// and jobs.
type ArenaClient struct {
	rest *rest
}

// --- Sources ---

// ListSources returns all arena sources in the workspace.
func (c *ArenaClient) ListSources(ctx context.Context, workspace string) ([]arena.Source, error) {
	items := []arena.Source{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "arenasources"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetSource returns one arena source, or nil when it does not exist.
func (c *ArenaClient) GetSource(ctx context.Context, workspace, name string) (*arena.Source, error) {
	var s arena.Source
	found, err := c.rest.getOne(ctx, workspacePath(workspace, "arenasources", name), &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

// CreateSource registers a new arena source.
func (c *ArenaClient) CreateSource(ctx context.Context, workspace string, req arena.CreateSourceRequest) (*arena.Source, error) {
	var s arena.Source
	err := c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "arenasources"), req, &s, "Failed to create arena source")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSource removes an arena source.
func (c *ArenaClient) DeleteSource(ctx context.Context, workspace, name string) error {
	return c.rest.write(ctx, http.MethodDelete, workspacePath(workspace, "arenasources", name), nil, nil, "Failed to delete arena source")
}

// SyncSource asks the backend to re-fetch the source's scenarios.
func (c *ArenaClient) SyncSource(ctx context.Context, workspace, name string) error {
	return c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "arenasources", name, "sync"), nil, nil, "Failed to sync arena source")
}

// Scenarios returns the evaluation cases supplied by a source.
func (c *ArenaClient) Scenarios(ctx context.Context, workspace, name string) ([]arena.Scenario, error) {
	items := []arena.Scenario{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "arenasources", name, "scenarios"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// --- Configs ---

// ListConfigs returns all arena configs in the workspace.
func (c *ArenaClient) ListConfigs(ctx context.Context, workspace string) ([]arena.Config, error) {
	items := []arena.Config{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "arenaconfigs"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetConfig returns one arena config, or nil when it does not exist.
func (c *ArenaClient) GetConfig(ctx context.Context, workspace, name string) (*arena.Config, error) {
	var cfg arena.Config
	found, err := c.rest.getOne(ctx, workspacePath(workspace, "arenaconfigs", name), &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

// CreateConfig registers a new arena config.
func (c *ArenaClient) CreateConfig(ctx context.Context, workspace string, req arena.CreateConfigRequest) (*arena.Config, error) {
	var cfg arena.Config
	err := c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "arenaconfigs"), req, &cfg, "Failed to create arena config")
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DeleteConfig removes an arena config.
func (c *ArenaClient) DeleteConfig(ctx context.Context, workspace, name string) error {
	return c.rest.write(ctx, http.MethodDelete, workspacePath(workspace, "arenaconfigs", name), nil, nil, "Failed to delete arena config")
}

// --- Jobs ---

// JobListOptions filters a job list query. Fields are serialized in the
// documented order: type, phase, limit, sort.
type JobListOptions struct {
	Type  string
	Phase arena.JobPhase
	Limit int
	Sort  string
}

// ListJobs returns arena jobs in the workspace matching opts.
func (c *ArenaClient) ListJobs(ctx context.Context, workspace string, opts JobListOptions) ([]arena.Job, error) {
	q := &query{}
	q.add("type", opts.Type)
	q.add("phase", string(opts.Phase))
	q.addInt("limit", opts.Limit)
	q.add("sort", opts.Sort)

	items := []arena.Job{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "arenajobs")+q.encode(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetJob returns one arena job, or nil when it does not exist.
func (c *ArenaClient) GetJob(ctx context.Context, workspace, name string) (*arena.Job, error) {
	var j arena.Job
	found, err := c.rest.getOne(ctx, workspacePath(workspace, "arenajobs", name), &j)
	if err != nil || !found {
		return nil, err
	}
	return &j, nil
}

// CreateJob starts a new arena job.
func (c *ArenaClient) CreateJob(ctx context.Context, workspace string, req arena.CreateJobRequest) (*arena.Job, error) {
	var j arena.Job
	err := c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "arenajobs"), req, &j, "Failed to create arena job")
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CancelJob requests cancellation of a running job.
func (c *ArenaClient) CancelJob(ctx context.Context, workspace, name string) error {
	return c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "arenajobs", name, "cancel"), nil, nil, "Failed to cancel arena job")
}

// DeleteJob removes a finished job and its results.
func (c *ArenaClient) DeleteJob(ctx context.Context, workspace, name string) error {
	return c.rest.write(ctx, http.MethodDelete, workspacePath(workspace, "arenajobs", name), nil, nil, "Failed to delete arena job")
}

// JobResults returns per-scenario outcomes of a job.
func (c *ArenaClient) JobResults(ctx context.Context, workspace, name string) ([]arena.JobResult, error) {
	items := []arena.JobResult{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "arenajobs", name, "results"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// JobMetrics returns aggregate scores of a job, or nil when the job does
// not exist.
func (c *ArenaClient) JobMetrics(ctx context.Context, workspace, name string) (*arena.JobMetrics, error) {
	var m arena.JobMetrics
	found, err := c.rest.getOne(ctx, workspacePath(workspace, "arenajobs", name, "metrics"), &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}
