package operator

import (
	"context"
	"net/http"

	"github.com/perchlabs/perch/internal/domain/agentruntime"
	"github.com/perchlabs/perch/internal/domain/resource"
)

// AgentsClient manages AgentRuntime resources.
type AgentsClient struct {
	rest *rest
}

// List returns all agent runtimes in the workspace.
func (c *AgentsClient) List(ctx context.Context, workspace string) ([]agentruntime.AgentRuntime, error) {
	items := []agentruntime.AgentRuntime{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "agents"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns one agent runtime, or nil when it does not exist.
func (c *AgentsClient) Get(ctx context.Context, workspace, name string) (*agentruntime.AgentRuntime, error) {
	var a agentruntime.AgentRuntime
	found, err := c.rest.getOne(ctx, workspacePath(workspace, "agents", name), &a)
	if err != nil || !found {
		return nil, err
	}
	return &a, nil
}

// Create deploys a new agent runtime.
func (c *AgentsClient) Create(ctx context.Context, workspace string, req agentruntime.CreateRequest) (*agentruntime.AgentRuntime, error) {
	var a agentruntime.AgentRuntime
	err := c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "agents"), req, &a, "Failed to create agent")
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update replaces the spec of an existing agent runtime.
func (c *AgentsClient) Update(ctx context.Context, workspace, name string, spec agentruntime.Spec) (*agentruntime.AgentRuntime, error) {
	var a agentruntime.AgentRuntime
	err := c.rest.write(ctx, http.MethodPut, workspacePath(workspace, "agents", name), spec, &a, "Failed to update agent")
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes an agent runtime.
func (c *AgentsClient) Delete(ctx context.Context, workspace, name string) error {
	return c.rest.write(ctx, http.MethodDelete, workspacePath(workspace, "agents", name), nil, nil, "Failed to delete agent")
}

// Scale adjusts the replica count of an agent runtime.
func (c *AgentsClient) Scale(ctx context.Context, workspace, name string, replicas int) error {
	req := agentruntime.ScaleRequest{Replicas: replicas}
	return c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "agents", name, "scale"), req, nil, "Failed to scale agent")
}

// Logs returns recent log lines from an agent runtime's replicas.
func (c *AgentsClient) Logs(ctx context.Context, workspace, name string, opts agentruntime.LogOptions) ([]string, error) {
	q := &query{}
	q.add("replica", opts.Replica)
	q.addInt("tail", opts.Tail)

	var out struct {
		Lines []string `json:"lines"`
	}
	if err := c.rest.getList(ctx, workspacePath(workspace, "agents", name, "logs")+q.encode(), &out); err != nil {
		return nil, err
	}
	if out.Lines == nil {
		out.Lines = []string{}
	}
	return out.Lines, nil
}

// Events returns backend events recorded for an agent runtime.
func (c *AgentsClient) Events(ctx context.Context, workspace, name string) ([]resource.Event, error) {
	items := []resource.Event{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "agents", name, "events"), &items); err != nil {
		return nil, err
	}
	return items, nil
}
