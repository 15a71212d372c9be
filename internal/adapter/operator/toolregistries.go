package operator

import (
	"context"
	"net/http"

	"github.com/perchlabs/perch/internal/domain/toolregistry"
)

// ToolRegistriesClient manages ToolRegistry resources.
type ToolRegistriesClient struct {
	rest *rest
}

// List returns all tool registries in the workspace.
func (c *ToolRegistriesClient) List(ctx context.Context, workspace string) ([]toolregistry.ToolRegistry, error) {
	items := []toolregistry.ToolRegistry{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "toolregistries"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns one tool registry, or nil when it does not exist.
func (c *ToolRegistriesClient) Get(ctx context.Context, workspace, name string) (*toolregistry.ToolRegistry, error) {
	var t toolregistry.ToolRegistry
	found, err := c.rest.getOne(ctx, workspacePath(workspace, "toolregistries", name), &t)
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

// Create registers a new tool registry.
func (c *ToolRegistriesClient) Create(ctx context.Context, workspace string, req toolregistry.CreateRequest) (*toolregistry.ToolRegistry, error) {
	var t toolregistry.ToolRegistry
	err := c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "toolregistries"), req, &t, "Failed to create tool registry")
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a tool registry.
func (c *ToolRegistriesClient) Delete(ctx context.Context, workspace, name string) error {
	return c.rest.write(ctx, http.MethodDelete, workspacePath(workspace, "toolregistries", name), nil, nil, "Failed to delete tool registry")
}
