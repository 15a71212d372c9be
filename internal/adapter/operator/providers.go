package operator

import (
	"context"
	"net/http"

	"github.com/perchlabs/perch/internal/domain/provider"
)

// ProvidersClient manages Provider resources.
type ProvidersClient struct {
	rest *rest
}

// List returns all providers in the workspace.
func (c *ProvidersClient) List(ctx context.Context, workspace string) ([]provider.Provider, error) {
	items := []provider.Provider{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "providers"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns one provider, or nil when it does not exist.
func (c *ProvidersClient) Get(ctx context.Context, workspace, name string) (*provider.Provider, error) {
	var p provider.Provider
	found, err := c.rest.getOne(ctx, workspacePath(workspace, "providers", name), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// Create registers a new provider.
func (c *ProvidersClient) Create(ctx context.Context, workspace string, req provider.CreateRequest) (*provider.Provider, error) {
	var p provider.Provider
	err := c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "providers"), req, &p, "Failed to create provider")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces the spec of an existing provider.
func (c *ProvidersClient) Update(ctx context.Context, workspace, name string, spec provider.Spec) (*provider.Provider, error) {
	var p provider.Provider
	err := c.rest.write(ctx, http.MethodPut, workspacePath(workspace, "providers", name), spec, &p, "Failed to update provider")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a provider.
func (c *ProvidersClient) Delete(ctx context.Context, workspace, name string) error {
	return c.rest.write(ctx, http.MethodDelete, workspacePath(workspace, "providers", name), nil, nil, "Failed to delete provider")
}
