package operator

import (
	"context"
	"net/http"

	"github.com/perchlabs/perch/internal/domain/promptpack"
)

// PromptPacksClient manages PromptPack resources.
type PromptPacksClient struct {
	rest *rest
}

// List returns all prompt packs in the workspace.
func (c *PromptPacksClient) List(ctx context.Context, workspace string) ([]promptpack.PromptPack, error) {
	items := []promptpack.PromptPack{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "promptpacks"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns one prompt pack, or nil when it does not exist.
func (c *PromptPacksClient) Get(ctx context.Context, workspace, name string) (*promptpack.PromptPack, error) {
	var p promptpack.PromptPack
	found, err := c.rest.getOne(ctx, workspacePath(workspace, "promptpacks", name), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// Create registers a new prompt pack.
func (c *PromptPacksClient) Create(ctx context.Context, workspace string, req promptpack.CreateRequest) (*promptpack.PromptPack, error) {
	var p promptpack.PromptPack
	err := c.rest.write(ctx, http.MethodPost, workspacePath(workspace, "promptpacks"), req, &p, "Failed to create prompt pack")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a prompt pack.
func (c *PromptPacksClient) Delete(ctx context.Context, workspace, name string) error {
	return c.rest.write(ctx, http.MethodDelete, workspacePath(workspace, "promptpacks", name), nil, nil, "Failed to delete prompt pack")
}

// Content returns the materialized prompt entries of a pack.
func (c *PromptPacksClient) Content(ctx context.Context, workspace, name string) ([]promptpack.Content, error) {
	items := []promptpack.Content{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "promptpacks", name, "content"), &items); err != nil {
		return nil, err
	}
	return items, nil
}
