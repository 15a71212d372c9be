package operator

import (
	"context"
	"net/http"
	"net/url"

	"github.com/perchlabs/perch/internal/domain/secret"
)

// SecretsClient manages credential metadata over the shared (non
// workspace-scoped) secrets routes. Secret values are write-only; the
// backend never returns them and neither does this client.
type SecretsClient struct {
	rest *rest
}

// List returns secret metadata, optionally filtered by namespace.
func (c *SecretsClient) List(ctx context.Context, namespace string) ([]secret.Meta, error) {
	q := &query{}
	q.add("namespace", namespace)

	items := []secret.Meta{}
	if err := c.rest.getList(ctx, "/api/secrets"+q.encode(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns one secret's metadata, or nil when it does not exist.
func (c *SecretsClient) Get(ctx context.Context, namespace, name string) (*secret.Meta, error) {
	var m secret.Meta
	path := "/api/secrets/" + url.PathEscape(namespace) + "/" + url.PathEscape(name)
	found, err := c.rest.getOne(ctx, path, &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

// Create stores a new secret.
func (c *SecretsClient) Create(ctx context.Context, req secret.CreateRequest) (*secret.Meta, error) {
	var m secret.Meta
	err := c.rest.write(ctx, http.MethodPost, "/api/secrets", req, &m, "Failed to create secret")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes a secret.
func (c *SecretsClient) Delete(ctx context.Context, namespace, name string) error {
	path := "/api/secrets/" + url.PathEscape(namespace) + "/" + url.PathEscape(name)
	return c.rest.write(ctx, http.MethodDelete, path, nil, nil, "Failed to delete secret")
}
