// Package operator provides HTTP clients for the orchestration backend's
// REST API, one per resource family. All clients share one transport and
// the same error conventions: a 404 on a single-item get is absence, not an
// error; 401/403/404 on a list yields an empty collection so views render
// for callers without access; write failures carry the server's response
// body as the error message when it is non-empty.
package operator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client aggregates the per-family resource clients over one shared
// transport.
type Client struct {
	Agents         *AgentsClient
	PromptPacks    *PromptPacksClient
	ToolRegistries *ToolRegistriesClient
	Providers      *ProvidersClient
	Arena          *ArenaClient
	Secrets        *SecretsClient
	Sessions       *SessionsClient

	rest *rest
}

// Option customizes a Client.
type Option func(*rest)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *rest) { r.http = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(r *rest) { r.http.Timeout = d }
}

// NewClient creates a client for the operator API at baseURL. Outgoing
// requests are traced via otelhttp.
func NewClient(baseURL string, opts ...Option) *Client {
	r := &rest{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(r)
	}

	return &Client{
		Agents:         &AgentsClient{rest: r},
		PromptPacks:    &PromptPacksClient{rest: r},
		ToolRegistries: &ToolRegistriesClient{rest: r},
		Providers:      &ProvidersClient{rest: r},
		Arena:          &ArenaClient{rest: r},
		Secrets:        &SecretsClient{rest: r},
		Sessions:       &SessionsClient{rest: r},
		rest:           r,
	}
}

// Ping verifies the operator answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.rest.send(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return fmt.Errorf("ping operator: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return nil
}
