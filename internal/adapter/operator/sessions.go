package operator

import (
	"context"

	"github.com/perchlabs/perch/internal/domain/session"
)

// SessionsClient reads chat sessions recorded by agent runtimes. Sessions
// are read-only from the dashboard's perspective.
type SessionsClient struct {
	rest *rest
}

// List returns sessions in the workspace matching opts. Filters are
// serialized in the documented order: agent, status, limit.
func (c *SessionsClient) List(ctx context.Context, workspace string, opts session.ListOptions) ([]session.Session, error) {
	q := &query{}
	q.add("agent", opts.AgentName)
	q.add("status", string(opts.Status))
	q.addInt("limit", opts.Limit)

	items := []session.Session{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "sessions")+q.encode(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns one session, or nil when it does not exist.
func (c *SessionsClient) Get(ctx context.Context, workspace, id string) (*session.Session, error) {
	var s session.Session
	found, err := c.rest.getOne(ctx, workspacePath(workspace, "sessions", id), &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

// Messages returns the session's raw message records in storage order,
// before tool calls are paired with their results.
func (c *SessionsClient) Messages(ctx context.Context, workspace, id string) ([]session.RawMessage, error) {
	items := []session.RawMessage{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "sessions", id, "messages"), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// EvalResults returns judged scores recorded for the session.
func (c *SessionsClient) EvalResults(ctx context.Context, workspace, id string) ([]session.EvalResult, error) {
	items := []session.EvalResult{}
	if err := c.rest.getList(ctx, workspacePath(workspace, "sessions", id, "eval-results"), &items); err != nil {
		return nil, err
	}
	return items, nil
}
