package operator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// rest is the shared HTTP plumbing behind every resource-family client.
type rest struct {
	baseURL string
	http    *http.Client
}

// workspacePath builds /api/workspaces/{ws}/{segments...} with every
// segment percent-encoded. Workspace and resource names may contain
// characters that need escaping.
func workspacePath(workspace string, segments ...string) string {
	var b strings.Builder
	b.WriteString("/api/workspaces/")
	b.WriteString(url.PathEscape(workspace))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// query builds a URL query string preserving insertion order. Encode
// returns "" when no pairs were added, so filter-less list URLs carry no
// "?" suffix.
type query struct {
	pairs []string
}

func (q *query) add(key, value string) {
	if value == "" {
		return
	}
	q.pairs = append(q.pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q *query) addInt(key string, value int) {
	if value > 0 {
		q.add(key, fmt.Sprintf("%d", value))
	}
}

func (q *query) encode() string {
	if len(q.pairs) == 0 {
		return ""
	}
	return "?" + strings.Join(q.pairs, "&")
}

// getOne fetches a single resource. Returns found=false without error on
// 404: the caller must distinguish "no such item" from "request failed".
func (r *rest) getOne(ctx context.Context, path string, out any) (bool, error) {
	resp, err := r.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// getList fetches a collection. 401, 403 and 404 all leave out untouched
// and return nil: list views render empty when the caller lacks access or
// the workspace does not exist yet.
func (r *rest) getList(ctx context.Context, path string, out any) error {
	resp, err := r.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// write performs a mutating call. On a non-2xx response the server's body
// text becomes the error message; fallback is used only when the body is
// empty.
func (r *rest) write(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := r.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fallback
		if data, readErr := io.ReadAll(resp.Body); readErr == nil {
			if text := strings.TrimSpace(string(data)); text != "" {
				msg = text
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}

func (r *rest) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
