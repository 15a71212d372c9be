package operator_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/perchlabs/perch/internal/adapter/operator"
	"github.com/perchlabs/perch/internal/domain/agentruntime"
	"github.com/perchlabs/perch/internal/domain/arena"
	"github.com/perchlabs/perch/internal/domain/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *operator.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return operator.NewClient(srv.URL)
}

func TestErrorClassifiers(t *testing.T) {
	notFound := &operator.APIError{StatusCode: 404, Message: `agent "x" not found`}
	if !operator.IsNotFound(notFound) {
		t.Fatal("expected 404 to classify as not found")
	}
	if operator.IsForbidden(notFound) {
		t.Fatal("404 must not classify as forbidden")
	}

	for _, status := range []int{401, 403} {
		err := &operator.APIError{StatusCode: status, Message: "denied"}
		if !operator.IsForbidden(err) {
			t.Fatalf("expected %d to classify as forbidden", status)
		}
		if operator.IsNotFound(err) {
			t.Fatalf("%d must not classify as not found", status)
		}
	}

	plain := errors.New("dial tcp: connection refused")
	if operator.IsNotFound(plain) || operator.IsForbidden(plain) {
		t.Fatal("untyped errors must not classify")
	}
}

func TestListReturnsItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/workspaces/prod/agents" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		items := []agentruntime.AgentRuntime{
			{Spec: agentruntime.Spec{Provider: "anthropic", Replicas: 2}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	})

	agents, err := client.Agents.List(context.Background(), "prod")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(agents))
	}
	if agents[0].Spec.Provider != "anthropic" {
		t.Fatalf("expected provider anthropic, got %q", agents[0].Spec.Provider)
	}
}

func TestListEmptyOnAccessErrors(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})

		agents, err := client.Agents.List(context.Background(), "prod")
		if err != nil {
			t.Fatalf("status %d: expected no error, got %v", status, err)
		}
		if len(agents) != 0 {
			t.Fatalf("status %d: expected empty list, got %d items", status, len(agents))
		}
	}
}

func TestListErrorOnServerFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Agents.List(context.Background(), "prod")
	if err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestGetNotFoundIsAbsence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	a, err := client.Agents.Get(context.Background(), "prod", "missing")
	if err != nil {
		t.Fatalf("404 should not error, got %v", err)
	}
	if a != nil {
		t.Fatal("expected nil agent for 404")
	}
}

func TestGetServerErrorCarriesStatusText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Agents.Get(context.Background(), "prod", "a1")
	if err == nil {
		t.Fatal("expected error on 500")
	}
	if !strings.Contains(err.Error(), "Internal Server Error") {
		t.Fatalf("expected status text in message, got %q", err.Error())
	}

	var apiErr *operator.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", apiErr.StatusCode)
	}
}

func TestWriteErrorServerTextWins(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("job name already in use"))
	})

	_, err := client.Arena.CreateJob(context.Background(), "prod", arena.CreateJobRequest{Name: "j1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "job name already in use" {
		t.Fatalf("expected server text as message, got %q", err.Error())
	}
}

func TestWriteErrorFallbackOnEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Arena.CreateJob(context.Background(), "prod", arena.CreateJobRequest{Name: "j1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Failed to create arena job" {
		t.Fatalf("expected fallback message, got %q", err.Error())
	}
}

func TestDeleteErrorFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.Agents.Delete(context.Background(), "prod", "a1")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Failed to delete agent" {
		t.Fatalf("expected fallback message, got %q", err.Error())
	}
}

func TestJobListQueryOrder(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.Arena.ListJobs(context.Background(), "prod", operator.JobListOptions{
		Type:  "evaluation",
		Phase: arena.JobPhaseRunning,
		Limit: 10,
		Sort:  "recent",
	})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}

	want := "type=evaluation&phase=Running&limit=10&sort=recent"
	if gotQuery != want {
		t.Fatalf("expected query %q, got %q", want, gotQuery)
	}
}

func TestJobListNoFiltersNoQuestionMark(t *testing.T) {
	var gotURI string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.Arena.ListJobs(context.Background(), "prod", operator.JobListOptions{})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if strings.Contains(gotURI, "?") {
		t.Fatalf("expected no query string, got %q", gotURI)
	}
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	var gotURI string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Agents.Get(context.Background(), "team a", "agent/one")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !strings.Contains(gotURI, "/api/workspaces/team%20a/agents/agent%2Fone") {
		t.Fatalf("expected escaped path segments, got %q", gotURI)
	}
}

func TestScalePostsReplicaCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/api/workspaces/prod/agents/a1/scale" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req agentruntime.ScaleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Replicas != 3 {
			t.Fatalf("expected 3 replicas, got %d", req.Replicas)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Agents.Scale(context.Background(), "prod", "a1", 3); err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
}

func TestSessionMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/workspaces/prod/sessions/s1/messages" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		msgs := []session.RawMessage{
			{ID: "m1", Role: session.RoleUser, Content: "hello"},
		}
		_ = json.NewEncoder(w).Encode(msgs)
	})

	msgs, err := client.Sessions.Messages(context.Background(), "prod", "s1")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != session.RoleUser {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestSecretsNamespaceFilter(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := client.Secrets.List(context.Background(), "prod"); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if gotQuery != "namespace=prod" {
		t.Fatalf("expected namespace filter, got %q", gotQuery)
	}
}
