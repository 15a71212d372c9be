package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	perchhttp "github.com/perchlabs/perch/internal/adapter/http"
	"github.com/perchlabs/perch/internal/agentconn"
	"github.com/perchlabs/perch/internal/dataservice"
	"github.com/perchlabs/perch/internal/domain/agentruntime"
	"github.com/perchlabs/perch/internal/domain/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := perchhttp.NewHandlers(dataservice.NewMock(nil), nil)
	r := chi.NewRouter()
	perchhttp.MountRoutes(r, h)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthReportsMode(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "ok" || body["mode"] != "demo" || body["backend"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestListAndGetAgents(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/workspaces/default/agents")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	agents := decode[[]agentruntime.AgentRuntime](t, resp)
	if len(agents) == 0 {
		t.Fatal("expected seeded agents")
	}

	resp, err = http.Get(srv.URL + "/api/workspaces/default/agents/" + agents[0].Meta.Name)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	got := decode[agentruntime.AgentRuntime](t, resp)
	if got.Meta.Name != agents[0].Meta.Name {
		t.Fatalf("unexpected agent %q", got.Meta.Name)
	}
}

func TestGetMissingAgentIs404(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/workspaces/default/agents/no-such-agent")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != "agent not found" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestCreateAgentValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/workspaces/default/agents", "application/json",
		strings.NewReader(`{"spec":{"provider":"openai"}}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != "name is required" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestCreateAgentConflictRelaysBackendMessage(t *testing.T) {
	srv := newTestServer(t)

	payload := `{"name":"billing-agent","spec":{"provider":"openai","replicas":1}}`
	resp, err := http.Post(srv.URL+"/api/workspaces/default/agents", "application/json",
		strings.NewReader(payload))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != `agent "billing-agent" already exists` {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestCostReportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/costs")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	type costBody struct {
		Available bool `json:"available"`
		Items     []struct {
			Model string `json:"model"`
		} `json:"items"`
	}
	report := decode[costBody](t, resp)
	if !report.Available || len(report.Items) == 0 {
		t.Fatalf("unexpected cost report: %+v", report)
	}
}

func TestSessionTranscriptEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/workspaces/default/sessions/sess-0142/transcript")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	type transcriptBody struct {
		Messages []session.Message `json:"messages"`
		Metrics  session.Metrics   `json:"metrics"`
	}
	body := decode[transcriptBody](t, resp)
	if len(body.Messages) != 2 || body.Metrics.ToolCallCount != 1 {
		t.Fatalf("unexpected transcript: %d messages, %+v", len(body.Messages), body.Metrics)
	}
}

func TestAgentChannelBridge(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/agents/default/billing-agent/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial bridge failed: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// The mock agent connection emits status transitions and then the
	// synthetic connected envelope.
	var sessionID string
	for sessionID == "" {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read bridge frame: %v", err)
		}
		var env agentconn.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("decode bridge frame: %v", err)
		}
		if env.Type == agentconn.TypeConnected {
			sessionID = env.SessionID
		}
	}

	out, _ := json.Marshal(agentconn.Envelope{
		Type:      agentconn.TypeMessage,
		SessionID: sessionID,
		Content:   "is everything healthy?",
	})
	if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("write bridge frame: %v", err)
	}

	sawChunk := false
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read reply frame: %v", err)
		}
		var env agentconn.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("decode reply frame: %v", err)
		}
		if env.Type == agentconn.TypeChunk {
			sawChunk = true
		}
		if env.Type == agentconn.TypeDone {
			break
		}
	}
	if !sawChunk {
		t.Fatal("expected streamed chunks before done")
	}
}
