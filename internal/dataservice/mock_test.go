package dataservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/perchlabs/perch/internal/adapter/operator"
	"github.com/perchlabs/perch/internal/agentconn"
	"github.com/perchlabs/perch/internal/config"
	"github.com/perchlabs/perch/internal/dataservice"
	"github.com/perchlabs/perch/internal/domain/agentruntime"
	"github.com/perchlabs/perch/internal/domain/arena"
	"github.com/perchlabs/perch/internal/domain/resource"
	"github.com/perchlabs/perch/internal/domain/secret"
)

func TestNewSelectsImplementationFromDemoMode(t *testing.T) {
	cfg := config.Defaults()
	cfg.DemoMode = true
	svc, err := dataservice.New(cfg, nil)
	if err != nil {
		t.Fatalf("New in demo mode failed: %v", err)
	}
	if svc.Mode() != "demo" {
		t.Fatalf("expected demo mode, got %s", svc.Mode())
	}

	cfg.DemoMode = false
	cfg.Operator.BaseURL = "http://operator.internal:8090"
	svc, err = dataservice.New(cfg, nil)
	if err != nil {
		t.Fatalf("New in live mode failed: %v", err)
	}
	if svc.Mode() != "live" {
		t.Fatalf("expected live mode, got %s", svc.Mode())
	}
}

func TestNewLiveRequiresOperatorURL(t *testing.T) {
	cfg := config.Defaults()
	cfg.Operator.BaseURL = ""
	if _, err := dataservice.NewLive(cfg, nil); err == nil {
		t.Fatal("expected error without operator base URL")
	}
}

func TestMockAgentLifecycle(t *testing.T) {
	m := dataservice.NewMock(nil)
	ctx := context.Background()

	seeded, err := m.ListAgents(ctx, "default")
	if err != nil {
		t.Fatalf("ListAgents failed: %v", err)
	}
	if len(seeded) == 0 {
		t.Fatal("expected seeded agents")
	}

	created, err := m.CreateAgent(ctx, "default", agentruntime.CreateRequest{
		Name: "triage-agent",
		Spec: agentruntime.Spec{Provider: "openai", Model: "gpt-4o-mini", Replicas: 1},
	})
	if err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}
	if created.Status.Phase != agentruntime.PhaseRunning || created.Status.ReadyReplicas != 1 {
		t.Fatalf("unexpected created status: %+v", created.Status)
	}

	// Duplicate create mirrors the live 409 convention.
	_, err = m.CreateAgent(ctx, "default", agentruntime.CreateRequest{Name: "triage-agent"})
	var apiErr *operator.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 409 {
		t.Fatalf("expected 409 conflict, got %v", err)
	}
	if err.Error() != `agent "triage-agent" already exists` {
		t.Fatalf("unexpected conflict message %q", err.Error())
	}

	if err := m.ScaleAgent(ctx, "default", "triage-agent", 3); err != nil {
		t.Fatalf("ScaleAgent failed: %v", err)
	}
	got, err := m.GetAgent(ctx, "default", "triage-agent")
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if got.Spec.Replicas != 3 || got.Status.ReadyReplicas != 3 {
		t.Fatalf("scale not applied: %+v", got)
	}

	if err := m.DeleteAgent(ctx, "default", "triage-agent"); err != nil {
		t.Fatalf("DeleteAgent failed: %v", err)
	}
	gone, err := m.GetAgent(ctx, "default", "triage-agent")
	if err != nil || gone != nil {
		t.Fatalf("expected (nil, nil) after delete, got (%v, %v)", gone, err)
	}

	// Deleting again is a 404, not a silent success.
	err = m.DeleteAgent(ctx, "default", "triage-agent")
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestMockCreateAgentResolvesLimits(t *testing.T) {
	m := dataservice.NewMock(nil)
	ctx := context.Background()

	created, err := m.CreateAgent(ctx, "default", agentruntime.CreateRequest{
		Name: "limits-agent",
		Spec: agentruntime.Spec{
			Provider: "openai",
			Replicas: 1,
			Limits:   resource.Limits{MemoryMB: 16384, CPUQuota: 1000},
		},
	})
	if err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}
	if created.Spec.Limits.MemoryMB != agentruntime.CeilingLimits.MemoryMB {
		t.Fatalf("expected memory capped to %d, got %d",
			agentruntime.CeilingLimits.MemoryMB, created.Spec.Limits.MemoryMB)
	}
	if created.Spec.Limits.CPUQuota != 1000 {
		t.Fatalf("expected requested cpu quota kept, got %d", created.Spec.Limits.CPUQuota)
	}
	if created.Spec.Limits.PidsLimit != agentruntime.DefaultLimits.PidsLimit {
		t.Fatalf("expected default pids limit, got %d", created.Spec.Limits.PidsLimit)
	}
}

func TestMockGetMissingIsAbsenceNotError(t *testing.T) {
	m := dataservice.NewMock(nil)
	ctx := context.Background()

	agent, err := m.GetAgent(ctx, "default", "no-such-agent")
	if err != nil || agent != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", agent, err)
	}
	pack, err := m.GetPromptPack(ctx, "default", "no-such-pack")
	if err != nil || pack != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", pack, err)
	}
	job, err := m.GetArenaJob(ctx, "default", "no-such-job")
	if err != nil || job != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", job, err)
	}
}

func TestMockArenaJobFilters(t *testing.T) {
	m := dataservice.NewMock(nil)
	ctx := context.Background()

	running, err := m.ListArenaJobs(ctx, "default", operator.JobListOptions{
		Type:  "evaluation",
		Phase: arena.JobPhaseRunning,
	})
	if err != nil {
		t.Fatalf("ListArenaJobs failed: %v", err)
	}
	if len(running) != 1 || running[0].Status.Phase != arena.JobPhaseRunning {
		t.Fatalf("unexpected filtered jobs: %+v", running)
	}

	recent, err := m.ListArenaJobs(ctx, "default", operator.JobListOptions{Sort: "recent", Limit: 1})
	if err != nil {
		t.Fatalf("ListArenaJobs failed: %v", err)
	}
	if len(recent) != 1 || recent[0].Meta.Name != "regression-2026-08-01" {
		t.Fatalf("expected newest job first, got %+v", recent)
	}
}

func TestMockCancelArenaJob(t *testing.T) {
	m := dataservice.NewMock(nil)
	ctx := context.Background()

	if err := m.CancelArenaJob(ctx, "default", "regression-2026-08-01"); err != nil {
		t.Fatalf("CancelArenaJob failed: %v", err)
	}
	job, _ := m.GetArenaJob(ctx, "default", "regression-2026-08-01")
	if job.Status.Phase != arena.JobPhaseCancelled {
		t.Fatalf("expected cancelled, got %s", job.Status.Phase)
	}

	// Terminal jobs cannot be cancelled twice.
	err := m.CancelArenaJob(ctx, "default", "regression-2026-08-01")
	var apiErr *operator.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 409 {
		t.Fatalf("expected 409 for terminal job, got %v", err)
	}
}

func TestMockSecretKeysOnly(t *testing.T) {
	m := dataservice.NewMock(nil)
	ctx := context.Background()

	created, err := m.CreateSecret(ctx, secret.CreateRequest{
		Name:      "mistral-api-key",
		Namespace: "default",
		Values:    map[string]string{"api_key": "shh", "org_id": "org-1"},
	})
	if err != nil {
		t.Fatalf("CreateSecret failed: %v", err)
	}
	if len(created.Keys) != 2 || created.Keys[0] != "api_key" || created.Keys[1] != "org_id" {
		t.Fatalf("expected sorted key names, got %v", created.Keys)
	}
}

func TestMockSessionTranscript(t *testing.T) {
	m := dataservice.NewMock(nil)
	ctx := context.Background()

	messages, metrics, err := m.SessionTranscript(ctx, "default", "sess-0142")
	if err != nil {
		t.Fatalf("SessionTranscript failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 reconstructed messages, got %d", len(messages))
	}
	assistant := messages[1]
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call on the assistant reply, got %d", len(assistant.ToolCalls))
	}
	if assistant.ToolCalls[0].Name != "search_logs" {
		t.Fatalf("unexpected tool name %q", assistant.ToolCalls[0].Name)
	}

	if metrics.TotalTokens != metrics.InputTokens+metrics.OutputTokens {
		t.Fatalf("token invariant violated: %+v", metrics)
	}
	if metrics.ToolCallCount != 1 || metrics.EstCostUSD <= 0 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}

	// Unknown sessions yield an empty transcript, not an error.
	messages, _, err = m.SessionTranscript(ctx, "default", "sess-none")
	if err != nil || len(messages) != 0 {
		t.Fatalf("expected empty transcript, got (%v, %v)", messages, err)
	}
}

func TestMockCostReportAvailable(t *testing.T) {
	m := dataservice.NewMock(nil)
	report := m.CostReport(context.Background())
	if !report.Available {
		t.Fatal("demo cost report must be available")
	}
	if len(report.Items) == 0 || len(report.Series) == 0 {
		t.Fatal("demo cost report must carry data")
	}
	if report.Summary.TotalCostUSD <= 0 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
}

func TestMockConnectionFactory(t *testing.T) {
	m := dataservice.NewMock(nil)
	conn := m.Connection("default", "billing-agent")
	if _, ok := conn.(*agentconn.Mock); !ok {
		t.Fatalf("expected mock connection, got %T", conn)
	}
	if conn.Status() != agentconn.StatusDisconnected {
		t.Fatalf("new connection must start disconnected, got %s", conn.Status())
	}
}
