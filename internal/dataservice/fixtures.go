package dataservice

import (
	"fmt"
	"time"

	"github.com/perchlabs/perch/internal/domain/agentruntime"
	"github.com/perchlabs/perch/internal/domain/arena"
	costdomain "github.com/perchlabs/perch/internal/domain/cost"
	"github.com/perchlabs/perch/internal/domain/promptpack"
	"github.com/perchlabs/perch/internal/domain/provider"
	"github.com/perchlabs/perch/internal/domain/resource"
	"github.com/perchlabs/perch/internal/domain/secret"
	"github.com/perchlabs/perch/internal/domain/session"
	"github.com/perchlabs/perch/internal/domain/toolregistry"
)

// Fixture timestamps are fixed so demo views look the same on every run.
var fixtureBase = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

func meta(name string, ageHours int) resource.Meta {
	created := fixtureBase.Add(-time.Duration(ageHours) * time.Hour)
	return resource.Meta{
		Name:      name,
		Namespace: "default",
		CreatedAt: created,
		UpdatedAt: created.Add(30 * time.Minute),
	}
}

func seedFixtures(m *Mock) {
	m.agents = []agentruntime.AgentRuntime{
		{
			Meta: meta("billing-agent", 72),
			Spec: agentruntime.Spec{
				Provider:   "openai",
				Model:      "gpt-4o",
				Replicas:   2,
				PromptPack: "customer-support-v2",
				Tools:      []string{"get_deployment_status", "search_logs"},
			},
			Status: agentruntime.Status{
				Phase:         agentruntime.PhaseRunning,
				ReadyReplicas: 2,
				Conditions: []resource.Condition{
					{Type: "Ready", Status: "True", LastTransitionTime: fixtureBase.Add(-71 * time.Hour)},
				},
			},
		},
		{
			Meta: meta("support-agent", 48),
			Spec: agentruntime.Spec{
				Provider:   "anthropic",
				Model:      "claude-sonnet-4",
				Replicas:   1,
				PromptPack: "customer-support-v2",
			},
			Status: agentruntime.Status{
				Phase:         agentruntime.PhaseRunning,
				ReadyReplicas: 1,
			},
		},
		{
			Meta: meta("research-agent", 12),
			Spec: agentruntime.Spec{
				Provider: "openai",
				Model:    "gpt-4o-mini",
				Replicas: 1,
			},
			Status: agentruntime.Status{
				Phase:   agentruntime.PhaseFailed,
				Message: "provider secret missing: openai-api-key",
				Conditions: []resource.Condition{
					{Type: "Ready", Status: "False", Reason: "SecretMissing", LastTransitionTime: fixtureBase.Add(-11 * time.Hour)},
				},
			},
		},
	}

	m.packs = []promptpack.PromptPack{
		{
			Meta: meta("customer-support-v2", 120),
			Spec: promptpack.Spec{
				Source:      "git@github.com:perchlabs/prompts.git",
				Version:     "2.3.0",
				Description: "Customer support persona and escalation templates",
			},
			Status: promptpack.Status{Phase: promptpack.PhaseReady, PromptCount: 4},
		},
		{
			Meta: meta("research-v1", 36),
			Spec: promptpack.Spec{
				Version:     "1.0.0",
				Description: "Deep research workflows",
			},
			Status: promptpack.Status{Phase: promptpack.PhasePending},
		},
	}

	m.registries = []toolregistry.ToolRegistry{
		{
			Meta: meta("ops-tools", 200),
			Spec: toolregistry.Spec{
				Tools: []toolregistry.Tool{
					{Name: "get_deployment_status", Description: "Read deployment state from the cluster"},
					{Name: "search_logs", Description: "Full-text search over aggregated logs"},
					{Name: "restart_service", Description: "Restart a service by name"},
				},
			},
			Status: toolregistry.Status{Phase: toolregistry.PhaseReady, ToolCount: 3},
		},
	}

	m.providers = []provider.Provider{
		{
			Meta: meta("openai", 300),
			Spec: provider.Spec{
				Type:      "openai",
				SecretRef: "openai-api-key",
				Models:    []string{"gpt-4o", "gpt-4o-mini"},
			},
			Status: provider.Status{Phase: provider.PhaseReady},
		},
		{
			Meta: meta("anthropic", 300),
			Spec: provider.Spec{
				Type:      "anthropic",
				SecretRef: "anthropic-api-key",
				Models:    []string{"claude-sonnet-4", "claude-haiku-3.5"},
			},
			Status: provider.Status{Phase: provider.PhaseReady},
		},
	}

	syncTime := fixtureBase.Add(-2 * time.Hour)
	m.sources = []arena.Source{
		{
			Meta: meta("support-benchmarks", 96),
			Spec: arena.SourceSpec{
				Type: "git",
				URL:  "git@github.com:perchlabs/benchmarks.git",
				Ref:  "main",
				Path: "support/",
			},
			Status: arena.SourceStatus{
				Phase:         arena.SourcePhaseReady,
				ScenarioCount: 3,
				LastSyncTime:  &syncTime,
			},
		},
	}

	m.configs = []arena.Config{
		{
			Meta: meta("weekly-regression", 90),
			Spec: arena.ConfigSpec{
				SourceRef:   "support-benchmarks",
				Agents:      []string{"billing-agent", "support-agent"},
				Judge:       "claude-sonnet-4",
				Parallelism: 4,
			},
		},
	}

	jobStart := fixtureBase.Add(-20 * time.Hour)
	jobDone := fixtureBase.Add(-19 * time.Hour)
	runStart := fixtureBase.Add(-1 * time.Hour)
	m.jobs = []arena.Job{
		{
			Meta: meta("regression-2026-07-31", 20),
			Spec: arena.JobSpec{ConfigRef: "weekly-regression", Type: "evaluation"},
			Status: arena.JobStatus{
				Phase:          arena.JobPhaseCompleted,
				TotalTasks:     6,
				CompletedTasks: 6,
				StartTime:      &jobStart,
				CompletionTime: &jobDone,
			},
		},
		{
			Meta: meta("regression-2026-08-01", 1),
			Spec: arena.JobSpec{ConfigRef: "weekly-regression", Type: "evaluation"},
			Status: arena.JobStatus{
				Phase:          arena.JobPhaseRunning,
				TotalTasks:     6,
				CompletedTasks: 2,
				FailedTasks:    1,
				StartTime:      &runStart,
			},
		},
	}

	m.secrets = []secret.Meta{
		{Name: "openai-api-key", Namespace: "default", Keys: []string{"api_key"}, CreatedAt: fixtureBase.Add(-310 * time.Hour)},
		{Name: "anthropic-api-key", Namespace: "default", Keys: []string{"api_key"}, CreatedAt: fixtureBase.Add(-310 * time.Hour)},
	}

	seedSessions(m)
	m.costReport = demoCostReport()
}

func seedSessions(m *Mock) {
	s1Start := fixtureBase.Add(-3 * time.Hour)
	s1End := s1Start.Add(12 * time.Minute)
	s2Start := fixtureBase.Add(-30 * time.Minute)

	m.sessions = []session.Session{
		{
			ID:        "sess-0142",
			AgentName: "billing-agent",
			Namespace: "default",
			Status:    session.StatusCompleted,
			Model:     "gpt-4o",
			StartedAt: s1Start,
			EndedAt:   &s1End,
		},
		{
			ID:        "sess-0147",
			AgentName: "support-agent",
			Namespace: "default",
			Status:    session.StatusActive,
			Model:     "claude-sonnet-4",
			StartedAt: s2Start,
		},
	}

	ts := func(min int) time.Time { return s1Start.Add(time.Duration(min) * time.Minute) }
	m.rawMsgs = map[string][]session.RawMessage{
		"sess-0142": {
			{ID: "m1", Role: session.RoleUser, Content: "Why was invoice INV-2209 charged twice?", Timestamp: ts(0), InputTokens: 180},
			{ID: "m2", Role: session.RoleAssistant, Event: session.EventToolCall, ToolCallID: "tc-1",
				Content: `{"name":"search_logs","arguments":{"query":"INV-2209"}}`, Timestamp: ts(1)},
			{ID: "m3", Role: session.RoleTool, Event: session.EventToolResult, ToolCallID: "tc-1",
				Content: `{"matches":2,"duplicate_charge":true}`, Timestamp: ts(2)},
			{ID: "m4", Role: session.RoleAssistant,
				Content: "Invoice INV-2209 was charged twice because of a retried payment webhook. I have flagged the duplicate for refund.",
				Timestamp: ts(3), OutputTokens: 320},
		},
		"sess-0147": {
			{ID: "m1", Role: session.RoleUser, Content: "Summarize today's escalations.", Timestamp: s2Start, InputTokens: 95},
		},
	}

	m.evals = map[string][]session.EvalResult{
		"sess-0142": {
			{Judge: "claude-sonnet-4", Score: 0.92, Passed: true, Comment: "Correct root cause, clear remediation."},
		},
	}
}

func demoLogLines(agent, replica string) []string {
	if replica == "" {
		replica = "0"
	}
	prefix := fmt.Sprintf("%s-%s", agent, replica)
	return []string{
		fmt.Sprintf(`{"time":"2026-08-01T08:55:01Z","level":"INFO","msg":"runtime started","replica":"%s"}`, prefix),
		fmt.Sprintf(`{"time":"2026-08-01T08:55:02Z","level":"INFO","msg":"provider connected","replica":"%s"}`, prefix),
		fmt.Sprintf(`{"time":"2026-08-01T08:57:44Z","level":"INFO","msg":"session opened","session":"sess-0142","replica":"%s"}`, prefix),
		fmt.Sprintf(`{"time":"2026-08-01T09:09:51Z","level":"INFO","msg":"session closed","session":"sess-0142","replica":"%s"}`, prefix),
	}
}

func demoEvents(a agentruntime.AgentRuntime) []resource.Event {
	events := []resource.Event{
		{Type: "Normal", Reason: "Scheduled", Message: "Assigned runtime to pool workers-1", Timestamp: a.Meta.CreatedAt},
		{Type: "Normal", Reason: "Started", Message: "All replicas started", Count: 1, Timestamp: a.Meta.CreatedAt.Add(time.Minute)},
	}
	if a.Status.Phase == agentruntime.PhaseFailed {
		events = append(events, resource.Event{
			Type: "Warning", Reason: "SecretMissing", Message: a.Status.Message, Count: 5,
			Timestamp: a.Meta.UpdatedAt,
		})
	}
	return events
}

func demoPackContent(p promptpack.PromptPack) []promptpack.Content {
	return []promptpack.Content{
		{Name: "system", Role: "system", Version: p.Spec.Version,
			Text: "You are a careful support agent. Verify account state with tools before answering billing questions."},
		{Name: "escalation", Role: "system", Version: p.Spec.Version,
			Text: "When a refund exceeds the auto-approval limit, summarize the case and hand off to a human."},
	}
}

func demoScenarios(s arena.Source) []arena.Scenario {
	out := make([]arena.Scenario, 0, s.Status.ScenarioCount)
	for i := 0; i < s.Status.ScenarioCount; i++ {
		out = append(out, arena.Scenario{
			ID:   fmt.Sprintf("%s-%03d", s.Meta.Name, i+1),
			Name: fmt.Sprintf("scenario %d", i+1),
			Tags: []string{"support"},
		})
	}
	return out
}

func demoJobResults(j arena.Job) []arena.JobResult {
	results := make([]arena.JobResult, 0, j.Status.CompletedTasks)
	for i := 0; i < j.Status.CompletedTasks; i++ {
		score := 0.7 + 0.05*float64(i%5)
		results = append(results, arena.JobResult{
			ScenarioID: fmt.Sprintf("support-benchmarks-%03d", i+1),
			Agent:      "billing-agent",
			Score:      score,
			Passed:     score >= 0.75,
		})
	}
	return results
}

func demoJobMetrics(j arena.Job) *arena.JobMetrics {
	results := demoJobResults(j)
	if len(results) == 0 {
		return &arena.JobMetrics{}
	}
	var sum float64
	passed := 0
	for _, r := range results {
		sum += r.Score
		if r.Passed {
			passed++
		}
	}
	return &arena.JobMetrics{
		MeanScore:    sum / float64(len(results)),
		PassRate:     float64(passed) / float64(len(results)),
		TotalCostUSD: 1.84,
	}
}

// demoCostReport mirrors the live aggregator's shape with plausible demo
// numbers so cost panels render fully in demo mode.
func demoCostReport() *costdomain.Report {
	items := []costdomain.AllocationItem{
		{
			Agent: "billing-agent", Namespace: "default", Provider: "openai", Model: "gpt-4o",
			InputTokens: 1_000_000, OutputTokens: 500_000, CacheHitTokens: 120_000, Requests: 640,
			InputCostUSD: 2.50, OutputCostUSD: 5.00, CacheSavingsUSD: 0.15, TotalCostUSD: 7.50,
		},
		{
			Agent: "support-agent", Namespace: "default", Provider: "anthropic", Model: "claude-sonnet-4",
			InputTokens: 400_000, OutputTokens: 150_000, CacheHitTokens: 80_000, Requests: 210,
			InputCostUSD: 1.20, OutputCostUSD: 2.25, CacheSavingsUSD: 0.216, TotalCostUSD: 3.45,
		},
	}

	total := 10.95
	series := make([]costdomain.SeriesPoint, 0, 6)
	for i := 0; i < 6; i++ {
		series = append(series, costdomain.SeriesPoint{
			Timestamp: fixtureBase.Add(time.Duration(i-6) * time.Hour),
			ByProvider: map[string]float64{
				"openai":    0.28 + 0.02*float64(i),
				"anthropic": 0.12 + 0.01*float64(i),
			},
		})
	}

	return &costdomain.Report{
		Available: true,
		Summary: costdomain.Summary{
			TotalCostUSD:    total,
			InputCostUSD:    3.70,
			OutputCostUSD:   7.25,
			CacheSavingsUSD: 0.366,
			InputTokens:     1_400_000,
			OutputTokens:    650_000,
			Requests:        850,
			InputCostPct:    3.70 / total * 100,
			OutputCostPct:   7.25 / total * 100,
		},
		Items: items,
		ByProvider: []costdomain.ProviderCost{
			{Provider: "openai", TotalCostUSD: 7.50, Requests: 640},
			{Provider: "anthropic", TotalCostUSD: 3.45, Requests: 210},
		},
		ByModel: []costdomain.ModelCost{
			{Model: "gpt-4o", Provider: "openai", InputTokens: 1_000_000, OutputTokens: 500_000, TotalCostUSD: 7.50},
			{Model: "claude-sonnet-4", Provider: "anthropic", InputTokens: 400_000, OutputTokens: 150_000, TotalCostUSD: 3.45},
		},
		Series: series,
	}
}
