// Package session defines chat session records as reported by the agent
// runtime, plus the display-ready message shapes the dashboard renders.
package session

import (
	"encoding/json"
	"time"
)

// Status represents the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusExpired   Status = "expired"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Metrics aggregates per-session counters. TotalTokens is always
// InputTokens + OutputTokens.
type Metrics struct {
	MessageCount  int     `json:"message_count"`
	ToolCallCount int     `json:"tool_call_count"`
	InputTokens   int64   `json:"input_tokens"`
	OutputTokens  int64   `json:"output_tokens"`
	TotalTokens   int64   `json:"total_tokens"`
	EstCostUSD    float64 `json:"est_cost_usd"`
}

// Session is one conversation with an agent runtime. Sessions are created by
// the runtime; this layer only reads them.
type Session struct {
	ID        string     `json:"id"`
	AgentName string     `json:"agent_name"`
	Namespace string     `json:"namespace"`
	Status    Status     `json:"status"`
	Model     string     `json:"model,omitempty"`
	Metrics   Metrics    `json:"metrics"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// EventKind tags a raw record as a tool-call or tool-result event.
type EventKind string

const (
	EventNone       EventKind = ""
	EventToolCall   EventKind = "tool_call"
	EventToolResult EventKind = "tool_result"
)

// RawMessage is the wire form of one session record as stored by the
// runtime: a flat event, before tool calls are paired with their results.
type RawMessage struct {
	ID           string    `json:"id"`
	Role         Role      `json:"role"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	ToolCallID   string    `json:"tool_call_id,omitempty"`
	Event        EventKind `json:"event,omitempty"`
	IsError      bool      `json:"is_error,omitempty"`
	InputTokens  int64     `json:"input_tokens,omitempty"`
	OutputTokens int64     `json:"output_tokens,omitempty"`
}

// ToolCallStatus reports whether a tool call has completed.
type ToolCallStatus string

const (
	ToolCallPending ToolCallStatus = "pending"
	ToolCallSuccess ToolCallStatus = "success"
	ToolCallError   ToolCallStatus = "error"
)

// ToolCall is a tool invocation paired with its result, attached to the
// assistant message that produced it. Result is nil while the call is
// pending.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Result    json.RawMessage `json:"result,omitempty"`
	Status    ToolCallStatus  `json:"status"`
}

// Message is the display-ready form of a session record. Raw tool_call and
// tool_result events never appear as standalone messages; they are merged
// into the owning assistant message's ToolCalls.
type Message struct {
	ID           string     `json:"id"`
	Role         Role       `json:"role"`
	Content      string     `json:"content"`
	Timestamp    time.Time  `json:"timestamp"`
	InputTokens  int64      `json:"input_tokens,omitempty"`
	OutputTokens int64      `json:"output_tokens,omitempty"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
}

// EvalResult is a judged score for one session, produced by an arena
// evaluation run that replayed it.
type EvalResult struct {
	Judge   string  `json:"judge"`
	Score   float64 `json:"score"`
	Passed  bool    `json:"passed"`
	Comment string  `json:"comment,omitempty"`
}

// ListOptions filters a session list query.
type ListOptions struct {
	AgentName string
	Status    Status
	Limit     int
}
