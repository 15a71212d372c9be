// Package agentconn provides the per-agent realtime connection used for
// interactive chat: a live WebSocket implementation and a timer-driven mock
// with the same contract. Status changes and inbound messages fan out to
// every registered handler in registration order.
package agentconn

import (
	"context"
	"encoding/json"
)

// Status is the closed set of connection states.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Envelope type discriminators for the realtime channel's JSON text frames.
const (
	TypeConnected  = "connected"
	TypeChunk      = "chunk"
	TypeToolCall   = "tool_call"
	TypeToolResult = "tool_result"
	TypeDone       = "done"
	TypeError      = "error"
	TypeMessage    = "message" // client -> server
)

// Envelope is one frame on the realtime channel.
type Envelope struct {
	Type       string          `json:"type"`
	SessionID  string          `json:"session_id,omitempty"`
	Content    string          `json:"content,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ConnectedPayload is the payload of a "connected" envelope: the session
// the server opened and the largest frame it will accept.
type ConnectedPayload struct {
	SessionID       string `json:"session_id"`
	MaxPayloadBytes int64  `json:"max_payload_bytes"`
}

// StatusHandler observes state transitions. detail carries a human-readable
// reason for error states; it never contains raw transport errors.
type StatusHandler func(status Status, detail string)

// MessageHandler observes inbound envelopes in transport delivery order.
type MessageHandler func(env Envelope)

// SendOptions customizes one outbound message.
type SendOptions struct {
	// SessionID overrides the session captured from the "connected"
	// envelope.
	SessionID string
}

// Connection is one agent's realtime channel. Implementations must make
// Connect idempotent while connected and Disconnect safe from any state.
type Connection interface {
	Connect(ctx context.Context) error
	Disconnect()
	Send(ctx context.Context, content string, opts SendOptions) error
	Status() Status
	OnStatus(h StatusHandler)
	OnMessage(h MessageHandler)
}

// handlerSet is the shared fan-out registry for both implementations.
type handlerSet struct {
	status  []StatusHandler
	message []MessageHandler
}

func (h *handlerSet) notifyStatus(s Status, detail string) {
	for _, fn := range h.status {
		fn(s, detail)
	}
}

func (h *handlerSet) notifyMessage(env Envelope) {
	for _, fn := range h.message {
		fn(env)
	}
}
