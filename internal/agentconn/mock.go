package agentconn

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// cannedReply is one scripted mock response. Replies with a tool name
// stream a synthetic tool_call/tool_result pair before their text.
type cannedReply struct {
	text     string
	toolName string
	toolArgs string
}

// cannedReplies cycle round-robin by send count so demo transcripts are
// reproducible.
var cannedReplies = []cannedReply{
	{
		text: "I looked into that for you. The runtime is healthy and all replicas are reporting ready.",
	},
	{
		text:     "I checked the current deployment state before answering. Everything matches the desired spec.",
		toolName: "get_deployment_status",
		toolArgs: `{"detail":"full"}`,
	},
	{
		text: "That change was applied. You should see the new configuration within a few seconds.",
	},
	{
		text:     "I searched the recent logs and found no errors in the last hour.",
		toolName: "search_logs",
		toolArgs: `{"window":"1h","level":"error"}`,
	},
}

const mockMaxPayload = 64 * 1024

// Mock simulates an agent's realtime channel with local timers: no network,
// fixed delays, deterministic replies. It satisfies the same contract as
// Live.
type Mock struct {
	log *slog.Logger

	// Delay between scheduled events. Tests shrink this.
	StepDelay time.Duration

	mu        sync.Mutex
	status    Status
	sessionID string
	sendCount int
	timers    []*time.Timer
	handlers  handlerSet
}

// NewMock creates a disconnected mock connection.
func NewMock(log *slog.Logger) *Mock {
	if log == nil {
		log = slog.Default()
	}
	return &Mock{
		log:       log,
		StepDelay: 150 * time.Millisecond,
		status:    StatusDisconnected,
	}
}

// Status returns the current connection state.
func (m *Mock) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// OnStatus registers a status handler.
func (m *Mock) OnStatus(h StatusHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers.status = append(m.handlers.status, h)
}

// OnMessage registers a message handler.
func (m *Mock) OnMessage(h MessageHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers.message = append(m.handlers.message, h)
}

// Connect schedules the connecting -> connected transition and a synthetic
// "connected" envelope. Idempotent while connected or mid-connect.
func (m *Mock) Connect(_ context.Context) error {
	m.mu.Lock()
	if m.status == StatusConnected || m.status == StatusConnecting {
		m.mu.Unlock()
		return nil
	}
	m.status = StatusConnecting
	hs := m.handlers
	delay := m.StepDelay
	m.mu.Unlock()
	hs.notifyStatus(StatusConnecting, "")

	m.schedule(delay, func() {
		sessionID := uuid.NewString()

		m.mu.Lock()
		if m.status != StatusConnecting {
			m.mu.Unlock()
			return
		}
		m.status = StatusConnected
		m.sessionID = sessionID
		hs := m.handlers
		m.mu.Unlock()

		hs.notifyStatus(StatusConnected, "")
		payload, _ := json.Marshal(ConnectedPayload{
			SessionID:       sessionID,
			MaxPayloadBytes: mockMaxPayload,
		})
		hs.notifyMessage(Envelope{
			Type:      TypeConnected,
			SessionID: sessionID,
			Payload:   payload,
		})
	})
	return nil
}

// Disconnect stops all pending timers and forces the disconnected state.
// Safe from any state.
func (m *Mock) Disconnect() {
	m.mu.Lock()
	timers := m.timers
	m.timers = nil
	m.sessionID = ""
	changed := m.status != StatusDisconnected
	m.status = StatusDisconnected
	hs := m.handlers
	m.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	if changed {
		hs.notifyStatus(StatusDisconnected, "")
	}
}

// Send schedules the next canned reply, streamed word-by-word as chunk
// envelopes and terminated by a done envelope. Not connected is a warning
// no-op.
func (m *Mock) Send(_ context.Context, content string, opts SendOptions) error {
	m.mu.Lock()
	if m.status != StatusConnected {
		m.mu.Unlock()
		m.log.Warn("mock send while not connected, dropping message")
		return nil
	}
	reply := cannedReplies[m.sendCount%len(cannedReplies)]
	m.sendCount++
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = m.sessionID
	}
	delay := m.StepDelay
	m.mu.Unlock()

	if len(content) > mockMaxPayload {
		return fmt.Errorf("message exceeds server limit of %d bytes", mockMaxPayload)
	}

	step := 1
	if reply.toolName != "" {
		callID := uuid.NewString()
		m.scheduleEnvelope(delay*time.Duration(step), Envelope{
			Type:       TypeToolCall,
			SessionID:  sessionID,
			ToolCallID: callID,
			ToolName:   reply.toolName,
			Content:    fmt.Sprintf(`{"name":%q,"arguments":%s}`, reply.toolName, reply.toolArgs),
		})
		step++
		m.scheduleEnvelope(delay*time.Duration(step), Envelope{
			Type:       TypeToolResult,
			SessionID:  sessionID,
			ToolCallID: callID,
			Content:    `{"ok":true}`,
		})
		step++
	}

	for _, word := range strings.Fields(reply.text) {
		m.scheduleEnvelope(delay*time.Duration(step), Envelope{
			Type:      TypeChunk,
			SessionID: sessionID,
			Content:   word + " ",
		})
		step++
	}
	m.scheduleEnvelope(delay*time.Duration(step), Envelope{
		Type:      TypeDone,
		SessionID: sessionID,
	})
	return nil
}

// scheduleEnvelope delivers env after d unless the connection drops first.
func (m *Mock) scheduleEnvelope(d time.Duration, env Envelope) {
	m.schedule(d, func() {
		m.mu.Lock()
		if m.status != StatusConnected {
			m.mu.Unlock()
			return
		}
		hs := m.handlers
		m.mu.Unlock()
		hs.notifyMessage(env)
	})
}

func (m *Mock) schedule(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers = append(m.timers, time.AfterFunc(d, fn))
}
