package agentconn

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newFastMock() *Mock {
	m := NewMock(nil)
	m.StepDelay = time.Millisecond
	return m
}

// connectMock connects and waits for the synthetic connected envelope.
func connectMock(t *testing.T, m *Mock, msgs chan Envelope) {
	t.Helper()
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	select {
	case env := <-msgs:
		if env.Type != TypeConnected {
			t.Fatalf("expected connected envelope first, got %s", env.Type)
		}
		if env.SessionID == "" {
			t.Fatal("connected envelope missing session id")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for connected envelope")
	}
}

// collectReply drains envelopes until done and returns them.
func collectReply(t *testing.T, msgs chan Envelope) []Envelope {
	t.Helper()
	var got []Envelope
	for {
		select {
		case env := <-msgs:
			got = append(got, env)
			if env.Type == TypeDone {
				return got
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for done, have %d envelopes", len(got))
		}
	}
}

func TestMockConnectTransitions(t *testing.T) {
	m := newFastMock()
	rec := newStatusRecorder()
	m.OnStatus(rec.handler)
	msgs := make(chan Envelope, 64)
	m.OnMessage(func(env Envelope) { msgs <- env })

	connectMock(t, m, msgs)
	rec.wait(t, StatusConnecting)
	rec.wait(t, StatusConnected)

	// Connect again while connected must not schedule a second session.
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	select {
	case env := <-msgs:
		t.Fatalf("unexpected envelope after idempotent connect: %s", env.Type)
	default:
	}

	m.Disconnect()
	if m.Status() != StatusDisconnected {
		t.Fatalf("expected disconnected, got %s", m.Status())
	}
}

func TestMockRepliesAreRoundRobin(t *testing.T) {
	m := newFastMock()
	msgs := make(chan Envelope, 256)
	m.OnMessage(func(env Envelope) { msgs <- env })
	connectMock(t, m, msgs)

	// Cycle through all replies plus one to confirm the wrap-around.
	for i := 0; i < len(cannedReplies)+1; i++ {
		want := cannedReplies[i%len(cannedReplies)]
		if err := m.Send(context.Background(), "question", SendOptions{}); err != nil {
			t.Fatalf("Send %d failed: %v", i, err)
		}
		got := collectReply(t, msgs)

		var text strings.Builder
		toolCalls := 0
		for _, env := range got {
			switch env.Type {
			case TypeChunk:
				text.WriteString(env.Content)
			case TypeToolCall:
				toolCalls++
				if env.ToolName != want.toolName {
					t.Fatalf("reply %d: tool %q, want %q", i, env.ToolName, want.toolName)
				}
			}
		}

		if joined := strings.Join(strings.Fields(text.String()), " "); joined != want.text {
			t.Fatalf("reply %d text = %q, want %q", i, joined, want.text)
		}
		wantCalls := 0
		if want.toolName != "" {
			wantCalls = 1
		}
		if toolCalls != wantCalls {
			t.Fatalf("reply %d: %d tool calls, want %d", i, toolCalls, wantCalls)
		}
	}
}

func TestMockToolReplyEnvelopeOrder(t *testing.T) {
	m := newFastMock()
	msgs := make(chan Envelope, 256)
	m.OnMessage(func(env Envelope) { msgs <- env })
	connectMock(t, m, msgs)

	// First reply has no tool. Skip it to reach the get_deployment_status one.
	if err := m.Send(context.Background(), "q1", SendOptions{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	collectReply(t, msgs)

	if err := m.Send(context.Background(), "q2", SendOptions{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	got := collectReply(t, msgs)

	if got[0].Type != TypeToolCall || got[1].Type != TypeToolResult {
		t.Fatalf("expected tool_call then tool_result, got %s then %s", got[0].Type, got[1].Type)
	}
	if got[0].ToolCallID == "" || got[0].ToolCallID != got[1].ToolCallID {
		t.Fatalf("tool call ids do not pair: %q vs %q", got[0].ToolCallID, got[1].ToolCallID)
	}
	if last := got[len(got)-1]; last.Type != TypeDone {
		t.Fatalf("expected done last, got %s", last.Type)
	}
	for _, env := range got[2 : len(got)-1] {
		if env.Type != TypeChunk {
			t.Fatalf("expected only chunks between tool result and done, got %s", env.Type)
		}
	}
}

func TestMockSendWhileDisconnectedIsNoop(t *testing.T) {
	m := newFastMock()
	if err := m.Send(context.Background(), "hello", SendOptions{}); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
}

func TestMockDisconnectCancelsPendingReplies(t *testing.T) {
	m := newFastMock()
	m.StepDelay = 50 * time.Millisecond
	msgs := make(chan Envelope, 64)
	m.OnMessage(func(env Envelope) { msgs <- env })
	connectMock(t, m, msgs)

	if err := m.Send(context.Background(), "question", SendOptions{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	m.Disconnect()

	time.Sleep(200 * time.Millisecond)
	select {
	case env := <-msgs:
		t.Fatalf("envelope delivered after disconnect: %s", env.Type)
	default:
	}
}
