package agentconn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// wsServer runs handler for each accepted websocket and counts accepts.
func wsServer(t *testing.T, handler func(ctx context.Context, c *websocket.Conn)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var accepts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept failed: %v", err)
			return
		}
		accepts.Add(1)
		handler(r.Context(), c)
	}))
	t.Cleanup(srv.Close)
	return srv, &accepts
}

// statusRecorder collects transitions on a channel.
type statusRecorder struct {
	ch chan Status
}

func newStatusRecorder() *statusRecorder {
	return &statusRecorder{ch: make(chan Status, 16)}
}

func (r *statusRecorder) handler(s Status, _ string) {
	r.ch <- s
}

func (r *statusRecorder) wait(t *testing.T, want Status) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-r.ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		}
	}
}

func TestLiveConnectLifecycle(t *testing.T) {
	srv, accepts := wsServer(t, func(ctx context.Context, c *websocket.Conn) {
		// Hold the connection open until the client leaves.
		_, _, _ = c.Read(ctx)
	})

	conn := NewLive("ns", "agent-1", srv.URL, nil, nil)
	rec := newStatusRecorder()
	conn.OnStatus(rec.handler)

	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	rec.wait(t, StatusConnected)

	// Second connect while connected must not dial again.
	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if got := accepts.Load(); got != 1 {
		t.Fatalf("expected 1 accept, got %d", got)
	}

	conn.Disconnect()
	if conn.Status() != StatusDisconnected {
		t.Fatalf("expected disconnected, got %s", conn.Status())
	}
}

func TestLiveDisconnectWhileDisconnectedIsNoop(t *testing.T) {
	conn := NewLive("ns", "agent-1", "http://127.0.0.1:1", nil, nil)
	conn.Disconnect()
	conn.Disconnect()
	if conn.Status() != StatusDisconnected {
		t.Fatalf("expected disconnected, got %s", conn.Status())
	}
}

func TestLiveDisconnectDuringConnectWins(t *testing.T) {
	srv, _ := wsServer(t, func(ctx context.Context, c *websocket.Conn) {
		_, _, _ = c.Read(ctx)
	})

	// The resolver holds the connect attempt open until released, leaving
	// a window for Disconnect to land mid-connect.
	release := make(chan struct{})
	resolver := func(context.Context) (string, error) {
		<-release
		return srv.URL, nil
	}

	conn := NewLive("ns", "agent-1", "", resolver, nil)
	rec := newStatusRecorder()
	conn.OnStatus(rec.handler)

	done := make(chan error, 1)
	go func() { done <- conn.Connect(context.Background()) }()
	rec.wait(t, StatusConnecting)

	conn.Disconnect()
	if conn.Status() != StatusDisconnected {
		t.Fatalf("expected disconnected after Disconnect, got %s", conn.Status())
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("aborted Connect returned error: %v", err)
	}

	// The late dial must not resurrect the connection.
	time.Sleep(50 * time.Millisecond)
	if got := conn.Status(); got != StatusDisconnected {
		t.Fatalf("connection resurrected after Disconnect: status = %s", got)
	}
	for {
		select {
		case s := <-rec.ch:
			if s == StatusConnected {
				t.Fatal("observed connected transition after Disconnect")
			}
		default:
			return
		}
	}
}

func TestLiveDisconnectDuringConnectSuppressesResolveError(t *testing.T) {
	release := make(chan struct{})
	resolver := func(context.Context) (string, error) {
		<-release
		return "", context.DeadlineExceeded
	}

	conn := NewLive("ns", "agent-1", "", resolver, nil)

	done := make(chan error, 1)
	go func() { done <- conn.Connect(context.Background()) }()
	for conn.Status() != StatusConnecting {
		time.Sleep(time.Millisecond)
	}

	conn.Disconnect()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("aborted Connect returned error: %v", err)
	}
	if got := conn.Status(); got != StatusDisconnected {
		t.Fatalf("expected disconnected, got %s", got)
	}
}

func TestLiveAbnormalCloseCodes(t *testing.T) {
	tests := []struct {
		name string
		code websocket.StatusCode
		want Status
	}{
		{"internal error 1011", websocket.StatusInternalError, StatusError},
		{"application code 4001", websocket.StatusCode(4001), StatusError},
		{"normal closure", websocket.StatusNormalClosure, StatusDisconnected},
		{"going away", websocket.StatusGoingAway, StatusDisconnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := wsServer(t, func(_ context.Context, c *websocket.Conn) {
				_ = c.Close(tt.code, "server says goodbye")
			})

			conn := NewLive("ns", "agent-1", srv.URL, nil, nil)
			rec := newStatusRecorder()
			conn.OnStatus(rec.handler)

			if err := conn.Connect(context.Background()); err != nil {
				t.Fatalf("Connect failed: %v", err)
			}
			rec.wait(t, tt.want)
		})
	}
}

func TestLiveCapturesSessionFromConnectedEnvelope(t *testing.T) {
	received := make(chan Envelope, 1)
	srv, _ := wsServer(t, func(ctx context.Context, c *websocket.Conn) {
		payload, _ := json.Marshal(ConnectedPayload{SessionID: "sess-42", MaxPayloadBytes: 1024})
		frame, _ := json.Marshal(Envelope{Type: TypeConnected, Payload: payload})
		_ = c.Write(ctx, websocket.MessageText, frame)

		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		var env Envelope
		_ = json.Unmarshal(data, &env)
		received <- env
		_, _, _ = c.Read(ctx)
	})

	conn := NewLive("ns", "agent-1", srv.URL, nil, nil)
	rec := newStatusRecorder()
	conn.OnStatus(rec.handler)
	msgs := make(chan Envelope, 16)
	conn.OnMessage(func(env Envelope) { msgs <- env })

	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	rec.wait(t, StatusConnected)

	select {
	case env := <-msgs:
		if env.Type != TypeConnected {
			t.Fatalf("expected connected envelope, got %s", env.Type)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for connected envelope")
	}

	// Send without an explicit session id: the cached one must be used.
	if err := conn.Send(context.Background(), "hello", SendOptions{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case env := <-received:
		if env.Type != TypeMessage || env.SessionID != "sess-42" || env.Content != "hello" {
			t.Fatalf("unexpected outbound envelope: %+v", env)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for outbound message")
	}

	conn.Disconnect()
}

func TestLiveSendWhileDisconnectedIsNoop(t *testing.T) {
	conn := NewLive("ns", "agent-1", "http://127.0.0.1:1", nil, nil)
	if err := conn.Send(context.Background(), "hello", SendOptions{}); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
}

func TestLiveSendRejectsOversizedPayload(t *testing.T) {
	srv, _ := wsServer(t, func(ctx context.Context, c *websocket.Conn) {
		payload, _ := json.Marshal(ConnectedPayload{SessionID: "s", MaxPayloadBytes: 64})
		frame, _ := json.Marshal(Envelope{Type: TypeConnected, Payload: payload})
		_ = c.Write(ctx, websocket.MessageText, frame)
		_, _, _ = c.Read(ctx)
	})

	conn := NewLive("ns", "agent-1", srv.URL, nil, nil)
	msgs := make(chan Envelope, 1)
	conn.OnMessage(func(env Envelope) { msgs <- env })

	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	<-msgs // capability captured

	big := make([]byte, 256)
	for i := range big {
		big[i] = 'x'
	}
	if err := conn.Send(context.Background(), string(big), SendOptions{}); err == nil {
		t.Fatal("expected error for oversized payload")
	}
	conn.Disconnect()
}

func TestLiveFanOutInRegistrationOrder(t *testing.T) {
	srv, _ := wsServer(t, func(ctx context.Context, c *websocket.Conn) {
		frame, _ := json.Marshal(Envelope{Type: TypeChunk, Content: "hi"})
		_ = c.Write(ctx, websocket.MessageText, frame)
		_, _, _ = c.Read(ctx)
	})

	conn := NewLive("ns", "agent-1", srv.URL, nil, nil)
	order := make(chan int, 4)
	done := make(chan struct{})
	conn.OnMessage(func(Envelope) { order <- 1 })
	conn.OnMessage(func(Envelope) { order <- 2; close(done) })

	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for fan-out")
	}
	if first := <-order; first != 1 {
		t.Fatalf("expected handler 1 first, got %d", first)
	}
	if second := <-order; second != 2 {
		t.Fatalf("expected handler 2 second, got %d", second)
	}
	conn.Disconnect()
}

func TestLiveDialFailureIsGenericError(t *testing.T) {
	conn := NewLive("ns", "agent-1", "http://127.0.0.1:1", nil, nil)

	var detail string
	rec := newStatusRecorder()
	conn.OnStatus(func(s Status, d string) {
		if s == StatusError {
			detail = d
		}
		rec.handler(s, d)
	})

	if err := conn.Connect(context.Background()); err == nil {
		t.Fatal("expected dial error")
	}
	rec.wait(t, StatusError)
	if detail != genericErrMsg {
		t.Fatalf("expected generic error detail, got %q", detail)
	}
}
