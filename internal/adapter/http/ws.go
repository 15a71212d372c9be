package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/perchlabs/perch/internal/agentconn"
)

// TypeStatus frames connection-state transitions for the browser.
const TypeStatus = "status"

// AgentChannel handles GET /api/agents/{namespace}/{name}/ws: it upgrades
// the browser connection and bridges it to a per-agent realtime channel
// from the facade. Each browser socket owns exactly one agent connection.
func (h *Handlers) AgentChannel(w http.ResponseWriter, r *http.Request) {
	namespace := urlParam(r, "namespace")
	name := urlParam(r, "name")

	browser, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		h.log.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// One writer at a time; agent callbacks fire from their own goroutines.
	var writeMu sync.Mutex
	forward := func(env agentconn.Envelope) {
		data, err := json.Marshal(env)
		if err != nil {
			h.log.Error("bridge marshal failed", "error", err)
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := browser.Write(ctx, websocket.MessageText, data); err != nil {
			cancel()
		}
	}

	conn := h.svc.Connection(namespace, name)
	conn.OnMessage(forward)
	conn.OnStatus(func(status agentconn.Status, detail string) {
		forward(agentconn.Envelope{Type: TypeStatus, Content: string(status), Error: detail})
	})
	defer conn.Disconnect()

	if err := conn.Connect(ctx); err != nil {
		h.log.Warn("agent channel connect failed", "agent", name, "namespace", namespace, "error", err)
		_ = browser.Close(websocket.StatusInternalError, "agent connection failed")
		return
	}

	if h.metrics != nil {
		h.metrics.AgentConnections.Add(ctx, 1)
		defer h.metrics.AgentConnections.Add(context.WithoutCancel(ctx), -1)
	}

	h.log.Info("agent channel opened", "agent", name, "namespace", namespace)
	for {
		_, data, err := browser.Read(ctx)
		if err != nil {
			break
		}
		var env agentconn.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.log.Warn("discarding unparseable browser frame", "error", err)
			continue
		}
		if env.Type != agentconn.TypeMessage {
			continue
		}
		if err := conn.Send(ctx, env.Content, agentconn.SendOptions{SessionID: env.SessionID}); err != nil {
			forward(agentconn.Envelope{Type: agentconn.TypeError, Error: err.Error()})
		}
	}

	h.log.Info("agent channel closed", "agent", name, "namespace", namespace)
	_ = browser.Close(websocket.StatusNormalClosure, "")
}
