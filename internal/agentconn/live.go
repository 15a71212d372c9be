package agentconn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/coder/websocket"
)

// genericErrMsg is the only error detail handlers ever see. Raw transport
// errors can leak network topology, so they stay in the logs.
const genericErrMsg = "connection error"

// EndpointResolver returns the WebSocket base URL when no proxy URL is
// configured, e.g. by asking the operator for its advertised endpoint.
type EndpointResolver func(ctx context.Context) (string, error)

// Live is a WebSocket connection to one agent's realtime channel at
// /api/agents/{namespace}/{name}/ws.
type Live struct {
	namespace string
	name      string
	proxyURL  string
	resolver  EndpointResolver
	log       *slog.Logger

	mu         sync.Mutex
	status     Status
	ws         *websocket.Conn
	sessionID  string
	maxPayload int64
	cancelRead context.CancelFunc
	handlers   handlerSet
}

// NewLive creates a disconnected live connection for the given agent.
// proxyURL wins over the resolver when both are set.
func NewLive(namespace, name, proxyURL string, resolver EndpointResolver, log *slog.Logger) *Live {
	if log == nil {
		log = slog.Default()
	}
	return &Live{
		namespace: namespace,
		name:      name,
		proxyURL:  proxyURL,
		resolver:  resolver,
		log:       log.With("agent", name, "namespace", namespace),
		status:    StatusDisconnected,
	}
}

// Status returns the current connection state.
func (l *Live) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// OnStatus registers a status handler. Handlers run in registration order.
func (l *Live) OnStatus(h StatusHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers.status = append(l.handlers.status, h)
}

// OnMessage registers a message handler. Handlers run in registration order.
func (l *Live) OnMessage(h MessageHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers.message = append(l.handlers.message, h)
}

// Connect resolves the endpoint and opens the socket. Calling it while
// already connected (or mid-connect) is a no-op.
func (l *Live) Connect(ctx context.Context) error {
	l.mu.Lock()
	if l.status == StatusConnected || l.status == StatusConnecting {
		l.mu.Unlock()
		return nil
	}
	hs := l.setStatusLocked(StatusConnecting)
	l.mu.Unlock()
	hs.notifyStatus(StatusConnecting, "")

	endpoint, err := l.endpoint(ctx)
	if err != nil {
		if !l.failConnect() {
			return nil
		}
		return fmt.Errorf("resolve endpoint: %w", err)
	}

	ws, _, err := websocket.Dial(ctx, endpoint, nil) //nolint:bodyclose // response body is managed by the websocket library
	if err != nil {
		l.log.Error("websocket dial failed", "error", err)
		if !l.failConnect() {
			return nil
		}
		return fmt.Errorf("dial agent channel: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())

	l.mu.Lock()
	if l.status != StatusConnecting {
		// Disconnect won the race while the dial was in flight; it is
		// the cancellation primitive, so its verdict stands.
		l.mu.Unlock()
		cancel()
		_ = ws.Close(websocket.StatusNormalClosure, "client disconnect")
		return nil
	}
	l.ws = ws
	l.cancelRead = cancel
	hs = l.setStatusLocked(StatusConnected)
	l.mu.Unlock()
	hs.notifyStatus(StatusConnected, "")

	go l.readLoop(readCtx, ws)
	return nil
}

// failConnect moves a still-connecting attempt to the error state. It
// reports false when Disconnect already took over, in which case the
// aborted attempt ends without a transition.
func (l *Live) failConnect() bool {
	l.mu.Lock()
	if l.status != StatusConnecting {
		l.mu.Unlock()
		return false
	}
	hs := l.setStatusLocked(StatusError)
	l.mu.Unlock()
	hs.notifyStatus(StatusError, genericErrMsg)
	return true
}

// Disconnect closes the socket and forces the disconnected state. Safe to
// call from any state, including repeatedly.
func (l *Live) Disconnect() {
	l.mu.Lock()
	ws := l.ws
	cancel := l.cancelRead
	l.ws = nil
	l.cancelRead = nil
	l.sessionID = ""
	l.maxPayload = 0
	changed := l.status != StatusDisconnected
	hs := l.setStatusLocked(StatusDisconnected)
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ws != nil {
		_ = ws.Close(websocket.StatusNormalClosure, "client disconnect")
	}
	if changed {
		hs.notifyStatus(StatusDisconnected, "")
	}
}

// Send writes one message envelope. Not connected is a warning no-op, so a
// stale UI surface cannot crash the session view.
func (l *Live) Send(ctx context.Context, content string, opts SendOptions) error {
	l.mu.Lock()
	if l.status != StatusConnected || l.ws == nil {
		l.mu.Unlock()
		l.log.Warn("send while not connected, dropping message")
		return nil
	}
	ws := l.ws
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = l.sessionID
	}
	maxPayload := l.maxPayload
	l.mu.Unlock()

	data, err := json.Marshal(Envelope{
		Type:      TypeMessage,
		SessionID: sessionID,
		Content:   content,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if maxPayload > 0 && int64(len(data)) > maxPayload {
		return fmt.Errorf("message exceeds server limit of %d bytes", maxPayload)
	}

	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		l.log.Error("websocket write failed", "error", err)
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// readLoop delivers inbound frames to handlers in transport order and
// translates the close code into the final state.
func (l *Live) readLoop(ctx context.Context, ws *websocket.Conn) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			l.handleClose(err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			l.log.Warn("discarding unparseable frame", "error", err)
			continue
		}

		l.mu.Lock()
		if env.Type == TypeConnected {
			var p ConnectedPayload
			if err := json.Unmarshal(env.Payload, &p); err == nil {
				l.sessionID = p.SessionID
				l.maxPayload = p.MaxPayloadBytes
			}
		}
		hs := l.handlers
		l.mu.Unlock()

		hs.notifyMessage(env)
	}
}

// handleClose maps the close code onto the terminal state: 1011 and every
// code >= 4000 signal abnormal termination. Session state is always
// cleared.
func (l *Live) handleClose(err error) {
	code := websocket.CloseStatus(err)
	reason := ""
	var ce websocket.CloseError
	if errors.As(err, &ce) {
		reason = ce.Reason
	}

	l.mu.Lock()
	// Disconnect already ran and reset state.
	if l.ws == nil && l.status == StatusDisconnected {
		l.mu.Unlock()
		return
	}
	l.ws = nil
	l.sessionID = ""
	l.maxPayload = 0
	l.mu.Unlock()

	switch {
	case code == websocket.StatusInternalError || code >= 4000:
		if reason == "" {
			reason = genericErrMsg
		}
		l.setStatus(StatusError, reason)
	case code != -1:
		l.setStatus(StatusDisconnected, "")
	default:
		// No close frame at all: the transport died.
		l.log.Error("websocket read failed", "error", err)
		l.setStatus(StatusError, genericErrMsg)
	}
}

// setStatus updates the state and fans out the change to handlers in
// registration order.
func (l *Live) setStatus(s Status, detail string) {
	l.mu.Lock()
	if l.status == s {
		l.mu.Unlock()
		return
	}
	hs := l.setStatusLocked(s)
	l.mu.Unlock()
	hs.notifyStatus(s, detail)
}

// setStatusLocked records the new state and returns a handler snapshot for
// notification outside the lock. Callers must hold l.mu.
func (l *Live) setStatusLocked(s Status) handlerSet {
	l.status = s
	return l.handlers
}

// endpoint builds the channel URL from the configured proxy or the
// resolver.
func (l *Live) endpoint(ctx context.Context) (string, error) {
	base := l.proxyURL
	if base == "" {
		if l.resolver == nil {
			return "", fmt.Errorf("no websocket endpoint configured")
		}
		resolved, err := l.resolver(ctx)
		if err != nil {
			return "", err
		}
		base = resolved
	}

	base = strings.TrimRight(base, "/")
	return fmt.Sprintf("%s/api/agents/%s/%s/ws",
		base, url.PathEscape(l.namespace), url.PathEscape(l.name)), nil
}
