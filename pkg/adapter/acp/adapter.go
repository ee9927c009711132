// Package acp implements the Agent Client Protocol adapter: JSON-RPC 2.0
// over a WebSocket, with an initialize/session handshake, prompt requests,
// and session/update notifications streamed back as events.
package acp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/datalayer/agentkit/pkg/adapter"
	"github.com/datalayer/agentkit/pkg/core"
	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/messages"
)

const protocolVersion = 1

// Adapter speaks ACP over a WebSocket endpoint.
type Adapter struct {
	*adapter.Base

	url string

	mu        sync.Mutex
	conn      *websocket.Conn
	sessionID string
	closing   bool
	nextID    int64
	pending   map[int64]chan *rpcResponse

	writeMu sync.Mutex
}

// New creates an ACP adapter for the given WebSocket URL (ws:// or wss://).
func New(wsURL string, cfg adapter.Config, logger *logrus.Logger) (*Adapter, error) {
	if wsURL == "" {
		return nil, &core.ConfigError{Field: "wsURL", Value: wsURL, Err: fmt.Errorf("WebSocket URL cannot be empty")}
	}
	return &Adapter{
		Base:    adapter.NewBase("acp", cfg, logger),
		url:     wsURL,
		pending: make(map[int64]chan *rpcResponse),
	}, nil
}

// Connect dials the WebSocket and performs the initialize and session/new
// handshake. On failure the reconnect loop takes over; the error state is
// reached only once its attempt budget is spent.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.conn != nil {
		a.mu.Unlock()
		return core.ErrAlreadyConnected
	}
	a.mu.Unlock()

	a.SetState(adapter.StateConnecting)
	if err := a.connect(ctx); err != nil {
		if a.Config().AutoReconnect {
			a.StartReconnect(a.connect)
		} else {
			a.SetState(adapter.StateDisconnected)
		}
		return err
	}
	return nil
}

// connect is one dial-and-handshake attempt. It never emits error events
// itself so the reconnect loop can retry it without flooding subscribers.
func (a *Adapter) connect(ctx context.Context) error {
	a.mu.Lock()
	a.closing = false
	a.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: a.Config().RequestTimeout}
	conn, _, err := dialer.DialContext(ctx, a.url, a.Headers())
	if err != nil {
		return &core.TransportError{Protocol: "acp", Endpoint: a.url, Err: err}
	}

	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()
	go a.readLoop(conn)

	var initResp InitializeResponse
	err = a.call(ctx, "initialize", InitializeRequest{
		ProtocolVersion: protocolVersion,
		ClientInfo:      Implementation{Name: "agentkit", Version: "0.1.0"},
	}, &initResp)
	if err != nil {
		a.teardown()
		return err
	}

	var sessResp NewSessionResponse
	err = a.call(ctx, "session/new", NewSessionRequest{McpServers: []any{}}, &sessResp)
	if err != nil {
		a.teardown()
		return err
	}

	a.mu.Lock()
	a.sessionID = sessResp.SessionID
	a.mu.Unlock()

	a.SetState(adapter.StateConnected)
	a.ResetAttempts()
	return nil
}

// Disconnect closes the socket and cancels any pending reconnect.
func (a *Adapter) Disconnect() error {
	a.CancelReconnect()

	a.mu.Lock()
	a.closing = true
	conn := a.conn
	a.conn = nil
	a.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
	a.SetState(adapter.StateDisconnected)
	return nil
}

// SendMessage submits a prompt turn. Streamed session updates arrive via
// subscribers; the call returns when the agent finishes the turn.
func (a *Adapter) SendMessage(ctx context.Context, msg messages.Message, opts *adapter.SendOptions) error {
	a.mu.Lock()
	sessionID := a.sessionID
	connected := a.conn != nil
	a.mu.Unlock()
	if !connected {
		return core.ErrNotConnected
	}

	var resp PromptResponse
	return a.call(ctx, "session/prompt", PromptRequest{
		SessionID: sessionID,
		Prompt:    []ContentPart{{Type: "text", Text: msg.Content}},
	}, &resp)
}

// SendToolResult returns a tool outcome to the agent.
func (a *Adapter) SendToolResult(ctx context.Context, toolCallID string, result any) error {
	a.mu.Lock()
	sessionID := a.sessionID
	connected := a.conn != nil
	a.mu.Unlock()
	if !connected {
		return core.ErrNotConnected
	}

	return a.call(ctx, "session/tool_result", ToolResultParams{
		SessionID:  sessionID,
		ToolCallID: toolCallID,
		Result:     result,
	}, nil)
}

// SupportsFeature reports ACP capabilities.
func (a *Adapter) SupportsFeature(name string) bool {
	switch name {
	case core.FeatureStreaming, core.FeatureToolCalls:
		return true
	}
	return false
}

// call issues a JSON-RPC request and waits for its response.
func (a *Adapter) call(ctx context.Context, method string, params, result any) error {
	a.mu.Lock()
	conn := a.conn
	if conn == nil {
		a.mu.Unlock()
		return core.ErrNotConnected
	}
	a.nextID++
	id := a.nextID
	ch := make(chan *rpcResponse, 1)
	a.pending[id] = ch
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.pending, id)
		a.mu.Unlock()
	}()

	if err := a.write(conn, rpcRequest{JSONRPC: "2.0", ID: &id, Method: method, Params: params}); err != nil {
		return &core.TransportError{Protocol: "acp", Endpoint: a.url, Err: err}
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config().RequestTimeout)
		defer cancel()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return core.ErrStreamClosed
		}
		if resp.Error != nil {
			return &core.ProtocolError{
				Protocol:  "acp",
				Operation: method,
				Code:      resp.Error.Code,
				Err:       fmt.Errorf("%s", resp.Error.Message),
			}
		}
		if result != nil && resp.Result != nil {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("failed to decode %s result: %w", method, err)
			}
		}
		return nil
	}
}

func (a *Adapter) write(conn *websocket.Conn, v any) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return conn.WriteJSON(v)
}

// readLoop pumps inbound frames: responses complete pending calls,
// session/update notifications become stream events.
func (a *Adapter) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			a.handleReadError(conn, err)
			return
		}

		var frame rpcResponse
		if err := json.Unmarshal(data, &frame); err != nil {
			a.Log().WithError(err).Warn("dropping undecodable frame")
			continue
		}

		switch {
		case frame.ID != nil && frame.Method == "":
			a.mu.Lock()
			ch := a.pending[*frame.ID]
			a.mu.Unlock()
			if ch != nil {
				ch <- &frame
			}
		case frame.Method == "session/update":
			a.handleSessionUpdate(frame.Params)
		default:
			a.Log().WithField("method", frame.Method).Debug("ignoring frame")
		}
	}
}

func (a *Adapter) handleReadError(conn *websocket.Conn, err error) {
	a.mu.Lock()
	closing := a.closing
	if a.conn == conn {
		a.conn = nil
	}
	for id, ch := range a.pending {
		close(ch)
		delete(a.pending, id)
	}
	a.mu.Unlock()

	if closing {
		return
	}

	a.EmitError(&core.TransportError{Protocol: "acp", Endpoint: a.url, Err: err})
	a.StartReconnect(a.connect)
}

// handleSessionUpdate translates an ACP session update into the unified
// event vocabulary; unrecognized kinds pass through as custom events.
func (a *Adapter) handleSessionUpdate(params json.RawMessage) {
	var update sessionUpdate
	if err := json.Unmarshal(params, &update); err != nil {
		a.Log().WithError(err).Warn("dropping malformed session update")
		return
	}
	var body updateBody
	if err := json.Unmarshal(update.Update, &body); err != nil {
		a.Log().WithError(err).Warn("dropping malformed session update body")
		return
	}

	switch body.Kind {
	case "agent_message_chunk":
		if body.Content != nil && body.Content.Text != "" {
			a.EmitStream(events.NewTextMessageContentEvent(update.SessionID, body.Content.Text))
		}
	case "tool_call":
		id := body.ToolCallID
		if id == "" {
			id = uuid.New().String()
		}
		a.EmitStream(events.NewToolCallStartEvent(id, body.Title))
		if len(body.RawInput) > 0 {
			a.EmitStream(events.NewToolCallArgsEvent(id, string(body.RawInput)))
		}
	case "tool_call_update":
		if body.Status == "completed" || body.Status == "failed" {
			a.EmitStream(events.NewToolCallEndEvent(body.ToolCallID))
		}
	default:
		kind := body.Kind
		if kind == "" {
			kind = "session/update"
		}
		var value any
		_ = json.Unmarshal(update.Update, &value)
		a.EmitStream(events.NewCustomEvent(kind, events.WithValue(value)))
	}
}

func (a *Adapter) teardown() {
	a.mu.Lock()
	a.closing = true
	conn := a.conn
	a.conn = nil
	a.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}
