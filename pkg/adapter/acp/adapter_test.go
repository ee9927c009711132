package acp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalayer/agentkit/pkg/adapter"
	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/messages"
)

var upgrader = websocket.Upgrader{}

// fakeAgent answers the handshake and streams a canned reply to prompts.
func fakeAgent(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for {
			var req rpcRequest
			var raw map[string]json.RawMessage
			if err := conn.ReadJSON(&raw); err != nil {
				return
			}
			data, _ := json.Marshal(raw)
			require.NoError(t, json.Unmarshal(data, &req))

			switch req.Method {
			case "initialize":
				writeResult(t, conn, req.ID, InitializeResponse{
					ProtocolVersion: 1,
					AgentInfo:       Implementation{Name: "fake-agent", Version: "1.0"},
				})
			case "session/new":
				writeResult(t, conn, req.ID, NewSessionResponse{SessionID: "sess-1"})
			case "session/prompt":
				// Stream two chunks before completing the turn.
				notify(t, conn, "session/update", map[string]any{
					"sessionId": "sess-1",
					"update": map[string]any{
						"sessionUpdate": "agent_message_chunk",
						"content":       map[string]any{"type": "text", "text": "Hello "},
					},
				})
				notify(t, conn, "session/update", map[string]any{
					"sessionId": "sess-1",
					"update": map[string]any{
						"sessionUpdate": "agent_message_chunk",
						"content":       map[string]any{"type": "text", "text": "from ACP"},
					},
				})
				writeResult(t, conn, req.ID, PromptResponse{StopReason: "end_turn"})
			case "session/tool_result":
				writeResult(t, conn, req.ID, map[string]any{})
			}
		}
	}))
}

func writeResult(t *testing.T, conn *websocket.Conn, id *int64, result any) {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(rpcResponse{JSONRPC: "2.0", ID: id, Result: raw}))
}

func notify(t *testing.T, conn *websocket.Conn, method string, params any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(rpcRequest{JSONRPC: "2.0", Method: method, Params: params}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConnectHandshake(t *testing.T) {
	srv := fakeAgent(t)
	defer srv.Close()

	a, err := New(wsURL(srv), adapter.DefaultConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, a.Connect(context.Background()))
	assert.Equal(t, adapter.StateConnected, a.State())

	require.NoError(t, a.Disconnect())
	assert.Equal(t, adapter.StateDisconnected, a.State())
}

func TestPromptStreamsChunks(t *testing.T) {
	srv := fakeAgent(t)
	defer srv.Close()

	a, err := New(wsURL(srv), adapter.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))
	defer a.Disconnect()

	var mu sync.Mutex
	var text strings.Builder
	a.Subscribe(func(ev adapter.Event) {
		if ev.Type != adapter.EventStream {
			return
		}
		if content, ok := ev.Stream.(*events.TextMessageContentEvent); ok {
			mu.Lock()
			text.WriteString(content.Delta)
			mu.Unlock()
		}
	})

	err = a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hi"), nil)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Hello from ACP", text.String())
}

func TestSendToolResult(t *testing.T) {
	srv := fakeAgent(t)
	defer srv.Close()

	a, err := New(wsURL(srv), adapter.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))
	defer a.Disconnect()

	err = a.SendToolResult(context.Background(), "call-1", map[string]any{"ok": true})
	assert.NoError(t, err)
}

func TestConnectDialFailureLeavesDisconnected(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.AutoReconnect = false
	a, err := New("ws://localhost:1/acp", cfg, nil)
	require.NoError(t, err)

	require.Error(t, a.Connect(context.Background()))
	assert.Equal(t, adapter.StateDisconnected, a.State())
}

func TestSendMessageWhenDisconnected(t *testing.T) {
	a, err := New("ws://localhost:1/acp", adapter.DefaultConfig(), nil)
	require.NoError(t, err)

	err = a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hi"), nil)
	assert.Error(t, err)
}

func TestServerDropTriggersReconnect(t *testing.T) {
	var drops int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		drops++
		first := drops == 1
		mu.Unlock()

		for {
			var req rpcRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			switch req.Method {
			case "initialize":
				writeResult(t, conn, req.ID, InitializeResponse{ProtocolVersion: 1})
			case "session/new":
				writeResult(t, conn, req.ID, NewSessionResponse{SessionID: "sess-2"})
				if first {
					// Drop the connection after the handshake completes.
					conn.Close()
					return
				}
			}
		}
	}))
	defer srv.Close()

	cfg := adapter.DefaultConfig()
	cfg.ReconnectDelay = 10 * time.Millisecond
	a, err := New(wsURL(srv), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))

	// The server drops us; the adapter should come back on its own.
	require.Eventually(t, func() bool {
		return a.State() == adapter.StateConnected
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, drops, 2)
	a.Disconnect()
}
