package vercel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalayer/agentkit/pkg/adapter"
	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/messages"
)

func dataStreamServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-vercel-ai-data-stream", "v1")
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}))
}

func collectStream(a *Adapter) (*sync.Mutex, *[]events.Event) {
	var mu sync.Mutex
	var evs []events.Event
	a.Subscribe(func(ev adapter.Event) {
		if ev.Type != adapter.EventStream {
			return
		}
		mu.Lock()
		evs = append(evs, ev.Stream)
		mu.Unlock()
	})
	return &mu, &evs
}

func TestSendMessageTranslatesTextParts(t *testing.T) {
	srv := dataStreamServer(t,
		`f:{"messageId":"msg-1"}`,
		`0:"Hello "`,
		`0:"world"`,
		`e:{"finishReason":"stop"}`,
		`d:{"finishReason":"stop"}`,
	)
	defer srv.Close()

	a, err := New(srv.URL, adapter.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))
	mu, evs := collectStream(a)

	require.NoError(t, a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hi"), nil))

	mu.Lock()
	defer mu.Unlock()
	var kinds []events.EventType
	for _, ev := range *evs {
		kinds = append(kinds, ev.Type())
	}
	assert.Equal(t, []events.EventType{
		events.EventTypeTextMessageStart,
		events.EventTypeTextMessageContent,
		events.EventTypeTextMessageContent,
		events.EventTypeTextMessageEnd,
		events.EventTypeRunFinished,
	}, kinds)

	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, "Hello world", history[1].Content)
	assert.Equal(t, messages.RoleAssistant, history[1].Role)
}

func TestSendMessageTranslatesToolCall(t *testing.T) {
	srv := dataStreamServer(t,
		`9:{"toolCallId":"call-1","toolName":"search","args":{"q":"go"}}`,
		`a:{"toolCallId":"call-1","result":{"hits":3}}`,
		`d:{"finishReason":"tool-calls"}`,
	)
	defer srv.Close()

	a, err := New(srv.URL, adapter.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))
	mu, evs := collectStream(a)

	require.NoError(t, a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hi"), nil))

	mu.Lock()
	defer mu.Unlock()
	var start *events.ToolCallStartEvent
	var args *events.ToolCallArgsEvent
	for _, ev := range *evs {
		switch e := ev.(type) {
		case *events.ToolCallStartEvent:
			start = e
		case *events.ToolCallArgsEvent:
			args = e
		}
	}
	require.NotNil(t, start)
	assert.Equal(t, "search", start.ToolCallName)
	require.NotNil(t, args)
	assert.JSONEq(t, `{"q":"go"}`, args.Delta)
}

func TestStreamErrorPart(t *testing.T) {
	srv := dataStreamServer(t, `3:"model overloaded"`)
	defer srv.Close()

	a, err := New(srv.URL, adapter.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))
	mu, evs := collectStream(a)

	require.NoError(t, a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hi"), nil))

	mu.Lock()
	defer mu.Unlock()
	var found bool
	for _, ev := range *evs {
		if runErr, ok := ev.(*events.RunErrorEvent); ok {
			found = true
			assert.Equal(t, "model overloaded", runErr.Message)
		}
	}
	assert.True(t, found)
}

func TestServerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := adapter.DefaultConfig()
	cfg.AutoReconnect = false
	a, err := New(srv.URL, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))

	err = a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hi"), nil)
	assert.Error(t, err)
}
