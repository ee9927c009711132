package agui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalayer/agentkit/pkg/adapter"
	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/messages"
)

func sseServer(t *testing.T, check func(input RunAgentInput), frames ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/api/v1/ag-ui/"))
		var input RunAgentInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		if check != nil {
			check(input)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
		}
	}))
}

func TestSendMessageStreamsEvents(t *testing.T) {
	srv := sseServer(t, func(input RunAgentInput) {
		assert.NotEmpty(t, input.ThreadID)
		assert.NotEmpty(t, input.RunID)
		assert.Len(t, input.Messages, 1)
		assert.Equal(t, "hello", input.Messages[0].Content)
	},
		`{"type":"RUN_STARTED","threadId":"t1","runId":"r1"}`,
		`{"type":"TEXT_MESSAGE_START","messageId":"m1","role":"assistant"}`,
		`{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"hi there"}`,
		`{"type":"TEXT_MESSAGE_END","messageId":"m1"}`,
		`{"type":"RUN_FINISHED","threadId":"t1","runId":"r1"}`,
	)
	defer srv.Close()

	a, err := New(srv.URL, "demo", adapter.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))

	var mu sync.Mutex
	var streamed []events.EventType
	a.Subscribe(func(ev adapter.Event) {
		if ev.Type != adapter.EventStream {
			return
		}
		mu.Lock()
		streamed = append(streamed, ev.Stream.Type())
		mu.Unlock()
	})

	err = a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hello"), nil)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []events.EventType{
		events.EventTypeRunStarted,
		events.EventTypeTextMessageStart,
		events.EventTypeTextMessageContent,
		events.EventTypeTextMessageEnd,
		events.EventTypeRunFinished,
	}, streamed)

	// The assistant reply is mirrored into local history for the next turn.
	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, "hi there", history[1].Content)
}

func TestSendMessageRequiresConnect(t *testing.T) {
	a, err := New("http://localhost:1", "demo", adapter.DefaultConfig(), nil)
	require.NoError(t, err)

	err = a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hello"), nil)
	assert.Error(t, err)
}

func TestSendMessageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := adapter.DefaultConfig()
	cfg.AutoReconnect = false
	a, err := New(srv.URL, "demo", cfg, nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))

	var errEvents int
	a.Subscribe(func(ev adapter.Event) {
		if ev.Type == adapter.EventError {
			errEvents++
		}
	})

	err = a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hello"), nil)
	require.Error(t, err)
	assert.Equal(t, 1, errEvents)
}

func TestHistoryOverride(t *testing.T) {
	var got RunAgentInput
	srv := sseServer(t, func(input RunAgentInput) { got = input })
	defer srv.Close()

	a, err := New(srv.URL, "demo", adapter.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))

	override := []messages.Message{
		{ID: "m0", Role: messages.RoleSystem, Content: "be nice"},
	}
	err = a.SendMessage(context.Background(), messages.New(messages.RoleUser, "hello"),
		&adapter.SendOptions{History: override, ThreadID: "thread-9"})
	require.NoError(t, err)

	assert.Equal(t, "thread-9", got.ThreadID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "be nice", got.Messages[0].Content)
}

func TestReadEventStreamSkipsKeepalives(t *testing.T) {
	body := ": keepalive\n" +
		"data: {\"a\":1}\n\n" +
		"data: [DONE]\n\n"
	var payloads []string
	err := ReadEventStream(strings.NewReader(body), func(data []byte) {
		payloads = append(payloads, string(data))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`}, payloads)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New("", "demo", adapter.DefaultConfig(), nil)
	assert.Error(t, err)
	_, err = New("http://localhost", "", adapter.DefaultConfig(), nil)
	assert.Error(t, err)
}
