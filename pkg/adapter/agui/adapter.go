// Package agui implements the AG-UI protocol adapter. Each run is an HTTP
// POST to the agent endpoint answered by a Server-Sent Events stream of
// AG-UI events.
package agui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/datalayer/agentkit/internal/httpx"
	"github.com/datalayer/agentkit/pkg/adapter"
	"github.com/datalayer/agentkit/pkg/core"
	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/messages"
)

// RunAgentInput is the request body for an AG-UI run.
type RunAgentInput struct {
	ThreadID       string                   `json:"threadId"`
	RunID          string                   `json:"runId"`
	Messages       []messages.Message       `json:"messages"`
	Tools          []adapter.ToolDefinition `json:"tools,omitempty"`
	State          any                      `json:"state,omitempty"`
	ForwardedProps map[string]any           `json:"forwardedProps,omitempty"`
	Model          string                   `json:"model,omitempty"`
}

// Adapter speaks AG-UI to a single agent endpoint
// (<base>/api/v1/ag-ui/<agentId>).
type Adapter struct {
	*adapter.Base

	endpoint string
	client   *http.Client

	mu       sync.Mutex
	threadID string
	history  []messages.Message
}

// New creates an AG-UI adapter for the agent at baseURL.
func New(baseURL, agentID string, cfg adapter.Config, logger *logrus.Logger) (*Adapter, error) {
	if baseURL == "" {
		return nil, &core.ConfigError{Field: "baseURL", Value: baseURL, Err: fmt.Errorf("base URL cannot be empty")}
	}
	if agentID == "" {
		return nil, &core.ConfigError{Field: "agentID", Value: agentID, Err: fmt.Errorf("agent ID cannot be empty")}
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, &core.ConfigError{Field: "baseURL", Value: baseURL, Err: fmt.Errorf("invalid base URL: %w", err)}
	}

	return &Adapter{
		Base:     adapter.NewBase("ag-ui", cfg, logger),
		endpoint: strings.TrimRight(parsed.String(), "/") + "/api/v1/ag-ui/" + agentID,
		client:   httpx.NewStreamingClient(),
		threadID: uuid.New().String(),
	}, nil
}

// Connect marks the adapter connected. AG-UI transport is per-request HTTP;
// there is no persistent socket to establish.
func (a *Adapter) Connect(ctx context.Context) error {
	a.SetState(adapter.StateConnecting)
	a.SetState(adapter.StateConnected)
	return nil
}

// Disconnect cancels any pending reconnect and marks the adapter
// disconnected.
func (a *Adapter) Disconnect() error {
	a.CancelReconnect()
	a.SetState(adapter.StateDisconnected)
	return nil
}

// SendMessage starts a run carrying msg and streams the agent's events to
// subscribers. It blocks until the run stream ends.
func (a *Adapter) SendMessage(ctx context.Context, msg messages.Message, opts *adapter.SendOptions) error {
	if a.State() != adapter.StateConnected {
		return core.ErrNotConnected
	}
	if opts == nil {
		opts = &adapter.SendOptions{}
	}

	a.mu.Lock()
	if opts.ThreadID != "" {
		a.threadID = opts.ThreadID
	}
	if opts.History != nil {
		a.history = append([]messages.Message(nil), opts.History...)
	}
	a.history = append(a.history, msg)
	input := RunAgentInput{
		ThreadID:       a.threadID,
		RunID:          uuid.New().String(),
		Messages:       append([]messages.Message(nil), a.history...),
		Tools:          opts.Tools,
		ForwardedProps: opts.Metadata,
		Model:          opts.Model,
	}
	a.mu.Unlock()

	mirror := events.NewStreamState(nil)
	if err := a.run(ctx, input, mirror); err != nil {
		a.EmitError(err)
		a.StartReconnect(a.Connect)
		return err
	}

	// Fold the agent's reply into the local history for the next turn.
	a.mu.Lock()
	for _, m := range mirror.Messages() {
		a.history = append(a.history, m)
	}
	a.mu.Unlock()
	return nil
}

// SendToolResult returns a tool execution result to the agent as a
// tool-role message on the current thread.
func (a *Adapter) SendToolResult(ctx context.Context, toolCallID string, result any) error {
	msg, err := messages.NewToolResult(toolCallID, result)
	if err != nil {
		return err
	}
	return a.SendMessage(ctx, msg, nil)
}

// run posts the input and pumps the SSE response into subscribers.
func (a *Adapter) run(ctx context.Context, input RunAgentInput, mirror *events.StreamState) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to encode run input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return &core.TransportError{Protocol: "ag-ui", Endpoint: a.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	httpx.ApplyHeaders(req, a.Headers())

	resp, err := a.client.Do(req)
	if err != nil {
		return &core.TransportError{Protocol: "ag-ui", Endpoint: a.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &core.ProtocolError{
			Protocol:  "ag-ui",
			Operation: "run",
			Code:      resp.StatusCode,
			Err:       fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	return ReadEventStream(resp.Body, func(data []byte) {
		ev, err := events.EventFromJSON(data)
		if err != nil {
			a.Log().WithError(err).Warn("dropping undecodable stream event")
			return
		}
		if mirror != nil {
			_ = mirror.Apply(ev)
		}
		a.EmitStream(ev)
	})
}

// History returns a copy of the locally mirrored conversation.
func (a *Adapter) History() []messages.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]messages.Message, len(a.history))
	copy(out, a.history)
	return out
}

// SupportsFeature reports AG-UI capabilities.
func (a *Adapter) SupportsFeature(name string) bool {
	switch name {
	case core.FeatureStreaming, core.FeatureToolCalls, core.FeatureStateSync, core.FeatureThreads:
		return true
	}
	return false
}
