// Package vercel implements an adapter for the Vercel AI SDK Data Stream
// Protocol: an HTTP POST answered by a stream of TYPE:JSON lines, translated
// into the unified event vocabulary.
package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/datalayer/agentkit/internal/httpx"
	"github.com/datalayer/agentkit/pkg/adapter"
	"github.com/datalayer/agentkit/pkg/core"
	"github.com/datalayer/agentkit/pkg/messages"
)

// Adapter speaks the Data Stream Protocol to a chat endpoint.
type Adapter struct {
	*adapter.Base

	endpoint string
	client   *http.Client

	mu      sync.Mutex
	history []messages.Message
}

// New creates a Data Stream Protocol adapter for the given chat endpoint.
func New(endpoint string, cfg adapter.Config, logger *logrus.Logger) (*Adapter, error) {
	if endpoint == "" {
		return nil, &core.ConfigError{Field: "endpoint", Value: endpoint, Err: fmt.Errorf("endpoint cannot be empty")}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, &core.ConfigError{Field: "endpoint", Value: endpoint, Err: fmt.Errorf("invalid endpoint: %w", err)}
	}
	return &Adapter{
		Base:     adapter.NewBase("vercel-ai", cfg, logger),
		endpoint: endpoint,
		client:   httpx.NewStreamingClient(),
	}, nil
}

// Connect marks the adapter connected; the transport is per-request HTTP.
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

type chatRequest struct {
	Messages []messages.Message       `json:"messages"`
	Tools    []adapter.ToolDefinition `json:"tools,omitempty"`
	Model    string                   `json:"model,omitempty"`
	Metadata map[string]any           `json:"metadata,omitempty"`
}

// SendMessage posts the conversation and streams the reply. It blocks until
// the stream ends.
func (a *Adapter) SendMessage(ctx context.Context, msg messages.Message, opts *adapter.SendOptions) error {
	if a.State() != adapter.StateConnected {
		return core.ErrNotConnected
	}
	if opts == nil {
		opts = &adapter.SendOptions{}
	}

	a.mu.Lock()
	if opts.History != nil {
		a.history = append([]messages.Message(nil), opts.History...)
	}
	a.history = append(a.history, msg)
	req := chatRequest{
		Messages: append([]messages.Message(nil), a.history...),
		Tools:    opts.Tools,
		Model:    opts.Model,
		Metadata: opts.Metadata,
	}
	a.mu.Unlock()

	reply, err := a.stream(ctx, req)
	if err != nil {
		a.EmitError(err)
		a.StartReconnect(a.Connect)
		return err
	}

	if reply != "" {
		a.mu.Lock()
		a.history = append(a.history, messages.Message{
			ID:      uuid.New().String(),
			Role:    messages.RoleAssistant,
			Content: reply,
		})
		a.mu.Unlock()
	}
	return nil
}

// SendToolResult replays the conversation with an appended tool message.
func (a *Adapter) SendToolResult(ctx context.Context, toolCallID string, result any) error {
	msg, err := messages.NewToolResult(toolCallID, result)
	if err != nil {
		return err
	}
	return a.SendMessage(ctx, msg, nil)
}

func (a *Adapter) stream(ctx context.Context, chat chatRequest) (string, error) {
	body, err := json.Marshal(chat)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &core.TransportError{Protocol: "vercel-ai", Endpoint: a.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	httpx.ApplyHeaders(req, a.Headers())

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &core.TransportError{Protocol: "vercel-ai", Endpoint: a.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &core.ProtocolError{
			Protocol:  "vercel-ai",
			Operation: "chat",
			Code:      resp.StatusCode,
			Err:       fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	translator := newTranslator(a, a.Log())
	if err := readDataStream(resp.Body, translator.handlePart); err != nil {
		return "", err
	}
	translator.finish()
	return translator.text(), nil
}

// History returns a copy of the locally mirrored conversation.
func (a *Adapter) History() []messages.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]messages.Message, len(a.history))
	copy(out, a.history)
	return out
}

// SupportsFeature reports Data Stream Protocol capabilities.
func (a *Adapter) SupportsFeature(name string) bool {
	switch name {
	case core.FeatureStreaming, core.FeatureToolCalls:
		return true
	}
	return false
}
