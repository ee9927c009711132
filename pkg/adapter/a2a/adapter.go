// Package a2a implements an adapter for the Agent-to-Agent protocol: JSON-RPC
// over HTTP with agent discovery via the well-known agent card.
package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/datalayer/agentkit/internal/httpx"
	"github.com/datalayer/agentkit/pkg/adapter"
	"github.com/datalayer/agentkit/pkg/core"
	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/messages"
)

// Adapter speaks A2A JSON-RPC to a single remote agent.
type Adapter struct {
	*adapter.Base

	baseURL string
	client  *http.Client
	nextID  atomic.Int64

	cardGroup singleflight.Group
	cardMu    sync.RWMutex
	card      *core.AgentCard

	mu        sync.Mutex
	contextID string
	taskID    string
}

// New creates an A2A adapter for the agent served at baseURL. The agent card
// is expected at baseURL + "/.well-known/agent.json" and the JSON-RPC
// endpoint at baseURL itself.
func New(baseURL string, cfg adapter.Config, logger *logrus.Logger) (*Adapter, error) {
	if baseURL == "" {
		return nil, &core.ConfigError{Field: "baseURL", Value: baseURL, Err: fmt.Errorf("base URL cannot be empty")}
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, &core.ConfigError{Field: "baseURL", Value: baseURL, Err: fmt.Errorf("invalid base URL: %w", err)}
	}
	return &Adapter{
		Base:    adapter.NewBase("a2a", cfg, logger),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpx.NewClient(cfg.RequestTimeout),
	}, nil
}

// Connect fetches the agent card to verify the remote agent is reachable.
// On failure the reconnect loop takes over; the error state and its single
// error event are reached only once the attempt budget is spent.
func (a *Adapter) Connect(ctx context.Context) error {
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

// connect is one connection attempt. It never emits error events itself so
// the reconnect loop can retry it without flooding subscribers.
func (a *Adapter) connect(ctx context.Context) error {
	if _, err := a.AgentCard(ctx); err != nil {
		return err
	}
	a.SetState(adapter.StateConnected)
	a.ResetAttempts()
	return nil
}

// Disconnect cancels any pending reconnect and forgets the task context.
func (a *Adapter) Disconnect() error {
	a.CancelReconnect()
	a.mu.Lock()
	a.contextID = ""
	a.taskID = ""
	a.mu.Unlock()
	a.SetState(adapter.StateDisconnected)
	return nil
}

// AgentCard fetches the well-known agent card, caching the result.
// Concurrent callers share a single fetch.
func (a *Adapter) AgentCard(ctx context.Context) (*core.AgentCard, error) {
	a.cardMu.RLock()
	cached := a.card
	a.cardMu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := a.cardGroup.Do("card", func() (any, error) {
		return a.fetchCard(ctx)
	})
	if err != nil {
		return nil, err
	}
	card := v.(*core.AgentCard)
	a.cardMu.Lock()
	a.card = card
	a.cardMu.Unlock()
	return card, nil
}

func (a *Adapter) fetchCard(ctx context.Context) (*core.AgentCard, error) {
	cardURL := a.baseURL + agentCardPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cardURL, nil)
	if err != nil {
		return nil, &core.TransportError{Protocol: "a2a", Endpoint: cardURL, Err: err}
	}
	httpx.ApplyHeaders(req, a.Headers())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &core.TransportError{Protocol: "a2a", Endpoint: cardURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &core.ProtocolError{
			Protocol:  "a2a",
			Operation: "agent-card",
			Code:      resp.StatusCode,
			Err:       fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var wire agentCard
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &core.ProtocolError{
			Protocol:  "a2a",
			Operation: "agent-card",
			Err:       fmt.Errorf("failed to decode agent card: %w", err),
		}
	}

	card := &core.AgentCard{
		Name:            wire.Name,
		Description:     wire.Description,
		URL:             wire.URL,
		Version:         wire.Version,
		ProtocolVersion: wire.ProtocolVersion,
	}
	if wire.Capabilities != nil {
		card.Capabilities = map[string]any{
			"streaming":              wire.Capabilities.Streaming,
			"pushNotifications":      wire.Capabilities.PushNotifications,
			"stateTransitionHistory": wire.Capabilities.StateTransitionHistory,
		}
	}
	for _, s := range wire.Skills {
		card.Skills = append(card.Skills, core.AgentSkill{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Tags:        s.Tags,
		})
	}
	return card, nil
}

// SendMessage sends a user message via message/send and translates the reply
// into stream events. It blocks until the call returns.
func (a *Adapter) SendMessage(ctx context.Context, msg messages.Message, opts *adapter.SendOptions) error {
	if a.State() != adapter.StateConnected {
		return core.ErrNotConnected
	}
	wire := wireMessage{
		Role:      "user",
		Parts:     []wirePart{{Kind: "text", Text: msg.Content}},
		MessageID: msg.ID,
		Kind:      "message",
	}
	if wire.MessageID == "" {
		wire.MessageID = uuid.New().String()
	}
	a.mu.Lock()
	wire.TaskID = a.taskID
	wire.ContextID = a.contextID
	a.mu.Unlock()

	return a.send(ctx, wire)
}

// SendToolResult reports a tool outcome back to the agent as a data part.
func (a *Adapter) SendToolResult(ctx context.Context, toolCallID string, result any) error {
	if a.State() != adapter.StateConnected {
		return core.ErrNotConnected
	}
	data, err := json.Marshal(map[string]any{"toolCallId": toolCallID, "result": result})
	if err != nil {
		return fmt.Errorf("failed to encode tool result: %w", err)
	}
	wire := wireMessage{
		Role:      "user",
		Parts:     []wirePart{{Kind: "data", Data: data}},
		MessageID: uuid.New().String(),
		Kind:      "message",
	}
	a.mu.Lock()
	wire.TaskID = a.taskID
	wire.ContextID = a.contextID
	a.mu.Unlock()

	return a.send(ctx, wire)
}

func (a *Adapter) send(ctx context.Context, wire wireMessage) error {
	result, err := a.call(ctx, methodMessageSend, sendParams{Message: wire})
	if err != nil {
		a.EmitError(err)
		a.StartReconnect(a.connect)
		return err
	}
	a.translateResult(result)
	return nil
}

func (a *Adapter) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      a.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &core.TransportError{Protocol: "a2a", Endpoint: a.baseURL, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpx.ApplyHeaders(httpReq, a.Headers())

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, &core.TransportError{Protocol: "a2a", Endpoint: a.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &core.ProtocolError{
			Protocol:  "a2a",
			Operation: method,
			Code:      resp.StatusCode,
			Err:       fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, &core.ProtocolError{
			Protocol:  "a2a",
			Operation: method,
			Err:       fmt.Errorf("failed to decode response: %w", err),
		}
	}
	if rpcResp.Error != nil {
		return nil, &core.ProtocolError{
			Protocol:  "a2a",
			Operation: method,
			Code:      rpcResp.Error.Code,
			Err:       fmt.Errorf("%s", rpcResp.Error.Message),
		}
	}
	return rpcResp.Result, nil
}

// translateResult folds a message/send result, either a bare message or a
// task, into stream events.
func (a *Adapter) translateResult(result json.RawMessage) {
	var kind struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(result, &kind); err != nil {
		a.Log().WithError(err).Warn("dropping undecodable message/send result")
		return
	}

	switch kind.Kind {
	case "message":
		var msg wireMessage
		if err := json.Unmarshal(result, &msg); err != nil {
			a.Log().WithError(err).Warn("dropping malformed agent message")
			return
		}
		a.emitMessage(msg)

	case "task", "":
		var t task
		if err := json.Unmarshal(result, &t); err != nil {
			a.Log().WithError(err).Warn("dropping malformed task result")
			return
		}
		a.mu.Lock()
		a.taskID = t.ID
		a.contextID = t.ContextID
		a.mu.Unlock()
		a.emitTask(t)

	default:
		a.Log().WithField("kind", kind.Kind).Debug("ignoring message/send result")
	}
}

func (a *Adapter) emitMessage(msg wireMessage) {
	id := msg.MessageID
	if id == "" {
		id = uuid.New().String()
	}
	started := false
	for _, part := range msg.Parts {
		switch part.Kind {
		case "text":
			if !started {
				started = true
				a.EmitStream(events.NewTextMessageStartEvent(id, events.WithRole("assistant")))
			}
			a.EmitStream(events.NewTextMessageContentEvent(id, part.Text))
		case "data":
			var value any
			_ = json.Unmarshal(part.Data, &value)
			a.EmitStream(events.NewCustomEvent("data-part", events.WithValue(value)))
		}
	}
	if started {
		a.EmitStream(events.NewTextMessageEndEvent(id))
	}
}

func (a *Adapter) emitTask(t task) {
	for _, art := range t.Artifacts {
		a.emitMessage(wireMessage{MessageID: art.ArtifactID, Parts: art.Parts})
	}
	if t.Status.Message != nil {
		a.emitMessage(*t.Status.Message)
	}

	switch t.Status.State {
	case taskStateCompleted:
		a.EmitStream(events.NewRunFinishedEvent(t.ContextID, t.ID))
	case taskStateFailed, taskStateRejected:
		ev := events.NewRunErrorEvent(fmt.Sprintf("task %s %s", t.ID, t.Status.State), events.WithRunID(t.ID))
		a.EmitStream(ev)
	case taskStateCanceled:
		a.EmitStream(events.NewRunFinishedEvent(t.ContextID, t.ID))
	}
}

// SupportsFeature reports A2A capabilities.
func (a *Adapter) SupportsFeature(name string) bool {
	switch name {
	case core.FeatureStreaming, core.FeatureToolCalls, core.FeatureAgentCard:
		return true
	}
	return false
}
