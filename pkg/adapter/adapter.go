// Package adapter defines the uniform connection contract the protocol
// adapters implement (AG-UI, ACP, Vercel AI, A2A) and the shared connection
// lifecycle: state machine, reconnect with exponential backoff, and
// synchronous event fan-out to subscribers.
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/datalayer/agentkit/pkg/core"
	"github.com/datalayer/agentkit/pkg/messages"
)

// ConnectionState is the lifecycle state of an adapter.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateReconnecting ConnectionState = "reconnecting"
	StateError        ConnectionState = "error"
)

// Config contains connection parameters shared by all adapters.
type Config struct {
	// AutoReconnect enables the reconnect-with-backoff loop on transport
	// failure.
	AutoReconnect bool

	// ReconnectDelay is the base backoff delay; attempt n waits
	// ReconnectDelay * 2^(n-1).
	ReconnectDelay time.Duration

	// MaxReconnectAttempts bounds the reconnect loop before the adapter
	// settles in the error state.
	MaxReconnectAttempts int

	// RequestTimeout applies to individual request/response round trips,
	// not to open streams.
	RequestTimeout time.Duration

	// AuthToken, when set, is sent as a bearer token.
	AuthToken string

	// Headers are extra headers added to every request.
	Headers map[string]string
}

// DefaultConfig returns the default connection parameters.
func DefaultConfig() Config {
	return Config{
		AutoReconnect:        true,
		ReconnectDelay:       time.Second,
		MaxReconnectAttempts: 5,
		RequestTimeout:       30 * time.Second,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = def.ReconnectDelay
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = def.MaxReconnectAttempts
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	return c
}

// ToolDefinition describes a tool offered to the agent alongside a message.
// Parameters is a JSON Schema document.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// SendOptions carries the optional parts of a SendMessage call.
type SendOptions struct {
	// ThreadID continues an existing conversation thread.
	ThreadID string

	// Model overrides the agent's default model for this message.
	Model string

	// Tools are offered to the agent for this run.
	Tools []ToolDefinition

	// History, when non-nil, replaces the server-side conversation history.
	History []messages.Message

	// Metadata is forwarded opaquely to the agent.
	Metadata map[string]any
}

// Adapter is the uniform connection object over heterogeneous wire
// protocols.
type Adapter interface {
	// Connect establishes the underlying transport.
	Connect(ctx context.Context) error

	// Disconnect tears down the transport and cancels any pending
	// reconnect.
	Disconnect() error

	// SendMessage transmits a chat message.
	SendMessage(ctx context.Context, msg messages.Message, opts *SendOptions) error

	// SendToolResult returns a tool-execution result to the agent.
	SendToolResult(ctx context.Context, toolCallID string, result any) error

	// Subscribe registers an event handler and returns an idempotent
	// unsubscribe function.
	Subscribe(handler Handler) func()

	// State returns the current connection state.
	State() ConnectionState

	// AgentCard performs capability discovery. Protocols without a card
	// return nil, nil.
	AgentCard(ctx context.Context) (*core.AgentCard, error)

	// SupportsFeature answers per-protocol capability queries; see the
	// Feature constants in pkg/core.
	SupportsFeature(name string) bool
}
