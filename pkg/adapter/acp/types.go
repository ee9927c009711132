package acp

import "encoding/json"

// JSON-RPC 2.0 framing used by ACP.

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// InitializeRequest opens the ACP handshake.
type InitializeRequest struct {
	ProtocolVersion    int            `json:"protocolVersion"`
	ClientInfo         Implementation `json:"clientInfo"`
	ClientCapabilities map[string]any `json:"clientCapabilities,omitempty"`
}

// InitializeResponse carries the agent's side of the handshake.
type InitializeResponse struct {
	ProtocolVersion   int            `json:"protocolVersion"`
	AgentCapabilities map[string]any `json:"agentCapabilities,omitempty"`
	AgentInfo         Implementation `json:"agentInfo"`
}

// Implementation identifies one side of the connection.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NewSessionRequest asks the agent to open a conversation session.
type NewSessionRequest struct {
	Cwd        string         `json:"cwd,omitempty"`
	McpServers []any          `json:"mcpServers"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewSessionResponse returns the session handle.
type NewSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// PromptRequest submits a user turn.
type PromptRequest struct {
	SessionID string        `json:"sessionId"`
	Prompt    []ContentPart `json:"prompt"`
}

// PromptResponse ends a turn.
type PromptResponse struct {
	StopReason string `json:"stopReason,omitempty"`
}

// ContentPart is a piece of prompt or update content.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolResultParams returns a tool outcome to the agent.
type ToolResultParams struct {
	SessionID  string `json:"sessionId"`
	ToolCallID string `json:"toolCallId"`
	Result     any    `json:"result,omitempty"`
}

// sessionUpdate is the payload of a session/update notification.
type sessionUpdate struct {
	SessionID string          `json:"sessionId"`
	Update    json.RawMessage `json:"update"`
}

// updateBody is the tagged interior of a session update.
type updateBody struct {
	Kind       string          `json:"sessionUpdate"`
	Content    *ContentPart    `json:"content,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	Title      string          `json:"title,omitempty"`
	Status     string          `json:"status,omitempty"`
	RawInput   json.RawMessage `json:"rawInput,omitempty"`
}
