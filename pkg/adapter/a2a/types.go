package a2a

import "encoding/json"

// Standard A2A endpoints and RPC methods.
const (
	agentCardPath = "/.well-known/agent.json"

	methodMessageSend = "message/send"
	methodTasksGet    = "tasks/get"
	methodTasksCancel = "tasks/cancel"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// agentCard is the wire form of /.well-known/agent.json.
type agentCard struct {
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	URL             string        `json:"url"`
	Version         string        `json:"version,omitempty"`
	ProtocolVersion string        `json:"protocolVersion,omitempty"`
	Capabilities    *capabilities `json:"capabilities,omitempty"`
	Skills          []skill       `json:"skills,omitempty"`
}

type capabilities struct {
	Streaming              bool `json:"streaming,omitempty"`
	PushNotifications      bool `json:"pushNotifications,omitempty"`
	StateTransitionHistory bool `json:"stateTransitionHistory,omitempty"`
}

type skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// wireMessage is an A2A message: a role plus a list of typed parts.
type wireMessage struct {
	Role      string     `json:"role"`
	Parts     []wirePart `json:"parts"`
	MessageID string     `json:"messageId,omitempty"`
	TaskID    string     `json:"taskId,omitempty"`
	ContextID string     `json:"contextId,omitempty"`
	Kind      string     `json:"kind,omitempty"`
}

type wirePart struct {
	Kind string          `json:"kind"`
	Text string          `json:"text,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type sendParams struct {
	Message wireMessage `json:"message"`
}

// task is a message/send result when the agent models the exchange as a
// long-running task.
type task struct {
	ID        string        `json:"id"`
	ContextID string        `json:"contextId,omitempty"`
	Status    taskStatus    `json:"status"`
	Artifacts []artifact    `json:"artifacts,omitempty"`
	History   []wireMessage `json:"history,omitempty"`
	Kind      string        `json:"kind,omitempty"`
}

type taskStatus struct {
	State   string       `json:"state"`
	Message *wireMessage `json:"message,omitempty"`
}

type artifact struct {
	ArtifactID string     `json:"artifactId,omitempty"`
	Name       string     `json:"name,omitempty"`
	Parts      []wirePart `json:"parts"`
}

// Terminal task states.
const (
	taskStateCompleted = "completed"
	taskStateFailed    = "failed"
	taskStateCanceled  = "canceled"
	taskStateRejected  = "rejected"
)
