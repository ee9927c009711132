// Package messages defines the chat message value types shared by the
// protocol adapters. All four protocols serialize conversations into this
// shape before framing them for the wire.
package messages

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Role represents the role of a message sender
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
	RoleDeveloper Role = "developer"
)

// Validate checks that a role is one of the allowed values
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool, RoleDeveloper:
		return nil
	default:
		return fmt.Errorf("invalid role: %s", r)
	}
}

// Message is a single entry in a conversation. Content may be empty for
// assistant messages that only carry tool calls.
type Message struct {
	ID         string         `json:"id"`
	Role       Role           `json:"role"`
	Content    string         `json:"content,omitempty"`
	Name       string         `json:"name,omitempty"`
	ToolCalls  []ToolCall     `json:"toolCalls,omitempty"`
	ToolCallID string         `json:"toolCallId,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ToolCall represents a tool invocation requested by the agent.
type ToolCall struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function carries the tool name and its JSON-encoded arguments.
type Function struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// New creates a message with a generated ID.
func New(role Role, content string) Message {
	return Message{
		ID:      uuid.New().String(),
		Role:    role,
		Content: content,
	}
}

// NewToolResult creates a tool-role message answering the given tool call.
func NewToolResult(toolCallID string, result any) (Message, error) {
	content, err := json.Marshal(result)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return Message{
		ID:         uuid.New().String(),
		Role:       RoleTool,
		Content:    string(content),
		ToolCallID: toolCallID,
	}, nil
}

// Validate checks the message for structural problems.
func (m Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message ID is required")
	}
	if err := m.Role.Validate(); err != nil {
		return err
	}
	if m.Role == RoleTool && m.ToolCallID == "" {
		return fmt.Errorf("tool messages require a toolCallId")
	}
	return nil
}
