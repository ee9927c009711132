package mcpui

import (
	"encoding/json"
	"fmt"
)

// Resource is a URI-identified content item pushed by an MCP-compatible
// server. Exactly one of Content, Text or Blob is expected to carry the
// payload; a new resourceContent message for the same URI replaces the
// entry wholesale.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Content     any    `json:"content,omitempty"`
	Text        string `json:"text,omitempty"`
	Blob        string `json:"blob,omitempty"`
}

// UIElement is a node of a declarative layout tree. Type maps through a
// fixed table to an HTML tag; unknown types render as div.
type UIElement struct {
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Children []UIElement    `json:"children,omitempty"`
}

// ResourceList upserts every listed resource into the session.
type ResourceList struct {
	Resources []Resource `json:"resources"`
}

// ResourceContent upserts a single resource.
type ResourceContent struct {
	URI     string   `json:"uri"`
	Content Resource `json:"content"`
}

// Message is one inbound MCP-UI payload, parsed into its tagged variants.
// A payload matching none of them keeps its raw form for fallback
// rendering.
type Message struct {
	ResourceList    *ResourceList    `json:"resourceList,omitempty"`
	ResourceContent *ResourceContent `json:"resourceContent,omitempty"`
	UIElement       *UIElement       `json:"uiElement,omitempty"`

	raw json.RawMessage
}

// ParseMessage decodes an inbound payload into its tagged variants.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode mcpui message: %w", err)
	}
	msg.raw = append(json.RawMessage(nil), data...)
	return &msg, nil
}
