// Package extension provides the typed registry chat front ends use to plug
// in protocol-specific rendering and behavior: message renderers, activity
// renderers keyed by activity type, tool UIs keyed by tool name, panels, and
// protocol event handlers.
package extension

import (
	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/messages"
)

// Type is the kind of an extension. Each extension belongs to exactly one
// kind and is indexed under it.
type Type string

const (
	TypeMessageRenderer  Type = "message-renderer"
	TypeActivityRenderer Type = "activity-renderer"
	TypeToolUI           Type = "tool-ui"
	TypeProtocolEvent    Type = "protocol-event"
	TypePanel            Type = "panel"
)

// Wildcard matches any tool name or event type when listed in an
// extension's dispatch keys.
const Wildcard = "*"

// Extension is the common surface of every pluggable unit. Name is the
// registry key; Kind determines which type bucket the extension lands in.
type Extension interface {
	Name() string
	Kind() Type
}

// Prioritized is implemented by extensions that declare a precedence among
// extensions of the same kind, typically renderers competing for the same
// content. The registry stores extensions unordered and never consults the
// priority; ordering is the caller's responsibility.
type Prioritized interface {
	Priority() int
}

// PriorityOf returns the extension's declared priority, or zero when it does
// not declare one.
func PriorityOf(ext Extension) int {
	if p, ok := ext.(Prioritized); ok {
		return p.Priority()
	}
	return 0
}

// MessageRenderer renders a chat message to HTML.
type MessageRenderer interface {
	Extension
	RenderMessage(msg messages.Message) (string, error)
}

// ActivityRenderer renders agent activity payloads. ActivityTypes lists the
// activity kinds the renderer handles.
type ActivityRenderer interface {
	Extension
	ActivityTypes() []string
	RenderActivity(activityType string, payload any) (string, error)
}

// ToolUI renders a tool invocation and its result. ToolNames lists the tools
// the UI handles; a single Wildcard entry matches every tool.
type ToolUI interface {
	Extension
	ToolNames() []string
	RenderTool(call messages.ToolCall, result any) (string, error)
}

// ProtocolEventHandler observes stream events of the types it declares; a
// Wildcard entry receives every event.
type ProtocolEventHandler interface {
	Extension
	EventTypes() []string
	HandleEvent(ev events.Event)
}

// Panel is a standalone UI region rendered outside the message flow.
type Panel interface {
	Extension
	Title() string
	RenderPanel() (string, error)
}
