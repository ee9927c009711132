package mcpui

import (
	"encoding/json"

	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/extension"
)

// ExtensionName is the registry key and the custom event name MCP-UI
// payloads travel under.
const ExtensionName = "mcpui"

// Extension feeds custom "mcpui" events from an adapter stream into an
// engine for one session.
type Extension struct {
	engine  *Engine
	session string
}

// NewExtension wraps the engine as a protocol event handler bound to
// DefaultSession.
func NewExtension(engine *Engine) *Extension {
	return NewSessionExtension(engine, DefaultSession)
}

// NewSessionExtension wraps the engine for an explicit session id.
func NewSessionExtension(engine *Engine, sessionID string) *Extension {
	return &Extension{engine: engine, session: sessionID}
}

// Engine returns the stateful handle behind the extension.
func (x *Extension) Engine() *Engine { return x.engine }

func (x *Extension) Name() string         { return ExtensionName }
func (x *Extension) Kind() extension.Type { return extension.TypeProtocolEvent }

// EventTypes declares interest in custom events only.
func (x *Extension) EventTypes() []string {
	return []string{string(events.EventTypeCustom)}
}

// HandleEvent applies custom "mcpui" events to the bound session. Other
// events are ignored.
func (x *Extension) HandleEvent(ev events.Event) {
	custom, ok := ev.(*events.CustomEvent)
	if !ok || custom.Name != ExtensionName {
		return
	}
	payload, err := json.Marshal(custom.Value)
	if err != nil {
		return
	}
	x.engine.Handle(x.session, payload)
}
