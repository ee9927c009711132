package adapter

import (
	"time"

	"github.com/datalayer/agentkit/pkg/core/events"
)

// EventType tags an adapter event.
type EventType string

const (
	// EventConnected fires when the adapter reaches the connected state.
	EventConnected EventType = "connected"

	// EventDisconnected fires when the adapter leaves the connected state
	// (including transitions into connecting, reconnecting, and error).
	EventDisconnected EventType = "disconnected"

	// EventError carries a connection-level error.
	EventError EventType = "error"

	// EventStream carries a decoded protocol stream event.
	EventStream EventType = "stream"
)

// Event is delivered to subscribers. Err is set for error events, Stream for
// stream events.
type Event struct {
	Type   EventType
	Time   time.Time
	State  ConnectionState
	Err    error
	Stream events.Event
}

// Handler consumes adapter events. Handlers run synchronously in
// subscription order within the emitting call; a panicking handler is
// recovered and logged without affecting the others.
type Handler func(Event)
