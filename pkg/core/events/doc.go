// Package events defines the unified stream-event vocabulary used across the
// protocol adapters, following the AG-UI event set: lifecycle events (run,
// step), streamed text messages and tool calls, state snapshots and RFC 6902
// deltas, plus raw and custom passthrough events.
//
// Events are tagged unions over an embedded BaseEvent; EventFromJSON decodes
// an incoming JSON payload into the concrete type. StreamState folds a
// sequence of events into a client-side mirror of the conversation and agent
// state.
package events
