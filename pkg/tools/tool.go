// Package tools manages client-side tool definitions and their execution on
// behalf of an agent: a registry of named tools, an execution engine with
// timeouts, and a deduplication guard that suppresses accidental duplicate
// invocations from the agent framework.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Handler runs a tool. Params is the decoded argument object; the returned
// value becomes the result payload.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Tool is a client-side tool the agent can invoke.
type Tool struct {
	// Name uniquely identifies the tool.
	Name string `json:"name"`

	// Description tells the agent what the tool does.
	Description string `json:"description,omitempty"`

	// Parameters is the JSON schema of the argument object.
	Parameters json.RawMessage `json:"parameters,omitempty"`

	// Timeout bounds one execution; zero uses the engine default.
	Timeout time.Duration `json:"-"`

	// Handler runs the tool.
	Handler Handler `json:"-"`
}

// Validate checks that the tool can be registered.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", t.Name)
	}
	return nil
}

// ExecutionResult is the outcome of one tool execution.
type ExecutionResult struct {
	// Success indicates the execution completed without error.
	Success bool `json:"success"`

	// Data contains the tool's output.
	Data any `json:"data,omitempty"`

	// Error contains the failure message when Success is false.
	Error string `json:"error,omitempty"`

	// Duration is how long the execution took.
	Duration time.Duration `json:"duration,omitempty"`

	// Timestamp is when the execution completed.
	Timestamp time.Time `json:"timestamp"`
}
