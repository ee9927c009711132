package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultExecutionTimeout bounds a tool execution when neither the tool nor
// the engine configures one.
const DefaultExecutionTimeout = 30 * time.Second

// ExecutionEngine runs registered tools with timeout enforcement and
// duplicate suppression.
type ExecutionEngine struct {
	registry       *Registry
	guard          *DedupGuard
	log            *logrus.Entry
	defaultTimeout time.Duration
}

// EngineOption configures an ExecutionEngine.
type EngineOption func(*ExecutionEngine)

// WithDefaultTimeout sets the fallback execution timeout.
func WithDefaultTimeout(timeout time.Duration) EngineOption {
	return func(e *ExecutionEngine) {
		if timeout > 0 {
			e.defaultTimeout = timeout
		}
	}
}

// WithDedupTTL sets the duplicate suppression window.
func WithDedupTTL(ttl time.Duration) EngineOption {
	return func(e *ExecutionEngine) {
		e.guard = NewDedupGuard(ttl)
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *logrus.Logger) EngineOption {
	return func(e *ExecutionEngine) {
		if logger != nil {
			e.log = logger.WithField("component", "tools")
		}
	}
}

// NewExecutionEngine creates an engine over the registry.
func NewExecutionEngine(registry *Registry, opts ...EngineOption) *ExecutionEngine {
	e := &ExecutionEngine{
		registry:       registry,
		guard:          NewDedupGuard(DefaultDedupTTL),
		log:            logrus.StandardLogger().WithField("component", "tools"),
		defaultTimeout: DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the named tool. A duplicate invocation inside the
// deduplication window is not an error: it returns a failed result whose
// message marks the suppression.
func (e *ExecutionEngine) Execute(ctx context.Context, name string, params map[string]any) (*ExecutionResult, error) {
	tool, err := e.registry.Get(name)
	if err != nil {
		return nil, err
	}

	if !e.guard.Reserve(name, params) {
		e.log.WithField("tool", name).Warn("suppressing duplicate tool invocation")
		return &ExecutionResult{
			Success:   false,
			Error:     "Operation already executed recently, duplicate invocation suppressed",
			Timestamp: time.Now(),
		}, nil
	}

	timeout := tool.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	data, err := e.runHandler(execCtx, tool, params)
	result := &ExecutionResult{
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}
	if err != nil {
		result.Error = err.Error()
		if execCtx.Err() != nil {
			result.Error = fmt.Sprintf("tool %q timed out: %v", name, err)
		}
		return result, nil
	}
	result.Success = true
	result.Data = data
	return result, nil
}

// runHandler invokes the tool and converts a panic into an error so one
// misbehaving tool cannot take down the caller.
func (e *ExecutionEngine) runHandler(ctx context.Context, tool *Tool, params map[string]any) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("tool", tool.Name).Errorf("tool panicked: %v", r)
			err = fmt.Errorf("tool %q panicked: %v", tool.Name, r)
		}
	}()
	return tool.Handler(ctx, params)
}
