package core

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrNotConnected       = errors.New("adapter is not connected")
	ErrAlreadyConnected   = errors.New("adapter is already connected")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrStreamClosed       = errors.New("stream closed")
	ErrFeatureUnsupported = errors.New("feature not supported by this protocol")
)

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s (value: %v): %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ProtocolError represents protocol-level errors: malformed frames,
// unexpected payloads, JSON-RPC error responses.
type ProtocolError struct {
	Protocol  string
	Operation string
	Code      int
	Err       error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s protocol error in %s (code: %d): %v", e.Protocol, e.Operation, e.Code, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// TransportError represents connection-level failures. Adapters wrap the
// underlying network error so reconnect logic and subscribers see a uniform
// shape regardless of the wire protocol.
type TransportError struct {
	Protocol string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error (endpoint: %s): %v", e.Protocol, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
