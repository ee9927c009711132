// Package core provides shared types and the error taxonomy used across the
// agentkit protocol adapters: configuration, protocol, and transport errors,
// plus the agent card returned by capability discovery.
package core
