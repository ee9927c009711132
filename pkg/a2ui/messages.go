package a2ui

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message is one inbound A2UI payload. Every field is optional; fields
// present in the same message are processed independently, in declaration
// order.
type Message struct {
	BeginRendering  *BeginRendering  `json:"beginRendering,omitempty"`
	SurfaceUpdate   *SurfaceUpdate   `json:"surfaceUpdate,omitempty"`
	DataModelUpdate *DataModelUpdate `json:"dataModelUpdate,omitempty"`
	FinishRendering *FinishRendering `json:"finishRendering,omitempty"`
}

// BeginRendering creates a surface. Re-issuing it for an existing surface id
// overwrites the entry and loses its prior content.
type BeginRendering struct {
	Surface           string          `json:"surface"`
	MimeType          string          `json:"mimeType,omitempty"`
	SurfaceDefinition json.RawMessage `json:"surfaceDefinition,omitempty"`
}

// SurfaceUpdate mutates an existing surface. Replace, when present, sets the
// content wholesale; otherwise Patch is applied. Updates to surfaces never
// created are dropped.
type SurfaceUpdate struct {
	Surface string          `json:"surface"`
	Patch   json.RawMessage `json:"patch,omitempty"`
	Replace json.RawMessage `json:"replace,omitempty"`
}

// DataModelUpdate mutates a named data model with the same replace-or-patch
// contract as SurfaceUpdate, except a missing entry is implicitly created.
type DataModelUpdate struct {
	DataModel string          `json:"dataModel"`
	Patch     json.RawMessage `json:"patch,omitempty"`
	Replace   json.RawMessage `json:"replace,omitempty"`
}

// FinishRendering marks a surface finished. Unknown surfaces are a no-op.
type FinishRendering struct {
	Surface string `json:"surface"`
}

// ParseMessage decodes an inbound payload into its tagged variants.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode a2ui message: %w", err)
	}
	return &msg, nil
}

// isNull reports whether raw is the JSON null literal. A null patch or
// replace field means absent, not empty content.
func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// decodePatch interprets the patch field. A JSON array decodes into
// operations; any other value is returned verbatim as replacement content.
func decodePatch(raw json.RawMessage) ([]Operation, any, bool) {
	if len(raw) == 0 || isNull(raw) {
		return nil, nil, false
	}
	var ops []Operation
	if err := json.Unmarshal(raw, &ops); err == nil {
		return ops, nil, true
	}
	var verbatim any
	if err := json.Unmarshal(raw, &verbatim); err != nil {
		return nil, nil, false
	}
	return nil, verbatim, true
}
