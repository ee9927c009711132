package a2ui

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedOp marks patch operations the engine accepts on the wire but
// does not apply. Unsupported operations are logged and skipped; the rest of
// the patch still applies.
var ErrUnsupportedOp = errors.New("unsupported patch operation")

// Operation is one step of a surface or data model patch. The supported ops
// are "add", "replace" and "remove"; "copy" and "move" fail with
// ErrUnsupportedOp.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	From  string `json:"from,omitempty"`
}

func (op Operation) apply(doc any) (any, error) {
	switch op.Op {
	case "add", "replace":
		return setPath(doc, splitPointer(op.Path), op.Value), nil
	case "remove":
		return removePath(doc, splitPointer(op.Path)), nil
	case "copy", "move":
		return doc, fmt.Errorf("%w: %q", ErrUnsupportedOp, op.Op)
	default:
		return doc, fmt.Errorf("%w: %q", ErrUnsupportedOp, op.Op)
	}
}

// applyPatch applies ops to a deep clone of doc and returns the result. The
// input document is never mutated. Operations that fail are reported through
// onError and skipped.
func applyPatch(doc any, ops []Operation, onError func(Operation, error)) any {
	next := deepClone(doc)
	for _, op := range ops {
		applied, err := op.apply(next)
		if err != nil {
			if onError != nil {
				onError(op, err)
			}
			continue
		}
		next = applied
	}
	return next
}

// splitPointer splits a JSON pointer into decoded segments. "" and "/" both
// address the document root.
func splitPointer(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		seg = strings.ReplaceAll(seg, "~1", "/")
		seg = strings.ReplaceAll(seg, "~0", "~")
		segments[i] = seg
	}
	return segments
}

// setPath writes value at the pointed location, creating intermediate
// objects as needed. Non-object intermediates are overwritten.
func setPath(doc any, segments []string, value any) any {
	if len(segments) == 0 {
		return value
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		obj = make(map[string]any)
	}
	key := segments[0]
	if len(segments) == 1 {
		obj[key] = value
	} else {
		obj[key] = setPath(obj[key], segments[1:], value)
	}
	return obj
}

// removePath deletes the key at the terminal segment. Missing intermediates
// make the removal a no-op.
func removePath(doc any, segments []string) any {
	if len(segments) == 0 {
		return nil
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return doc
	}
	key := segments[0]
	if len(segments) == 1 {
		delete(obj, key)
		return obj
	}
	if child, ok := obj[key]; ok {
		obj[key] = removePath(child, segments[1:])
	}
	return obj
}

// deepClone copies a JSON-compatible value. Scalars are returned as is.
func deepClone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepClone(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepClone(item)
		}
		return out
	default:
		return v
	}
}
