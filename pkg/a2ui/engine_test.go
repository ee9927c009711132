package a2ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, e *Engine, session, raw string) {
	t.Helper()
	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	e.Apply(session, msg)
}

func TestReplaceThenPatch(t *testing.T) {
	e := NewEngine(nil)
	apply(t, e, DefaultSession, `{"beginRendering":{"surface":"s1"}}`)
	apply(t, e, DefaultSession, `{"surfaceUpdate":{"surface":"s1","replace":{"a":1}}}`)
	apply(t, e, DefaultSession, `{"surfaceUpdate":{"surface":"s1","patch":[{"op":"replace","path":"/a","value":2}]}}`)

	surface, ok := e.Surface(DefaultSession, "s1")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": float64(2)}, surface.Content)
}

func TestNullPatchAndReplaceAreNoOps(t *testing.T) {
	e := NewEngine(nil)
	apply(t, e, DefaultSession, `{"beginRendering":{"surface":"s1"}}`)
	apply(t, e, DefaultSession, `{"surfaceUpdate":{"surface":"s1","replace":{"a":1}}}`)

	// A literal null patch or replace means absent, not empty content.
	apply(t, e, DefaultSession, `{"surfaceUpdate":{"surface":"s1","patch":null}}`)
	apply(t, e, DefaultSession, `{"surfaceUpdate":{"surface":"s1","replace":null}}`)

	surface, ok := e.Surface(DefaultSession, "s1")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": float64(1)}, surface.Content)
}

func TestUpdateUnknownSurfaceDropped(t *testing.T) {
	e := NewEngine(nil)
	apply(t, e, DefaultSession, `{"surfaceUpdate":{"surface":"ghost","replace":{"a":1}}}`)

	_, ok := e.Surface(DefaultSession, "ghost")
	assert.False(t, ok)
	assert.Empty(t, e.Surfaces(DefaultSession))
}

func TestBeginRenderingOverwrites(t *testing.T) {
	e := NewEngine(nil)
	apply(t, e, DefaultSession, `{"beginRendering":{"surface":"s1","mimeType":"text/plain"}}`)
	apply(t, e, DefaultSession, `{"surfaceUpdate":{"surface":"s1","replace":"hello"}}`)
	apply(t, e, DefaultSession, `{"beginRendering":{"surface":"s1","mimeType":"text/html"}}`)

	surface, ok := e.Surface(DefaultSession, "s1")
	require.True(t, ok)
	assert.Nil(t, surface.Content)
	assert.Equal(t, "text/html", surface.MimeType)
	assert.False(t, surface.Finished)
}

func TestFinishRendering(t *testing.T) {
	e := NewEngine(nil)
	apply(t, e, DefaultSession, `{"beginRendering":{"surface":"s1"}}`)
	apply(t, e, DefaultSession, `{"finishRendering":{"surface":"s1"}}`)
	apply(t, e, DefaultSession, `{"finishRendering":{"surface":"missing"}}`)

	surface, ok := e.Surface(DefaultSession, "s1")
	require.True(t, ok)
	assert.True(t, surface.Finished)
}

func TestDataModelImplicitCreation(t *testing.T) {
	e := NewEngine(nil)
	apply(t, e, DefaultSession, `{"dataModelUpdate":{"dataModel":"m1","patch":[{"op":"add","path":"/x/y","value":5}]}}`)

	value, ok := e.DataModel(DefaultSession, "m1")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"x": map[string]any{"y": float64(5)}}, value)
}

func TestPatchVerbatimReplacement(t *testing.T) {
	e := NewEngine(nil)
	apply(t, e, DefaultSession, `{"beginRendering":{"surface":"s1"}}`)
	apply(t, e, DefaultSession, `{"surfaceUpdate":{"surface":"s1","patch":{"whole":"thing"}}}`)

	surface, ok := e.Surface(DefaultSession, "s1")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"whole": "thing"}, surface.Content)
}

func TestSessionsAreIndependent(t *testing.T) {
	e := NewEngine(nil)
	apply(t, e, "alpha", `{"beginRendering":{"surface":"s1"}}`)
	apply(t, e, "beta", `{"beginRendering":{"surface":"s2"}}`)

	assert.Len(t, e.Surfaces("alpha"), 1)
	assert.Len(t, e.Surfaces("beta"), 1)
	_, ok := e.Surface("beta", "s1")
	assert.False(t, ok)

	e.ClearSession("alpha")
	assert.Empty(t, e.Surfaces("alpha"))
	assert.Len(t, e.Surfaces("beta"), 1)
}

func TestMalformedMessageIsNoOp(t *testing.T) {
	e := NewEngine(nil)
	e.Handle(DefaultSession, []byte(`{not json`))
	assert.Empty(t, e.Surfaces(DefaultSession))
}

func TestSurfaceCopyIsDetached(t *testing.T) {
	e := NewEngine(nil)
	apply(t, e, DefaultSession, `{"beginRendering":{"surface":"s1"}}`)
	apply(t, e, DefaultSession, `{"surfaceUpdate":{"surface":"s1","replace":{"a":1}}}`)

	surface, _ := e.Surface(DefaultSession, "s1")
	surface.Content.(map[string]any)["a"] = float64(99)

	again, _ := e.Surface(DefaultSession, "s1")
	assert.Equal(t, float64(1), again.Content.(map[string]any)["a"])
}
