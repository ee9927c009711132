package extension

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalayer/agentkit/pkg/core/events"
	"github.com/datalayer/agentkit/pkg/messages"
)

type stubExtension struct {
	name string
	kind Type
}

func (s stubExtension) Name() string { return s.name }
func (s stubExtension) Kind() Type   { return s.kind }

type stubActivityRenderer struct {
	stubExtension
	types []string
}

func (s stubActivityRenderer) ActivityTypes() []string { return s.types }
func (s stubActivityRenderer) RenderActivity(activityType string, payload any) (string, error) {
	return "<activity>" + activityType + "</activity>", nil
}

type stubToolUI struct {
	stubExtension
	tools []string
}

func (s stubToolUI) ToolNames() []string { return s.tools }
func (s stubToolUI) RenderTool(call messages.ToolCall, result any) (string, error) {
	return "<tool>" + call.Function.Name + "</tool>", nil
}

type stubEventHandler struct {
	stubExtension
	types []string
	seen  []events.Event
}

func (s *stubEventHandler) EventTypes() []string { return s.types }
func (s *stubEventHandler) HandleEvent(ev events.Event) { s.seen = append(s.seen, ev) }

type stubPrioritized struct {
	stubExtension
	priority int
}

func (s stubPrioritized) Priority() int { return s.priority }

func newActivityRenderer(name string, types ...string) stubActivityRenderer {
	return stubActivityRenderer{stubExtension{name, TypeActivityRenderer}, types}
}

func newToolUI(name string, tools ...string) stubToolUI {
	return stubToolUI{stubExtension{name, TypeToolUI}, tools}
}

func TestRegisterUnregisterLeavesRegistryUnchanged(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(newActivityRenderer("existing", "code"))

	before := len(r.All())
	bucketBefore := len(r.GetByKind(TypeActivityRenderer))

	r.Register(newActivityRenderer("transient", "search"))
	r.Unregister("transient")

	assert.Len(t, r.All(), before)
	assert.Len(t, r.GetByKind(TypeActivityRenderer), bucketBefore)
	assert.False(t, r.Has("transient"))
	assert.Nil(t, r.Get("transient"))
}

func TestRegisterLastWriteWins(t *testing.T) {
	r := NewRegistry(nil)
	first := newActivityRenderer("dup", "code")
	second := newToolUI("dup", "calculator")

	r.Register(first)
	r.Register(second)

	got := r.Get("dup")
	require.NotNil(t, got)
	assert.Equal(t, TypeToolUI, got.Kind())

	// The replaced extension left its old kind bucket.
	assert.Empty(t, r.GetByKind(TypeActivityRenderer))
	assert.Len(t, r.GetByKind(TypeToolUI), 1)
	assert.Len(t, r.All(), 1)
}

func TestActivityRendererDispatch(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(newActivityRenderer("code-viewer", "code", "diff"))

	require.NotNil(t, r.ActivityRenderer("diff"))
	assert.Nil(t, r.ActivityRenderer("unknown"))
}

func TestToolUIWildcard(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(newToolUI("calc-ui", "calculator"))
	r.Register(newToolUI("fallback-ui", Wildcard))

	specific := r.ToolUI("calculator")
	require.NotNil(t, specific)

	anyTool := r.ToolUI("never-registered")
	require.NotNil(t, anyTool)
	assert.Equal(t, "fallback-ui", anyTool.Name())
}

func TestProtocolEventHandlers(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubEventHandler{stubExtension{"text-only", TypeProtocolEvent}, []string{"TEXT_MESSAGE_CONTENT"}, nil})
	r.Register(&stubEventHandler{stubExtension{"catch-all", TypeProtocolEvent}, []string{Wildcard}, nil})

	assert.Len(t, r.ProtocolEventHandlers("TEXT_MESSAGE_CONTENT"), 2)
	assert.Len(t, r.ProtocolEventHandlers("RUN_STARTED"), 1)
}

func TestPriorityIsDeclarativeOnly(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(stubPrioritized{stubExtension{"low", TypeMessageRenderer}, 1})
	r.Register(stubPrioritized{stubExtension{"high", TypeMessageRenderer}, 10})
	r.Register(stubExtension{"plain", TypeMessageRenderer})

	// The registry returns extensions unordered; callers that care sort by
	// the declared priority themselves.
	exts := r.GetByKind(TypeMessageRenderer)
	require.Len(t, exts, 3)
	sort.Slice(exts, func(i, j int) bool {
		return PriorityOf(exts[i]) > PriorityOf(exts[j])
	})

	names := make([]string, len(exts))
	for i, ext := range exts {
		names[i] = ext.Name()
	}
	assert.Equal(t, []string{"high", "low", "plain"}, names)
	assert.Equal(t, 0, PriorityOf(stubExtension{"plain", TypeMessageRenderer}))
}

func TestClear(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(newToolUI("a", "x"))
	r.Register(newActivityRenderer("b", "y"))

	r.Clear()

	assert.Empty(t, r.All())
	assert.Empty(t, r.GetByKind(TypeToolUI))
	assert.False(t, r.Has("a"))
}
