// Package mcpui mirrors MCP-UI resources per session and renders resource
// payloads and declarative element trees to HTML. Malformed messages never
// fail; they degrade to raw JSON fallbacks.
package mcpui

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/datalayer/agentkit/internal/htmlutil"
)

// DefaultSession is the session id used by callers that do not track
// sessions of their own.
const DefaultSession = "default"

// Renderer converts a resource into HTML, overriding the built-in rendering
// for its mime type.
type Renderer func(res Resource) (string, error)

// Engine is the MCP-UI reconciliation engine. It is safe for concurrent
// use.
type Engine struct {
	mu        sync.RWMutex
	log       *logrus.Entry
	sessions  map[string]map[string]Resource
	renderers map[string]Renderer
}

// NewEngine creates an empty engine. A nil logger falls back to the logrus
// standard logger.
func NewEngine(logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		log:       logger.WithField("component", "mcpui"),
		sessions:  make(map[string]map[string]Resource),
		renderers: make(map[string]Renderer),
	}
}

// Handle decodes one raw payload, applies it to the session, and returns
// its HTML rendering. Undecodable payloads render as a raw JSON dump.
func (e *Engine) Handle(sessionID string, raw []byte) string {
	msg, err := ParseMessage(raw)
	if err != nil {
		e.log.WithError(err).Warn("rendering undecodable message as raw fallback")
		return htmlutil.Pre(string(raw))
	}
	return e.Apply(sessionID, msg)
}

// Apply processes the message and returns its rendering. resourceList
// renders only the resources it carries, not the accumulated session map.
func (e *Engine) Apply(sessionID string, msg *Message) string {
	if msg == nil {
		return ""
	}

	switch {
	case msg.ResourceList != nil:
		e.upsert(sessionID, msg.ResourceList.Resources...)
		return e.renderList(msg.ResourceList.Resources)

	case msg.ResourceContent != nil:
		res := msg.ResourceContent.Content
		if res.URI == "" {
			res.URI = msg.ResourceContent.URI
		}
		e.upsert(sessionID, res)
		return e.renderResource(res)

	case msg.UIElement != nil:
		return renderElement(*msg.UIElement)

	default:
		if len(msg.raw) > 0 {
			return htmlutil.Pre(string(msg.raw))
		}
		return ""
	}
}

func (e *Engine) upsert(sessionID string, resources ...Resource) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.sessions[sessionID]
	if sess == nil {
		sess = make(map[string]Resource)
		e.sessions[sessionID] = sess
	}
	for _, res := range resources {
		if res.URI == "" {
			continue
		}
		sess[res.URI] = res
	}
}

// Resource returns the resource stored under uri in the session.
func (e *Engine) Resource(sessionID, uri string) (Resource, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sess := e.sessions[sessionID]
	if sess == nil {
		return Resource{}, false
	}
	res, ok := sess[uri]
	return res, ok
}

// Resources returns a copy of the session's resource map.
func (e *Engine) Resources(sessionID string) map[string]Resource {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]Resource)
	for uri, res := range e.sessions[sessionID] {
		out[uri] = res
	}
	return out
}

// ClearSession drops every resource of the session.
func (e *Engine) ClearSession(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, sessionID)
}

// RegisterRenderer installs a custom renderer for the mime type, replacing
// any prior one.
func (e *Engine) RegisterRenderer(mimeType string, r Renderer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r == nil {
		delete(e.renderers, mimeType)
		return
	}
	e.renderers[mimeType] = r
}

// UnregisterRenderer removes the custom renderer for the mime type.
func (e *Engine) UnregisterRenderer(mimeType string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.renderers, mimeType)
}

func (e *Engine) customRenderer(mimeType string) Renderer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.renderers[mimeType]
}

// RawJSON renders any value as a pretty JSON fallback block.
func RawJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return htmlutil.Pre("unrenderable payload")
	}
	return htmlutil.Code(string(out))
}
