// Package a2ui maintains client-side mirrors of server-pushed A2UI surfaces
// and data models, scoped per session, and renders surfaces to HTML through
// mime-type dispatch with custom renderer overrides.
package a2ui

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultSession is the session id used by callers that do not track
// sessions of their own.
const DefaultSession = "default"

// Surface is a named renderable region. The server creates it, patches its
// content, and finally marks it finished.
type Surface struct {
	MimeType string
	Content  any
	Finished bool
}

// Renderer converts surface content into HTML. Registered per mime type, it
// overrides the built-in rendering for that type.
type Renderer func(content any) (string, error)

type session struct {
	surfaces   map[string]*Surface
	dataModels map[string]any
}

func newSession() *session {
	return &session{
		surfaces:   make(map[string]*Surface),
		dataModels: make(map[string]any),
	}
}

// Engine is the reconciliation engine. It is safe for concurrent use.
// Malformed messages never fail; they degrade to logged no-ops.
type Engine struct {
	mu        sync.RWMutex
	log       *logrus.Entry
	sessions  map[string]*session
	renderers map[string]Renderer
}

// NewEngine creates an empty engine. A nil logger falls back to the logrus
// standard logger.
func NewEngine(logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		log:       logger.WithField("component", "a2ui"),
		sessions:  make(map[string]*session),
		renderers: make(map[string]Renderer),
	}
}

// Handle decodes and applies one raw inbound payload for the session.
func (e *Engine) Handle(sessionID string, raw []byte) {
	msg, err := ParseMessage(raw)
	if err != nil {
		e.log.WithError(err).Warn("dropping malformed message")
		return
	}
	e.Apply(sessionID, msg)
}

// Apply processes every variant present in the message, independently and
// in order: beginRendering, surfaceUpdate, dataModelUpdate, finishRendering.
func (e *Engine) Apply(sessionID string, msg *Message) {
	if msg == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.sessions[sessionID]
	if sess == nil {
		sess = newSession()
		e.sessions[sessionID] = sess
	}

	if begin := msg.BeginRendering; begin != nil && begin.Surface != "" {
		sess.surfaces[begin.Surface] = &Surface{MimeType: begin.MimeType}
	}
	if update := msg.SurfaceUpdate; update != nil {
		e.applySurfaceUpdate(sess, update)
	}
	if update := msg.DataModelUpdate; update != nil {
		e.applyDataModelUpdate(sess, update)
	}
	if finish := msg.FinishRendering; finish != nil {
		if surface, ok := sess.surfaces[finish.Surface]; ok {
			surface.Finished = true
		}
	}
}

func (e *Engine) applySurfaceUpdate(sess *session, update *SurfaceUpdate) {
	surface, ok := sess.surfaces[update.Surface]
	if !ok {
		e.log.WithField("surface", update.Surface).Debug("dropping update for unknown surface")
		return
	}
	surface.Content = e.reconcile(surface.Content, update.Replace, update.Patch)
}

func (e *Engine) applyDataModelUpdate(sess *session, update *DataModelUpdate) {
	if update.DataModel == "" {
		return
	}
	current := sess.dataModels[update.DataModel]
	sess.dataModels[update.DataModel] = e.reconcile(current, update.Replace, update.Patch)
}

// reconcile computes new content from the replace-or-patch pair. Replace
// wins when present; a patch that is not an operation array replaces
// verbatim; neither present keeps the current content.
func (e *Engine) reconcile(current any, replace, patch json.RawMessage) any {
	if len(replace) > 0 && !isNull(replace) {
		var value any
		if err := json.Unmarshal(replace, &value); err != nil {
			e.log.WithError(err).Warn("dropping malformed replace value")
			return current
		}
		return value
	}
	ops, verbatim, ok := decodePatch(patch)
	if !ok {
		return current
	}
	if ops == nil {
		return verbatim
	}
	return applyPatch(current, ops, func(op Operation, err error) {
		e.log.WithFields(logrus.Fields{"op": op.Op, "path": op.Path}).WithError(err).Warn("skipping patch operation")
	})
}

// Surface returns a copy of the named surface in the session.
func (e *Engine) Surface(sessionID, name string) (Surface, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sess := e.sessions[sessionID]
	if sess == nil {
		return Surface{}, false
	}
	surface, ok := sess.surfaces[name]
	if !ok {
		return Surface{}, false
	}
	return Surface{
		MimeType: surface.MimeType,
		Content:  deepClone(surface.Content),
		Finished: surface.Finished,
	}, true
}

// Surfaces returns copies of every surface in the session.
func (e *Engine) Surfaces(sessionID string) map[string]Surface {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]Surface)
	sess := e.sessions[sessionID]
	if sess == nil {
		return out
	}
	for name, surface := range sess.surfaces {
		out[name] = Surface{
			MimeType: surface.MimeType,
			Content:  deepClone(surface.Content),
			Finished: surface.Finished,
		}
	}
	return out
}

// DataModel returns a copy of the named data model in the session.
func (e *Engine) DataModel(sessionID, name string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sess := e.sessions[sessionID]
	if sess == nil {
		return nil, false
	}
	value, ok := sess.dataModels[name]
	if !ok {
		return nil, false
	}
	return deepClone(value), true
}

// ClearSession drops every surface and data model of the session.
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
