package extension

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry is the central lookup of registered extensions. It is safe for
// concurrent use. The name map and the per-kind buckets are always mutated
// together so an extension appears in exactly one bucket, the one matching
// its own declared kind.
type Registry struct {
	mu     sync.RWMutex
	log    *logrus.Entry
	byName map[string]Extension
	byKind map[Type]map[string]Extension
}

// NewRegistry creates an empty extension registry. A nil logger falls back
// to the package default.
func NewRegistry(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		log:    logger.WithField("component", "extensions"),
		byName: make(map[string]Extension),
		byKind: make(map[Type]map[string]Extension),
	}
}

// Register inserts ext, replacing any extension already registered under the
// same name. A replacement is logged as a warning; the prior extension is
// removed from its kind bucket even when the kinds differ.
func (r *Registry) Register(ext Extension) {
	if ext == nil {
		return
	}
	name := ext.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, exists := r.byName[name]; exists {
		r.log.WithFields(logrus.Fields{
			"name": name,
			"kind": prior.Kind(),
		}).Warn("replacing already registered extension")
		r.removeFromKindLocked(prior)
	}

	r.byName[name] = ext
	bucket := r.byKind[ext.Kind()]
	if bucket == nil {
		bucket = make(map[string]Extension)
		r.byKind[ext.Kind()] = bucket
	}
	bucket[name] = ext
}

// Unregister removes the named extension from the name map and its kind
// bucket. Unknown names are a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext, exists := r.byName[name]
	if !exists {
		return
	}
	delete(r.byName, name)
	r.removeFromKindLocked(ext)
}

func (r *Registry) removeFromKindLocked(ext Extension) {
	bucket := r.byKind[ext.Kind()]
	if bucket == nil {
		return
	}
	delete(bucket, ext.Name())
	if len(bucket) == 0 {
		delete(r.byKind, ext.Kind())
	}
}

// Get returns the extension registered under name, or nil.
func (r *Registry) Get(name string) Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Has reports whether an extension is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// GetByKind returns every extension of the given kind, in unspecified order.
func (r *Registry) GetByKind(kind Type) []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.byKind[kind]
	out := make([]Extension, 0, len(bucket))
	for _, ext := range bucket {
		out = append(out, ext)
	}
	return out
}

// All returns every registered extension, in unspecified order.
func (r *Registry) All() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Extension, 0, len(r.byName))
	for _, ext := range r.byName {
		out = append(out, ext)
	}
	return out
}

// ActivityRenderer returns a renderer declaring the given activity type, or
// nil. When several renderers declare overlapping types the choice among
// them is unspecified.
func (r *Registry) ActivityRenderer(activityType string) ActivityRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ext := range r.byKind[TypeActivityRenderer] {
		renderer, ok := ext.(ActivityRenderer)
		if !ok {
			continue
		}
		for _, t := range renderer.ActivityTypes() {
			if t == activityType {
				return renderer
			}
		}
	}
	return nil
}

// ToolUI returns a tool UI whose tool names include name or the wildcard,
// or nil.
func (r *Registry) ToolUI(name string) ToolUI {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ext := range r.byKind[TypeToolUI] {
		ui, ok := ext.(ToolUI)
		if !ok {
			continue
		}
		for _, t := range ui.ToolNames() {
			if t == Wildcard || t == name {
				return ui
			}
		}
	}
	return nil
}

// ProtocolEventHandlers returns every handler declaring the given event type
// or the wildcard.
func (r *Registry) ProtocolEventHandlers(eventType string) []ProtocolEventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ProtocolEventHandler
	for _, ext := range r.byKind[TypeProtocolEvent] {
		handler, ok := ext.(ProtocolEventHandler)
		if !ok {
			continue
		}
		for _, t := range handler.EventTypes() {
			if t == Wildcard || t == eventType {
				out = append(out, handler)
				break
			}
		}
	}
	return out
}

// Panels returns every registered panel.
func (r *Registry) Panels() []Panel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Panel
	for _, ext := range r.byKind[TypePanel] {
		if panel, ok := ext.(Panel); ok {
			out = append(out, panel)
		}
	}
	return out
}

// MessageRenderers returns every registered message renderer.
func (r *Registry) MessageRenderers() []MessageRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []MessageRenderer
	for _, ext := range r.byKind[TypeMessageRenderer] {
		if renderer, ok := ext.(MessageRenderer); ok {
			out = append(out, renderer)
		}
	}
	return out
}

// Clear removes every registered extension.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName = make(map[string]Extension)
	r.byKind = make(map[Type]map[string]Extension)
}
