package tools

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultDedupTTL is how long a tool invocation is remembered for
// duplicate suppression.
const DefaultDedupTTL = 2 * time.Second

// DedupGuard suppresses duplicate tool invocations. An invocation is a
// duplicate when the same tool name and the same serialized parameters were
// seen within the TTL window. Expired entries are swept opportunistically
// on each check.
type DedupGuard struct {
	mu      sync.Mutex
	ttl     time.Duration
	seen    map[string]time.Time
	nowFunc func() time.Time
}

// NewDedupGuard creates a guard with the given TTL; zero or negative
// durations use DefaultDedupTTL.
func NewDedupGuard(ttl time.Duration) *DedupGuard {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupGuard{
		ttl:     ttl,
		seen:    make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

// Reserve records the invocation and reports whether it may proceed. It
// returns false when an identical invocation is still inside the TTL
// window.
func (g *DedupGuard) Reserve(name string, params map[string]any) bool {
	key := dedupKey(name, params)
	now := g.nowFunc()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, at := range g.seen {
		if now.Sub(at) >= g.ttl {
			delete(g.seen, k)
		}
	}

	if at, ok := g.seen[key]; ok && now.Sub(at) < g.ttl {
		return false
	}
	g.seen[key] = now
	return true
}

// dedupKey serializes the invocation. Map keys marshal in sorted order, so
// equal parameter objects always produce equal keys.
func dedupKey(name string, params map[string]any) string {
	encoded, err := json.Marshal(params)
	if err != nil {
		return name
	}
	return name + ":" + string(encoded)
}
