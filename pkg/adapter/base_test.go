package adapter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector records events delivered to a subscriber.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handler(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) all() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *collector) count(t EventType) int {
	n := 0
	for _, ev := range c.all() {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestSetStateEmitsOnlyOnChange(t *testing.T) {
	b := NewBase("test", DefaultConfig(), nil)
	rec := &collector{}
	b.Subscribe(rec.handler)

	b.SetState(StateConnecting)
	b.SetState(StateConnecting) // repeated set, no event
	b.SetState(StateConnected)
	b.SetState(StateConnected) // repeated set, no event
	b.SetState(StateDisconnected)

	evs := rec.all()
	require.Len(t, evs, 3)
	assert.Equal(t, EventDisconnected, evs[0].Type)
	assert.Equal(t, StateConnecting, evs[0].State)
	assert.Equal(t, EventConnected, evs[1].Type)
	assert.Equal(t, EventDisconnected, evs[2].Type)
}

func TestSubscribeUnsubscribeIdempotent(t *testing.T) {
	b := NewBase("test", DefaultConfig(), nil)
	first := &collector{}
	second := &collector{}

	unsub := b.Subscribe(first.handler)
	b.Subscribe(second.handler)

	b.SetState(StateConnected)
	unsub()
	unsub() // second call is a no-op
	b.SetState(StateDisconnected)

	assert.Len(t, first.all(), 1)
	assert.Len(t, second.all(), 2)
}

func TestPanickingHandlerDoesNotBreakOthers(t *testing.T) {
	b := NewBase("test", DefaultConfig(), nil)
	rec := &collector{}

	b.Subscribe(func(Event) { panic("handler bug") })
	b.Subscribe(rec.handler)

	b.SetState(StateConnected)

	assert.Len(t, rec.all(), 1)
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	b := NewBase("test", DefaultConfig(), nil)
	var order []int
	b.Subscribe(func(Event) { order = append(order, 1) })
	b.Subscribe(func(Event) { order = append(order, 2) })
	b.Subscribe(func(Event) { order = append(order, 3) })

	b.SetState(StateConnected)

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestReconnectExhaustsAttempts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxReconnectAttempts = 2
	cfg.ReconnectDelay = 10 * time.Millisecond
	b := NewBase("test", cfg, nil)
	rec := &collector{}
	b.Subscribe(rec.handler)

	var attempts int
	b.Reconnect(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("connection refused")
	})

	assert.Equal(t, 2, attempts)
	assert.Equal(t, StateError, b.State())
	require.Equal(t, 1, rec.count(EventError))
	for _, ev := range rec.all() {
		if ev.Type == EventError {
			assert.Contains(t, ev.Err.Error(), "max reconnection attempts reached")
		}
	}
}

func TestReconnectResetsAttemptsOnSuccess(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxReconnectAttempts = 5
	cfg.ReconnectDelay = time.Millisecond
	b := NewBase("test", cfg, nil)

	calls := 0
	b.Reconnect(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		b.SetState(StateConnected)
		return nil
	})

	assert.Equal(t, 3, calls)
	assert.Equal(t, StateConnected, b.State())

	// A later failure starts the attempt budget from scratch.
	failures := 0
	b.Reconnect(context.Background(), func(context.Context) error {
		failures++
		return errors.New("connection refused")
	})
	assert.Equal(t, 5, failures)
	assert.Equal(t, StateError, b.State())
}

func TestReconnectDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoReconnect = false
	b := NewBase("test", cfg, nil)

	called := false
	b.Reconnect(context.Background(), func(context.Context) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.Equal(t, StateDisconnected, b.State())
}

func TestCancelReconnectAbortsBackoffWait(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReconnectDelay = time.Hour
	b := NewBase("test", cfg, nil)

	connected := make(chan struct{}, 1)
	b.StartReconnect(func(context.Context) error {
		connected <- struct{}{}
		return nil
	})

	// Let the loop enter its backoff wait, then cancel.
	time.Sleep(20 * time.Millisecond)
	b.CancelReconnect()

	select {
	case <-connected:
		t.Fatal("connect fired after cancel")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, StateReconnecting, b.State())
}

func TestReconnectBackoffDoubles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxReconnectAttempts = 3
	cfg.ReconnectDelay = 20 * time.Millisecond
	b := NewBase("test", cfg, nil)

	var stamps []time.Time
	b.Reconnect(context.Background(), func(context.Context) error {
		stamps = append(stamps, time.Now())
		return errors.New("connection refused")
	})

	require.Len(t, stamps, 3)
	// Waits are 20ms, 40ms, 80ms; successive gaps must grow.
	gap1 := stamps[1].Sub(stamps[0])
	gap2 := stamps[2].Sub(stamps[1])
	assert.GreaterOrEqual(t, gap1, 40*time.Millisecond)
	assert.GreaterOrEqual(t, gap2, 80*time.Millisecond)
}

func TestHeaders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthToken = "tok-1"
	cfg.Headers = map[string]string{"X-Agent": "demo"}
	b := NewBase("test", cfg, nil)

	h := b.Headers()
	assert.Equal(t, "Bearer tok-1", h.Get("Authorization"))
	assert.Equal(t, "demo", h.Get("X-Agent"))
}
