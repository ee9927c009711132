package adapter

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/datalayer/agentkit/pkg/core"
	"github.com/datalayer/agentkit/pkg/core/events"
)

// Base implements the connection lifecycle shared by the concrete adapters:
// state transitions with change-only event emission, ordered subscriber
// fan-out, and the bounded reconnect loop. Concrete adapters embed it and
// provide Connect/Disconnect/SendMessage/SendToolResult.
type Base struct {
	protocol string
	cfg      Config
	log      *logrus.Entry

	mu        sync.Mutex
	state     ConnectionState
	attempts  int
	subs      []subscription
	nextSubID int

	reconnectCancel context.CancelFunc
}

type subscription struct {
	id      int
	handler Handler
}

// NewBase creates the shared lifecycle state for an adapter speaking the
// named protocol. A nil logger falls back to the logrus standard logger.
func NewBase(protocol string, cfg Config, logger *logrus.Logger) *Base {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Base{
		protocol: protocol,
		cfg:      cfg.withDefaults(),
		log:      logger.WithField("protocol", protocol),
		state:    StateDisconnected,
	}
}

// Config returns the adapter configuration.
func (b *Base) Config() Config {
	return b.cfg
}

// Protocol returns the wire protocol name this adapter speaks.
func (b *Base) Protocol() string {
	return b.protocol
}

// Log returns the adapter's log entry.
func (b *Base) Log() *logrus.Entry {
	return b.log
}

// State returns the current connection state.
func (b *Base) State() ConnectionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetState transitions the connection state. An event is emitted only when
// the new state differs from the current one: a connected event for
// StateConnected, a disconnected event for everything else.
func (b *Base) SetState(state ConnectionState) {
	b.mu.Lock()
	if b.state == state {
		b.mu.Unlock()
		return
	}
	b.state = state
	subs := b.snapshotSubsLocked()
	b.mu.Unlock()

	eventType := EventDisconnected
	if state == StateConnected {
		eventType = EventConnected
	}
	b.deliver(subs, Event{Type: eventType, Time: time.Now(), State: state})
}

// SetStateError transitions to the error state and emits an error event
// carrying err after the state-change event.
func (b *Base) SetStateError(err error) {
	b.SetState(StateError)

	b.mu.Lock()
	subs := b.snapshotSubsLocked()
	b.mu.Unlock()
	b.deliver(subs, Event{Type: EventError, Time: time.Now(), State: StateError, Err: err})
}

// Subscribe registers an event handler. Handlers are invoked synchronously
// in subscription order. The returned unsubscribe function is idempotent.
func (b *Base) Subscribe(handler Handler) func() {
	b.mu.Lock()
	b.nextSubID++
	id := b.nextSubID
	b.subs = append(b.subs, subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, sub := range b.subs {
				if sub.id == id {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// EmitStream delivers a decoded protocol event to subscribers.
func (b *Base) EmitStream(ev events.Event) {
	b.mu.Lock()
	state := b.state
	subs := b.snapshotSubsLocked()
	b.mu.Unlock()
	b.deliver(subs, Event{Type: EventStream, Time: time.Now(), State: state, Stream: ev})
}

// EmitError delivers an error event without changing the connection state.
func (b *Base) EmitError(err error) {
	b.mu.Lock()
	state := b.state
	subs := b.snapshotSubsLocked()
	b.mu.Unlock()
	b.deliver(subs, Event{Type: EventError, Time: time.Now(), State: state, Err: err})
}

func (b *Base) snapshotSubsLocked() []subscription {
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	return subs
}

// deliver invokes handlers in order, recovering and logging any panic so one
// failing handler cannot break the others or the emitter.
func (b *Base) deliver(subs []subscription, ev Event) {
	for _, sub := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.WithField("event", ev.Type).Errorf("event handler panicked: %v", r)
				}
			}()
			sub.handler(ev)
		}()
	}
}

// ResetAttempts clears the reconnect attempt counter; called after a
// successful connect.
func (b *Base) ResetAttempts() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
}

// Reconnect runs the bounded reconnect loop: back off exponentially, retry
// connect, and settle in the error state once the attempt budget is spent.
// It returns once connected, exhausted, or ctx is canceled. Does nothing
// when AutoReconnect is disabled.
func (b *Base) Reconnect(ctx context.Context, connect func(context.Context) error) {
	if !b.cfg.AutoReconnect {
		return
	}

	for {
		b.mu.Lock()
		if b.attempts >= b.cfg.MaxReconnectAttempts {
			b.mu.Unlock()
			b.SetStateError(&core.TransportError{
				Protocol: b.protocol,
				Err:      fmt.Errorf("max reconnection attempts reached (%d)", b.cfg.MaxReconnectAttempts),
			})
			return
		}
		b.attempts++
		attempt := b.attempts
		b.mu.Unlock()

		b.SetState(StateReconnecting)
		delay := b.cfg.ReconnectDelay << (attempt - 1)
		b.log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).Info("reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		if err := connect(ctx); err != nil {
			b.log.WithError(err).WithField("attempt", attempt).Warn("reconnect attempt failed")
			continue
		}
		b.ResetAttempts()
		return
	}
}

// StartReconnect launches the reconnect loop in the background. A pending
// loop is not duplicated. CancelReconnect (or Disconnect on the concrete
// adapter) aborts a waiting backoff timer so no stale connect fires after a
// manual disconnect.
func (b *Base) StartReconnect(connect func(context.Context) error) {
	b.mu.Lock()
	if b.reconnectCancel != nil {
		b.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.reconnectCancel = cancel
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			b.reconnectCancel = nil
			b.mu.Unlock()
		}()
		b.Reconnect(ctx, connect)
	}()
}

// CancelReconnect aborts a pending background reconnect, if any.
func (b *Base) CancelReconnect() {
	b.mu.Lock()
	cancel := b.reconnectCancel
	b.reconnectCancel = nil
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Headers builds the request headers from the configuration: bearer auth
// when a token is set, plus any extra configured headers.
func (b *Base) Headers() http.Header {
	h := make(http.Header)
	if b.cfg.AuthToken != "" {
		h.Set("Authorization", "Bearer "+b.cfg.AuthToken)
	}
	for k, v := range b.cfg.Headers {
		h.Set(k, v)
	}
	return h
}

// AgentCard is the default capability discovery: no card.
func (b *Base) AgentCard(ctx context.Context) (*core.AgentCard, error) {
	return nil, nil
}

// SupportsFeature is the default capability query: unsupported.
func (b *Base) SupportsFeature(name string) bool {
	return false
}
