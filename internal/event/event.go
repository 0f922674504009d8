package event

import (
	"sync"
	"time"
)

// Type identifies an event in the closed vocabulary emitted by the layer.
type Type string

// Connection-level events, republished unchanged by the manager.
const (
	Connect            Type = "connect"
	Disconnect         Type = "disconnect"
	Message            Type = "message"
	Error              Type = "error"
	Reconnecting       Type = "reconnecting"
	Ping               Type = "ping"
	Pong               Type = "pong"
	ConnectionUnstable Type = "connection-unstable"
)

// Manager-level events.
const (
	ManagerInitialized        Type = "manager:initialized"
	ManagerConnected          Type = "manager:connected"
	ManagerConnectionFailed   Type = "manager:connection-failed"
	ManagerDisconnected       Type = "manager:disconnected"
	ManagerSendFailed         Type = "manager:send-failed"
	ManagerMessageSent        Type = "manager:message-sent"
	ManagerHealthCheck        Type = "manager:health-check"
	ManagerStatistics         Type = "manager:statistics"
	ManagerReconnectScheduled Type = "manager:reconnect-scheduled"
	ManagerMaxRetriesReached  Type = "manager:max-retries-reached"
	ManagerDestroyed          Type = "manager:destroyed"
)

// Event is a single occurrence delivered to subscribers.
type Event struct {
	Type    Type
	Payload any
}

// DisconnectInfo is the payload for Disconnect events.
type DisconnectInfo struct {
	Code     int
	Reason   string
	WasClean bool
}

// ReconnectingInfo is the payload for Reconnecting events.
type ReconnectingInfo struct {
	Attempt int
	Max     int
}

// ReconnectScheduledInfo is the payload for ManagerReconnectScheduled events.
type ReconnectScheduledInfo struct {
	Attempt int
	Delay   time.Duration
}

// SendFailedInfo is the payload for ManagerSendFailed events.
type SendFailedInfo struct {
	Reason  string
	Message any
}

// Handler receives events. Handlers must not block; they run inline on the
// emitting goroutine.
type Handler func(Event)

// Subscription is the handle returned by Subscribe and SubscribeAll.
type Subscription struct {
	emitter *Emitter
	id      int
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.emitter == nil {
		return
	}
	s.emitter.remove(s.id)
	s.emitter = nil
}

type registration struct {
	id      int
	typ     Type
	all     bool
	handler Handler
}

// Emitter dispatches events to registered handlers.
type Emitter struct {
	mu     sync.Mutex
	nextID int
	regs   []registration
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe registers a handler for one event type and returns its
// unsubscribe handle.
func (e *Emitter) Subscribe(t Type, h Handler) *Subscription {
	return e.add(registration{typ: t, handler: h})
}

// SubscribeAll registers a handler for every event type. Used by the manager
// to republish connection events under its stable facade.
func (e *Emitter) SubscribeAll(h Handler) *Subscription {
	return e.add(registration{all: true, handler: h})
}

// Emit delivers an event to all matching handlers in registration order.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	matched := make([]Handler, 0, len(e.regs))
	for _, r := range e.regs {
		if r.all || r.typ == ev.Type {
			matched = append(matched, r.handler)
		}
	}
	e.mu.Unlock()

	for _, h := range matched {
		h(ev)
	}
}

// Clear drops every registered handler.
func (e *Emitter) Clear() {
	e.mu.Lock()
	e.regs = nil
	e.mu.Unlock()
}

func (e *Emitter) add(r registration) *Subscription {
	e.mu.Lock()
	e.nextID++
	r.id = e.nextID
	e.regs = append(e.regs, r)
	e.mu.Unlock()
	return &Subscription{emitter: e, id: r.id}
}

func (e *Emitter) remove(id int) {
	e.mu.Lock()
	for i, r := range e.regs {
		if r.id == id {
			e.regs = append(e.regs[:i], e.regs[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
}
