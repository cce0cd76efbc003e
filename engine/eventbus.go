package engine

import (
	"sync"
	"time"
)

// EventType identifies a class of hub event.
type EventType int

// SubscriberID is the handle returned on subscription.
type SubscriberID int

type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

type handler struct {
	types []EventType // empty means every type
	fn    func(Event)
}

func (h handler) wants(t EventType) bool {
	if len(h.types) == 0 {
		return true
	}
	for _, want := range h.types {
		if want == t {
			return true
		}
	}
	return false
}

// EventBus fans hub events out to registered handlers. Delivery is
// synchronous on the emitter's goroutine, in subscription order.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[SubscriberID]handler
	order    []SubscriberID
	nextID   SubscriberID
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[SubscriberID]handler)}
}

// Subscribe registers a handler for every event type.
func (eb *EventBus) Subscribe(fn func(Event)) SubscriberID {
	return eb.SubscribeTypes(fn)
}

// SubscribeTypes registers a handler for the given event types only.
// Called with no types it behaves like Subscribe.
func (eb *EventBus) SubscribeTypes(fn func(Event), types ...EventType) SubscriberID {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.nextID++
	id := eb.nextID
	eb.handlers[id] = handler{types: types, fn: fn}
	eb.order = append(eb.order, id)
	return id
}

// Unsubscribe removes a handler by its subscription handle.
func (eb *EventBus) Unsubscribe(id SubscriberID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if _, ok := eb.handlers[id]; !ok {
		return
	}
	delete(eb.handlers, id)
	for i, hid := range eb.order {
		if hid == id {
			eb.order = append(eb.order[:i], eb.order[i+1:]...)
			break
		}
	}
}

// Emit delivers an event to every handler subscribed to its type.
func (eb *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	eb.mu.RLock()
	fns := make([]func(Event), 0, len(eb.order))
	for _, id := range eb.order {
		if h, ok := eb.handlers[id]; ok && h.wants(evt.Type) {
			fns = append(fns, h.fn)
		}
	}
	eb.mu.RUnlock()

	for _, fn := range fns {
		fn(evt)
	}
}
