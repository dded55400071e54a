// Package notify carries launcher events to in-process subscribers and to
// live clients over WebSocket. The event set is closed: every event name and
// payload shape the launcher emits is declared here.
package notify

import (
	"sync"
	"time"
)

// EventName identifies one of the launcher's events.
type EventName string

const (
	EventStatusChange  EventName = "status-change"
	EventServerReady   EventName = "server-ready"
	EventBuildStart    EventName = "build-start"
	EventBuildEnd      EventName = "build-end"
	EventConfigChanged EventName = "config-changed"
	EventError         EventName = "error"
)

// Event is a published launcher event.
type Event struct {
	Name EventName `json:"name"`
	// Payload fields by event:
	//   status-change:  {"from": string, "to": string}
	//   server-ready:   {"url": string}
	//   build-start:    {}
	//   build-end:      {"success": bool, "duration_ms": int64}
	//   config-changed: {"scope": "launcher"}
	//   error:          {"operation": string, "error": string}
	Payload map[string]interface{} `json:"payload,omitempty"`
	Time    time.Time              `json:"time"`
}

// Handler receives published events. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(Event)

// Bus is an explicit publish/subscribe bus over the closed event set.
type Bus struct {
	mutex    sync.RWMutex
	nextID   int
	handlers map[EventName]map[int]Handler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventName]map[int]Handler)}
}

// Subscribe registers a handler for one event name and returns an
// unsubscribe function.
func (b *Bus) Subscribe(name EventName, handler Handler) func() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[name] == nil {
		b.handlers[name] = make(map[int]Handler)
	}
	b.handlers[name][id] = handler

	return func() {
		b.mutex.Lock()
		defer b.mutex.Unlock()
		delete(b.handlers[name], id)
	}
}

// Publish delivers the event to every subscriber of its name.
func (b *Bus) Publish(name EventName, payload map[string]interface{}) {
	event := Event{Name: name, Payload: payload, Time: time.Now()}

	b.mutex.RLock()
	handlers := make([]Handler, 0, len(b.handlers[name]))
	for _, h := range b.handlers[name] {
		handlers = append(handlers, h)
	}
	b.mutex.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
