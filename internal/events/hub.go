package events

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// ObserverBuffer is the per-observer channel buffer. Delivery is
// at-most-once: an observer that is not draining its channel loses events
// instead of blocking the broadcaster.
const ObserverBuffer = 16

const topic = "facegate:events"

// Hub is the publish/subscribe component owned by the server and injected
// into the workflows. Publishing with zero connected observers is a no-op.
type Hub struct {
	bus evbus.Bus

	mu        sync.RWMutex
	observers []chan Event
}

// NewHub creates a hub with its own internal event bus.
func NewHub() *Hub {
	h := &Hub{bus: evbus.New()}
	// Fan-out runs on the bus so publishers never touch the observer set.
	if err := h.bus.Subscribe(topic, h.fanout); err != nil {
		// Subscribe only fails for non-function handlers.
		panic("events: subscribe fan-out: " + err.Error())
	}
	return h
}

// Publish broadcasts an event to all currently connected observers.
func (h *Hub) Publish(event Event) {
	h.bus.Publish(topic, event)
}

// AddObserver connects a new observer and returns its event channel.
func (h *Hub) AddObserver() chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Event, ObserverBuffer)
	h.observers = append(h.observers, ch)
	return ch
}

// RemoveObserver disconnects an observer and closes its channel. Safe to
// call while a broadcast is in flight.
func (h *Hub) RemoveObserver(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, observer := range h.observers {
		if observer == ch {
			h.observers = append(h.observers[:i], h.observers[i+1:]...)
			close(ch)
			return
		}
	}
}

// ObserverCount returns the number of connected observers.
func (h *Hub) ObserverCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

func (h *Hub) fanout(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, observer := range h.observers {
		select {
		case observer <- event:
		default:
			// Observer buffer full, skip.
		}
	}
}
