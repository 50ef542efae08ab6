package async

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event is one entry of the live order feed.
type Event struct {
	Type      string    `json:"type"`
	Reference string    `json:"reference"`
	Payload   any       `json:"payload,omitempty"`
	Occurred  time.Time `json:"occurred_at"`
}

// EventHub fans events out to subscribers. A subscriber whose buffer is full
// is dropped and its channel closed; Publish never blocks.
type EventHub struct {
	mu      sync.Mutex
	subs    map[uint64]chan Event
	nextID  uint64
	buffer  int
	dropped atomic.Int64
}

// NewEventHub creates a hub with the given per-subscriber buffer.
func NewEventHub(buffer int) *EventHub {
	if buffer <= 0 {
		buffer = 16
	}
	return &EventHub{subs: make(map[uint64]chan Event), buffer: buffer}
}

// Subscribe registers a listener. The returned cancel func is idempotent.
func (h *EventHub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

// Publish delivers e to every subscriber.
func (h *EventHub) Publish(e Event) {
	if h == nil {
		return
	}
	if e.Occurred.IsZero() {
		e.Occurred = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			delete(h.subs, id)
			close(ch)
			h.dropped.Add(1)
		}
	}
}

// Subscribers reports the number of live listeners.
func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped reports how many slow subscribers were disconnected.
func (h *EventHub) Dropped() int64 {
	return h.dropped.Load()
}
