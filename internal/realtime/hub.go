// Package realtime is the in-process listener fabric: services publish
// document changes by topic and standing subscriptions receive them in
// publish order.
package realtime

import (
	"sync"
	"time"
)

// Topics.
const (
	TopicRooms         = "rooms"
	TopicDevices       = "devices"
	TopicSessions      = "sessions"
	TopicReports       = "reports"
	TopicNotifications = "notifications"
)

// Event is one change notification. Key is the document id.
type Event struct {
	Topic string    `json:"topic"`
	Type  string    `json:"type"`
	Key   string    `json:"key,omitempty"`
	Data  any       `json:"data,omitempty"`
	At    time.Time `json:"at"`
}

// Hub is an in-memory pub/sub keyed by topic.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	buffer int
}

const defaultBuffer = 64

func NewHub() *Hub {
	return &Hub{
		subs:   map[string]map[chan Event]struct{}{},
		buffer: defaultBuffer,
	}
}

// Subscribe registers a listener on topic. The returned cancel func must be
// called to release it; it is safe to call more than once.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if _, ok := h.subs[topic]; !ok {
		h.subs[topic] = map[chan Event]struct{}{}
	}
	h.subs[topic][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if m, ok := h.subs[topic]; ok {
				delete(m, ch)
				if len(m) == 0 {
					delete(h.subs, topic)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish fans ev out to every subscriber of its topic without blocking.
// A subscriber whose buffer is full misses the event.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[ev.Topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}
