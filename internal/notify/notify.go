// Package notify implements the change-notification feed consumed by the
// operator dashboard. Publishers push record and log snapshots; subscribers
// receive them over buffered channels, with an SSE bridge in the HTTP layer.
package notify

import (
	"sync"
)

// EventType mirrors the change feed's event kinds.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

// Collection names the feed a snapshot belongs to.
type Collection string

const (
	CollectionVerifications Collection = "verifications"
	CollectionLogs          Collection = "system_logs"
)

// Event carries one change notification with the updated snapshot.
type Event struct {
	Type       EventType  `json:"eventType"`
	Collection Collection `json:"collection"`
	New        any        `json:"new"`
}

// Hub fans events out to all current subscribers. A slow subscriber drops
// events rather than blocking the pipeline writers.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// function. The cancel function is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount is used by tests and the health endpoint.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
