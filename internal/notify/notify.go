// Package notify provides the in-process change-notification bus the
// presentation layer subscribes to after any mutation.
package notify

import (
	"sync"
	"time"
)

// Event types published by the core managers.
const (
	EventNotariesChanged     = "notaries.changed"
	EventArticlesChanged     = "articles.changed"
	EventAppointmentsChanged = "appointments.changed"
	EventFavoritesChanged    = "favorites.changed"
	EventSessionChanged      = "session.changed"
	EventSyncCompleted       = "sync.completed"
)

// Event describes a single change in the store or session.
type Event struct {
	Type      string `json:"type"`
	EntityID  string `json:"entity_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Bus is a fan-out publish/subscribe hub. Publishing never blocks:
// a subscriber that cannot keep up loses events rather than stalling
// the mutation that produced them.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a subscriber and returns its event channel and a
// cancel function. The channel is closed on cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers an event to all current subscribers.
func (b *Bus) Publish(eventType, entityID string) {
	evt := Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().Unix(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// Slow subscriber, drop the event.
		}
	}
}

// Subscribers returns the number of active subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
