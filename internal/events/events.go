package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventSlotsCommitted = "slots_committed"
	EventSlotDeleted    = "slot_deleted"
	EventBookingCreated = "booking_created"
	EventBookingDeleted = "booking_deleted"
)

// SlotEventPayload describes a slot mutation for event consumers.
type SlotEventPayload struct {
	Date         string `json:"date"`
	SlotCount    int    `json:"slot_count,omitempty"`
	SlotID       string `json:"slot_id,omitempty"`
	CascadeCount int    `json:"cascade_count,omitempty"`
}

// BookingEventPayload describes the minimal booking snapshot for event
// consumers such as the Telegram admin notifier.
type BookingEventPayload struct {
	BookingID   string `json:"booking_id"`
	SlotID      string `json:"slot_id"`
	VisitorName string `json:"visitor_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
