package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingApproved  = "booking_approved"
	EventBookingRejected  = "booking_rejected"
	EventQuoteSelected    = "quote_selected"
	EventBookingConfirmed = "booking_confirmed"
	EventStatusOverridden = "status_overridden"
	EventQuoteCalculated  = "quote_calculated"
	EventNotifyRequested  = "notify_requested"
	EventUserRegistered   = "user_registered"
)

// BookingEventPayload is the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID       int64  `json:"booking_id"`
	UserID          int64  `json:"user_id"`
	CurrentLocation string `json:"current_location,omitempty"`
	NewLocation     string `json:"new_location,omitempty"`
	Status          string `json:"status"`
	Approved        bool   `json:"approved"`
	QuoteID         int64  `json:"quote_id,omitempty"`
	Date            string `json:"date,omitempty"`
	Time            string `json:"time,omitempty"`
}

// QuoteEventPayload describes a computed or recalculated quote.
type QuoteEventPayload struct {
	QuoteID     int64   `json:"quote_id"`
	UserID      int64   `json:"user_id"`
	CompanyName string  `json:"company_name"`
	Amount      float64 `json:"amount"`
	Distance    float64 `json:"distance"`
	HouseType   string  `json:"house_type"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events. Handlers run
// synchronously; consumers that must not block a transition hand the
// event off to their own queue.
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
