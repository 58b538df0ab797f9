// Package events is the in-process publish/subscribe layer modules use to
// react to each other's state changes without importing one another.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName is the routing key handlers subscribe to.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp shared by all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler reacts to one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events to subscribed handlers.
type Bus interface {
	// Publish fans the event out on background goroutines; handler errors are logged.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers inline and joins their errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
