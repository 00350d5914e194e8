package events

import (
	"sync/atomic"

	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
	dropped    atomic.Uint64
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(CameraStatusChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event is generic, so dispatch on the concrete type
	switch e := ev.(type) {
	case CameraStatusChangedEvent:
		event.Publish(b.dispatcher, e)
	case WeakResolutionChangedEvent:
		event.Publish(b.dispatcher, e)
	case NegotiationProgressEvent:
		event.Publish(b.dispatcher, e)
	case NegotiationCompletedEvent:
		event.Publish(b.dispatcher, e)
	case StreamReleasedEvent:
		event.Publish(b.dispatcher, e)
	case DevicePresenceEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives.
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e NegotiationCompletedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(CameraStatusChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(WeakResolutionChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(NegotiationProgressEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(NegotiationCompletedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StreamReleasedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DevicePresenceEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}
