package events

import "github.com/kelindar/event"

// SubscribeToChannel forwards events of type T into ch for select-driven
// consumers such as SSE handlers. A full channel never blocks the
// dispatcher: the event is dropped and counted in Bus.Dropped.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
			bus.dropped.Add(1)
		}
	})
}

// SubscribeCameraEvents forwards every camera and device event into ch.
// The returned func removes all of the subscriptions.
func SubscribeCameraEvents(bus *Bus, ch chan<- any) func() {
	unsubs := []func(){
		SubscribeToChannel[CameraStatusChangedEvent](bus, ch),
		SubscribeToChannel[WeakResolutionChangedEvent](bus, ch),
		SubscribeToChannel[NegotiationProgressEvent](bus, ch),
		SubscribeToChannel[NegotiationCompletedEvent](bus, ch),
		SubscribeToChannel[StreamReleasedEvent](bus, ch),
		SubscribeToChannel[DevicePresenceEvent](bus, ch),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Dropped returns how many events channel subscribers have missed because
// their channel was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
