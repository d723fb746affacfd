// Package eventbus fans events out to subscribers without ever blocking the
// publisher: a subscriber whose buffer is full misses the event.
package eventbus

// Event is any value published on an untyped bus.
type Event interface{}

// EventBus is the untyped publish/subscribe contract used between services
// and collectors.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus.
type Bus = TypedBus[Event]

// New creates a Bus with the default subscriber buffer.
func New() *Bus { return NewTyped[Event]() }

var _ EventBus = (*Bus)(nil)
