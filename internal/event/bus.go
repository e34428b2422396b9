// Package event provides a pub/sub bus for settings-resolution events using
// watermill.
//
// The bus is created by the caller and passed to the components that publish
// on it; there is no process-wide instance. Consumers (UI surfaces, log
// sinks) subscribe for the activation events defined in types.go.
package event

import (
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Type identifies an event.
type Type string

// Subscriber receives events.
type Subscriber func(event Event)

// Event is a published event.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

type subscriberEntry struct {
	id uint64
	fn Subscriber
}

// Bus manages pub/sub. Watermill's gochannel carries the transport while
// typed subscriber tracking keeps the payloads as Go values instead of
// marshalled bytes.
type Bus struct {
	mu sync.RWMutex

	pubsub      *gochannel.GoChannel
	subscribers map[Type][]subscriberEntry
	nextID      uint64
	closed      bool
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 64,
				Persistent:          false,
			},
			watermill.NopLogger{},
		),
		subscribers: make(map[Type][]subscriberEntry),
	}
}

// Subscribe registers a subscriber for an event type and returns an
// unsubscribe function.
func (b *Bus) Subscribe(eventType Type, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	id := atomic.AddUint64(&b.nextID, 1)
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriberEntry{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[eventType]
		for i, entry := range subs {
			if entry.id == id {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers an event to all subscribers in the calling goroutine.
// Activation is a single-pass computation, so publication stays synchronous
// and ordered with it.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	subs := make([]Subscriber, 0, len(b.subscribers[event.Type]))
	for _, entry := range b.subscribers[event.Type] {
		subs = append(subs, entry.fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}

// Close shuts the bus down. Further publishes and subscribes are no-ops.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.subscribers = make(map[Type][]subscriberEntry)
	return b.pubsub.Close()
}
