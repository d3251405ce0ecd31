package device

import "sync"

// subscriberBuffer is the channel capacity handed to each subscriber.
// Events for a subscriber whose buffer is full are dropped.
const subscriberBuffer = 32

// EventSubscriber defines the interface for subscribing to device state events
type EventSubscriber interface {
	// Subscribe returns a channel that receives state events
	Subscribe() chan StateEvent

	// Unsubscribe removes a subscription and closes its channel
	Unsubscribe(ch chan StateEvent)
}

// broadcaster fans state events out to subscribers without blocking the publisher.
type broadcaster struct {
	mu          sync.Mutex
	subscribers []chan StateEvent
}

func (b *broadcaster) Subscribe() chan StateEvent {
	ch := make(chan StateEvent, subscriberBuffer)

	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()

	return ch
}

func (b *broadcaster) Unsubscribe(ch chan StateEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *broadcaster) publish(ev StateEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
