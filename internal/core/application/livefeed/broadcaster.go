// Package livefeed streams the list of active orders to connected operators.
//
// Every connection runs its own Feed loop: it queries the active orders, and sends the
// full list only when it differs from the last list the client received. The loop polls
// on a fixed interval and is woken early by the Broadcaster whenever an order changed,
// either in this process (unit of work commits) or in another instance (Postgres NOTIFY).
package livefeed

import (
	"context"
	"sync"

	"souvlaki/internal/core/domain/model/order"
)

// Broadcaster fans out "something changed" wake-ups to every subscribed feed.
// Notify never blocks: each subscriber has a single-slot channel and pending
// wake-ups collapse into one.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[uint64]chan struct{}
	next uint64
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[uint64]chan struct{}),
	}
}

// Subscribe registers a new listener. The returned function unregisters it and is
// safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Notify wakes every subscriber.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Publish implements ports.EventPublisher so the broadcaster can be handed to the unit
// of work directly.
func (b *Broadcaster) Publish(_ context.Context, events ...order.StatusChanged) error {
	if len(events) > 0 {
		b.Notify()
	}
	return nil
}

// SubscriberCount reports how many feeds are currently connected.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
