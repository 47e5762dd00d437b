package services

import (
	"sync"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

// subscriberBuffer is the per-subscriber channel capacity. Events for a
// subscriber whose buffer is full are dropped.
const subscriberBuffer = 64

// Broadcaster fans sync events out to any number of subscribers without
// ever blocking the publisher.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan models.SyncEvent
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan models.SyncEvent)}
}

// Subscribe registers a listener. The returned func unsubscribes and closes
// the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan models.SyncEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.SyncEvent, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers ev to every subscriber with room in its buffer and
// returns the number of subscribers that missed it.
func (b *Broadcaster) Publish(ev models.SyncEvent) (dropped int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	return dropped
}

// Close closes every subscriber channel. Later subscriptions get a closed
// channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
