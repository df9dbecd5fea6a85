package pubsub

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("bus closed")

const subscriberBuffer = 64

// MemoryBus is an in-process Bus: one goroutine per subscriber drains a
// buffered channel, and a subscriber that falls too far behind is dropped
// rather than allowed to stall everyone else. That mirrors the transport
// contract exactly — at-most-once, no backpressure.
type MemoryBus struct {
	mu     sync.Mutex
	topics map[string]map[int]chan []byte
	nextID int
	closed bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{topics: make(map[string]map[int]chan []byte)}
}

func (b *MemoryBus) Publish(_ context.Context, topic string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for id, ch := range b.topics[topic] {
		select {
		case ch <- data:
		default:
			// Slow subscriber: drop it, same as the relay does.
			close(ch)
			delete(b.topics[topic], id)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(topic string, h Handler) (func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	ch := make(chan []byte, subscriberBuffer)
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[int]chan []byte)
	}
	b.topics[topic][id] = ch
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for data := range ch {
			h(data)
		}
		close(done)
	}()

	cancel := func() {
		b.mu.Lock()
		if sub, ok := b.topics[topic][id]; ok {
			close(sub)
			delete(b.topics[topic], id)
		}
		b.mu.Unlock()
		<-done
	}
	return cancel, nil
}

// Close drops every subscription; further publishes fail with ErrClosed.
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.topics {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
	}
}
