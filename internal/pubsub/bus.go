// Package pubsub is the broadcast capability the replication protocol runs
// over: best-effort, at-most-once, no ordering promises across publishers.
// The state machine never touches a concrete transport; sessions take a Bus
// so the websocket relay and the in-memory bus are interchangeable.
package pubsub

import "context"

// Handler receives one published frame. It runs on the bus's delivery
// goroutine for that subscriber; don't block in it.
type Handler func(data []byte)

type Bus interface {
	// Publish sends data to every current subscriber of topic, including
	// the publisher's own subscriptions. Delivery is fire-and-forget.
	Publish(ctx context.Context, topic string, data []byte) error

	// Subscribe registers a handler for a topic and returns a cancel
	// function that tears the subscription down.
	Subscribe(topic string, h Handler) (cancel func(), err error)
}
