// Package messaging abstracts the pub/sub transport used for reminder
// events so the outbox processor does not depend on Redis directly.
package messaging

import "context"

// Broker publishes and subscribes on named channels. Publish serializes
// the message; Subscribe delivers raw payloads until ctx is cancelled.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope published for every outbox event. Type repeats
// the channel name so consumers on wildcard subscriptions can dispatch
// without inspecting the payload.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
