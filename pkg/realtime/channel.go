// Package realtime provides the named channel primitive the chat and typing
// layers ride on: scoped publish/subscribe of small JSON events, one channel
// per conversation. Persistence is never involved; a channel only reaches
// subscribers that are live when the event is published.
package realtime

import (
	"context"
	"encoding/json"
)

// Event is one broadcast on a channel.
type Event struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Handler receives events for one subscription.
type Handler func(Event)

// Channel is a named broadcast stream.
type Channel interface {
	// Publish sends an event to every live subscriber, including the caller's
	// own subscriptions.
	Publish(ctx context.Context, name string, payload any) error
	// Subscribe registers h and returns a function that tears the
	// subscription down. Exactly one teardown call is required; omitting it
	// leaks the subscription.
	Subscribe(ctx context.Context, h Handler) (func(), error)
}

// Broker opens channels by name. Channels with the same name share traffic.
type Broker interface {
	Channel(name string) Channel
}

func encodeEvent(name string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Name: name, Payload: raw})
}
