package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisBroker implements Broker over Redis pub/sub, so every service replica
// sees every broadcast.
type RedisBroker struct {
	client *redis.Client
	prefix string
}

// NewRedisBroker wraps an existing client. prefix namespaces the pub/sub
// topics (defaults to "rt").
func NewRedisBroker(client *redis.Client, prefix string) *RedisBroker {
	if prefix == "" {
		prefix = "rt"
	}
	return &RedisBroker{client: client, prefix: prefix}
}

// Channel returns the channel for name.
func (b *RedisBroker) Channel(name string) Channel {
	return &redisChannel{client: b.client, topic: b.prefix + ":" + name}
}

type redisChannel struct {
	client *redis.Client
	topic  string
}

func (c *redisChannel) Publish(ctx context.Context, name string, payload any) error {
	data, err := encodeEvent(name, payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := c.client.Publish(ctx, c.topic, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", c.topic, err)
	}
	return nil
}

func (c *redisChannel) Subscribe(ctx context.Context, h Handler) (func(), error) {
	ps := c.client.Subscribe(ctx, c.topic)
	// Force the SUBSCRIBE round-trip so a failed connection surfaces here
	// instead of silently dropping events.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", c.topic, err)
	}
	go func() {
		for msg := range ps.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Warn("realtime: dropping malformed event", "topic", c.topic, "error", err)
				continue
			}
			h(event)
		}
	}()
	return func() { _ = ps.Close() }, nil
}
