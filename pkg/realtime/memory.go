package realtime

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryBroker implements Broker in-process. It serves tests and single-node
// deployments; multi-replica setups need the redis broker.
type MemoryBroker struct {
	mu       sync.Mutex
	channels map[string]*memoryChannel
}

// NewMemoryBroker initializes an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{channels: make(map[string]*memoryChannel)}
}

// Channel returns the shared channel for name, creating it on first use.
func (b *MemoryBroker) Channel(name string) Channel {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[name]
	if !ok {
		ch = &memoryChannel{handlers: make(map[int]Handler)}
		b.channels[name] = ch
	}
	return ch
}

type memoryChannel struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

func (c *memoryChannel) Publish(_ context.Context, name string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := Event{Name: name, Payload: raw}
	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()
	// Dispatch off the caller's goroutine so a subscriber that publishes in
	// response cannot deadlock against its own locks.
	for _, h := range handlers {
		go h(event)
	}
	return nil
}

func (c *memoryChannel) Subscribe(_ context.Context, h Handler) (func(), error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = h
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}, nil
}
