package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type typingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

func newRedisChannelPair(t *testing.T, name string) (Channel, Channel) {
	t.Helper()
	mr := miniredis.RunT(t)
	a := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return NewRedisBroker(a, "rt").Channel(name), NewRedisBroker(b, "rt").Channel(name)
}

func collectEvents(t *testing.T, ch Channel) (*sync.Mutex, *[]Event, func()) {
	t.Helper()
	var mu sync.Mutex
	var got []Event
	unsub, err := ch.Subscribe(context.Background(), func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return &mu, &got, unsub
}

func waitForEvents(t *testing.T, mu *sync.Mutex, got *[]Event, n int) []Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		if len(*got) >= n {
			res := append([]Event(nil), *got...)
			mu.Unlock()
			return res
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events", n)
	return nil
}

func TestRedisChannelDeliversAcrossClients(t *testing.T) {
	pub, sub := newRedisChannelPair(t, "conv-1")
	mu, got, unsub := collectEvents(t, sub)
	defer unsub()

	if err := pub.Publish(context.Background(), "typing", typingPayload{UserID: "p1", IsTyping: true}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	events := waitForEvents(t, mu, got, 1)
	if events[0].Name != "typing" {
		t.Fatalf("unexpected event name %q", events[0].Name)
	}
	var payload typingPayload
	if err := events[0].Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.UserID != "p1" || !payload.IsTyping {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestRedisChannelScopedByName(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	broker := NewRedisBroker(client, "rt")

	mu, got, unsub := collectEvents(t, broker.Channel("conv-a"))
	defer unsub()

	if err := broker.Channel("conv-b").Publish(context.Background(), "typing", typingPayload{UserID: "x"}); err != nil {
		t.Fatalf("publish other channel: %v", err)
	}
	if err := broker.Channel("conv-a").Publish(context.Background(), "typing", typingPayload{UserID: "y"}); err != nil {
		t.Fatalf("publish own channel: %v", err)
	}
	events := waitForEvents(t, mu, got, 1)
	var payload typingPayload
	if err := events[0].Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.UserID != "y" {
		t.Fatalf("received event from wrong channel: %+v", payload)
	}
}

func TestRedisChannelUnsubscribeStopsDelivery(t *testing.T) {
	pub, sub := newRedisChannelPair(t, "conv-2")
	mu, got, unsub := collectEvents(t, sub)

	if err := pub.Publish(context.Background(), "message", map[string]string{"id": "m1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitForEvents(t, mu, got, 1)
	unsub()

	if err := pub.Publish(context.Background(), "message", map[string]string{"id": "m2"}); err != nil {
		t.Fatalf("publish after unsubscribe: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(*got) != 1 {
		t.Fatalf("expected no delivery after unsubscribe, got %d events", len(*got))
	}
}

func TestMemoryBrokerFanOut(t *testing.T) {
	broker := NewMemoryBroker()
	ch := broker.Channel("conv-3")

	mu1, got1, unsub1 := collectEvents(t, ch)
	defer unsub1()
	mu2, got2, unsub2 := collectEvents(t, broker.Channel("conv-3"))
	defer unsub2()

	if err := ch.Publish(context.Background(), "typing", typingPayload{UserID: "p9", IsTyping: true}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitForEvents(t, mu1, got1, 1)
	waitForEvents(t, mu2, got2, 1)
}
