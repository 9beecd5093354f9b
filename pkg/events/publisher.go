// Package events publishes round and review lifecycle events to a RabbitMQ
// topic exchange for downstream consumers (notifications, analytics). The
// publisher is optional: a nil *Publisher silently drops every emit, so
// callers never branch on whether the broker is configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys on the topic exchange.
const (
	KeyRoundCreated     = "round.created"
	KeyRoundJoined      = "round.joined"
	KeyRoundLeft        = "round.left"
	KeyRoundTransferred = "round.transferred"
	KeyRoundDeleted     = "round.deleted"
	KeyReviewSubmitted  = "review.submitted"
)

// RoundEvent describes a change to a round's membership or existence.
type RoundEvent struct {
	RoundID     string    `json:"roundId"`
	ProfileID   string    `json:"profileId,omitempty"`
	OrganizerID string    `json:"organizerId,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// ReviewEvent describes a submitted or updated review.
type ReviewEvent struct {
	RoundID        string    `json:"roundId"`
	ReviewerID     string    `json:"reviewerId"`
	ReviewedUserID string    `json:"reviewedUserId"`
	Rating         int       `json:"rating"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher emits JSON events to a durable topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewPublisher dials the broker and declares the exchange. The returned
// publisher must be closed on shutdown.
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Emit publishes v under the given routing key. A nil publisher is a no-op.
func (p *Publisher) Emit(ctx context.Context, key string, v any) error {
	if p == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", key, err)
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
