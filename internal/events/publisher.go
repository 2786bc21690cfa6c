package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rental-backend/internal/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends one event. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type rabbitPublisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// NewRabbitPublisher dials url and declares exchange as a durable topic
// exchange. An empty url yields a publisher that drops every event.
func NewRabbitPublisher(url, exchange string) (Publisher, error) {
	if url == "" {
		logger.Info("RabbitMQ not configured, domain events are disabled")
		return NoopPublisher{}, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &rabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func newPublisherWithChannel(ch channel, exchange string) *rabbitPublisher {
	return &rabbitPublisher{ch: ch, exchange: exchange}
}

func (p *rabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", routingKey, err)
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    time.Now(),
		Type:         routingKey,
		Body:         body,
	})
	logger.ExternalServiceResult("rabbitmq", "publish", err, "routing_key", routingKey)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *rabbitPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	logger.Debug("Event dropped", "routing_key", routingKey)
	return nil
}

func (NoopPublisher) Close() error { return nil }
