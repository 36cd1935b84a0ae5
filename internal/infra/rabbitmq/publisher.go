package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CacheBuiltRoutingKey is the routing key of cache build completion events.
const CacheBuiltRoutingKey = "dataset.cache.built"

type Publisher struct {
	channel  *amqp.Channel
	exchange string
}

// NewPublisher opens a channel and declares the durable topic exchange.
func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

type EventPublisher struct {
	pub        *Publisher
	routingKey string
}

func NewEventPublisher(pub *Publisher) *EventPublisher {
	return &EventPublisher{pub: pub, routingKey: CacheBuiltRoutingKey}
}

func (ep *EventPublisher) PublishCacheBuilt(ctx context.Context, msg []byte) error {
	return ep.pub.channel.PublishWithContext(ctx,
		ep.pub.exchange,
		ep.routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         msg,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}
