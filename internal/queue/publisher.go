package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits order lifecycle events. Publishing is best-effort: the
// order service logs and ignores failures so a broker outage never fails a
// request.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
	PublishOrderCancelled(ctx context.Context, event OrderCancelledEvent) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) PublishOrderCreated(context.Context, OrderCreatedEvent) error { return nil }

func (NopPublisher) PublishOrderCancelled(context.Context, OrderCancelledEvent) error { return nil }

// AMQPPublisher publishes events to RabbitMQ. Each publish dials its own
// connection, declares the durable queue and sends a persistent JSON
// message; any error is logged and returned so callers can choose to
// ignore it.
type AMQPPublisher struct {
	url string
}

var _ Publisher = (*AMQPPublisher)(nil)

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

func (p *AMQPPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	return p.publish(ctx, OrderCreatedQueue, event)
}

func (p *AMQPPublisher) PublishOrderCancelled(ctx context.Context, event OrderCancelledEvent) error {
	return p.publish(ctx, OrderCancelledQueue, event)
}

func (p *AMQPPublisher) publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts; declare is idempotent.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
