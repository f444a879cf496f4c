package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events to RabbitMQ.  Each publish opens its own
// connection; event volume in a back office is a handful per hour.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log.Named("publisher")}
}

// PublishBookingCreated publishes ev to the booking.created queue.
func (p *Publisher) PublishBookingCreated(ctx context.Context, ev BookingCreatedEvent) error {
	return p.publish(ctx, BookingCreatedQueue, ev)
}

// PublishPaymentRecorded publishes ev to the payment.recorded queue.
func (p *Publisher) PublishPaymentRecorded(ctx context.Context, ev PaymentRecordedEvent) error {
	return p.publish(ctx, PaymentRecordedQueue, ev)
}

// publish never panics; errors are logged and returned so the caller can
// choose to ignore them.  Messages are marked as persistent.
func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal event failed", zap.String("queue", queue), zap.Error(err))
		return fmt.Errorf("marshal %s event: %w", queue, err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("dial failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("channel open failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := declare(ch, queue); err != nil {
		p.log.Warn("queue declare failed", zap.String("queue", queue), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.log.Warn("publish failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	p.log.Debug("event published", zap.String("queue", queue), zap.Int("bytes", len(body)))
	return nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
}

// NopPublisher drops every event.  It is used when event publishing is
// disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBookingCreated(context.Context, BookingCreatedEvent) error   { return nil }
func (NopPublisher) PublishPaymentRecorded(context.Context, PaymentRecordedEvent) error { return nil }
