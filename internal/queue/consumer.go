package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AuditFile is the name of the file the consumer appends to.
const AuditFile = "audit.log"

// Consumer listens to the booking.created and payment.recorded queues and
// appends one line per event to {Dir}/audit.log.
type Consumer struct {
	url string
	dir string
	log *zap.Logger
}

func NewConsumer(url, dir string, log *zap.Logger) *Consumer {
	return &Consumer{url: url, dir: dir, log: log.Named("audit-consumer")}
}

// Run connects to the broker and consumes until ctx is cancelled.  Broken
// connections are re-dialled with exponential backoff capped at 30s;
// offending messages are rejected so the loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set QoS failed", zap.Error(err))
	}

	type delivery struct {
		queue string
		msg   amqp.Delivery
	}
	merged := make(chan delivery)
	stop := make(chan struct{})
	defer close(stop)
	queues := []string{BookingCreatedQueue, PaymentRecordedQueue}
	done := make(chan struct{}, len(queues))
	for _, q := range queues {
		if _, err := declare(ch, q); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		go func(q string, msgs <-chan amqp.Delivery) {
			defer func() { done <- struct{}{} }()
			for d := range msgs {
				select {
				case merged <- delivery{queue: q, msg: d}:
				case <-stop:
					return
				}
			}
		}(q, msgs)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return errors.New("deliveries channel closed")
		case d := <-merged:
			if err := c.handleMessage(d.queue, d.msg.Body); err != nil {
				c.log.Error("handle message failed", zap.String("queue", d.queue), zap.Error(err))
				_ = d.msg.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.msg.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(queue string, body []byte) error {
	line, err := formatAuditLine(queue, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.dir, AuditFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func formatAuditLine(queue string, body []byte) (string, error) {
	switch queue {
	case BookingCreatedQueue:
		var ev BookingCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Booking created | booking_id=%d | owner_id=%d | client=%q | hotel=%q | check_in=%s | check_out=%s | total=%s | invoice=%s\n",
			ev.CreatedAt, ev.BookingID, ev.OwnerID, ev.ClientName, ev.HotelName, ev.CheckIn, ev.CheckOut, ev.TotalAmount, ev.InvoiceNumber), nil
	case PaymentRecordedQueue:
		var ev PaymentRecordedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		txID := ev.TransactionID
		if txID == "" {
			txID = "-"
		}
		return fmt.Sprintf("[%s] Payment recorded | payment_id=%d | booking_id=%d | owner_id=%d | amount=%s | method=%s | transaction_id=%s | receipt=%s\n",
			ev.RecordedAt, ev.PaymentID, ev.BookingID, ev.OwnerID, ev.Amount, ev.Method, txID, ev.ReceiptNumber), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
