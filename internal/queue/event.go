// Package queue defines the domain events exchanged over RabbitMQ together
// with their publisher and the audit consumer.
package queue

// Queue names.  Each event type has its own durable queue; the routing key
// equals the queue name on the default exchange.
const (
	BookingCreatedQueue  = "booking.created"
	PaymentRecordedQueue = "payment.recorded"
)

// BookingCreatedEvent is published after a booking and its invoice have
// been committed.  It carries enough information for downstream consumers
// to log or notify without querying the primary database.
type BookingCreatedEvent struct {
	BookingID     uint64 `json:"booking_id"`
	OwnerID       uint64 `json:"owner_id"`
	ClientID      uint64 `json:"client_id"`
	ClientName    string `json:"client_name"`
	HotelID       uint64 `json:"hotel_id"`
	HotelName     string `json:"hotel_name"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	TotalAmount   string `json:"total_amount"`
	InvoiceNumber string `json:"invoice_number"`
	CreatedAt     string `json:"created_at"`
}

// PaymentRecordedEvent is published after a payment, its receipt and the
// booking's move to PAID have been committed.
type PaymentRecordedEvent struct {
	PaymentID     uint64 `json:"payment_id"`
	BookingID     uint64 `json:"booking_id"`
	OwnerID       uint64 `json:"owner_id"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id,omitempty"`
	ReceiptNumber string `json:"receipt_number"`
	RecordedAt    string `json:"recorded_at"`
}
