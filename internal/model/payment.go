package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a client settled a booking.
type PaymentMethod string

const (
	MethodMpesa PaymentMethod = "MPESA"
	MethodBank  PaymentMethod = "BANK"
	MethodCash  PaymentMethod = "CASH"
)

// ParsePaymentMethod normalises raw and reports whether it names a
// supported method.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	switch m {
	case MethodMpesa, MethodBank, MethodCash:
		return m, true
	}
	return "", false
}

// Payment records the settlement of a booking.  There is at most one
// payment per booking; the payments.booking_id column is UNIQUE.
type Payment struct {
	ID            uint64          `json:"id"`                      // payments.id
	BookingID     uint64          `json:"bookingId"`               // payments.booking_id
	Amount        decimal.Decimal `json:"amount"`                  // payments.amount
	Method        PaymentMethod   `json:"method"`                  // payments.method
	TransactionID string          `json:"transactionId,omitempty"` // payments.transaction_id (nullable)
	CreatedAt     time.Time       `json:"createdAt"`               // payments.created_at
}
