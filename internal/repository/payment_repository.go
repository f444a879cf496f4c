package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

// PaymentRepo stores booking payments.  payments.booking_id is UNIQUE, so
// a booking can never carry more than one payment regardless of how two
// concurrent requests interleave.
type PaymentRepo struct{}

func NewPaymentRepo() *PaymentRepo { return &PaymentRepo{} }

// ExistsForBookingTx reports whether bookingID already has a payment.
func (r *PaymentRepo) ExistsForBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM payments WHERE booking_id = ? LIMIT 1", bookingID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts p and sets its ID.  A second payment for the same
// booking yields ErrPaymentExists.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO payments (booking_id, amount, method, transaction_id, created_at) VALUES (?, ?, ?, ?, ?)",
		p.BookingID, p.Amount, string(p.Method), nullString(p.TransactionID), p.CreatedAt)
	if err != nil {
		if isDuplicateKey(err, "uq_payments_booking") {
			return ErrPaymentExists
		}
		return err
	}
	return setID(res, &p.ID)
}
