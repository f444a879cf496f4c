package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

// InvoiceRepo stores invoices.  An invoice is only ever created inside the
// transaction that creates its booking.
type InvoiceRepo struct{}

func NewInvoiceRepo() *InvoiceRepo { return &InvoiceRepo{} }

// CreateTx inserts inv and sets its ID.  A colliding invoice number yields
// ErrDuplicateNumber and leaves tx usable.
func (r *InvoiceRepo) CreateTx(ctx context.Context, tx *sql.Tx, inv *model.Invoice) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO invoices (booking_id, invoice_number, created_at) VALUES (?, ?, ?)",
		inv.BookingID, inv.InvoiceNumber, inv.CreatedAt)
	if err != nil {
		if isDuplicateKey(err, "uq_invoices_number") {
			return ErrDuplicateNumber
		}
		return err
	}
	return setID(res, &inv.ID)
}

// ReceiptRepo stores receipts.  A receipt is only ever created inside the
// transaction that records its payment.
type ReceiptRepo struct{}

func NewReceiptRepo() *ReceiptRepo { return &ReceiptRepo{} }

// CreateTx inserts rc and sets its ID.  A colliding receipt number yields
// ErrDuplicateNumber and leaves tx usable.
func (r *ReceiptRepo) CreateTx(ctx context.Context, tx *sql.Tx, rc *model.Receipt) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO receipts (booking_id, receipt_number, created_at) VALUES (?, ?, ?)",
		rc.BookingID, rc.ReceiptNumber, rc.CreatedAt)
	if err != nil {
		if isDuplicateKey(err, "uq_receipts_number") {
			return ErrDuplicateNumber
		}
		return err
	}
	return setID(res, &rc.ID)
}

// VoucherRepo stores hotel vouchers, issued on first download.
type VoucherRepo struct {
	db *sql.DB
}

func NewVoucherRepo(db *sql.DB) *VoucherRepo { return &VoucherRepo{db: db} }

// GetByBooking returns the voucher of bookingID or ErrVoucherNotFound.
// Ownership of the booking is checked by the caller.
func (r *VoucherRepo) GetByBooking(ctx context.Context, bookingID uint64) (*model.Voucher, error) {
	var v model.Voucher
	err := r.db.QueryRowContext(ctx,
		"SELECT id, booking_id, voucher_number, created_at FROM vouchers WHERE booking_id = ?",
		bookingID).Scan(&v.ID, &v.BookingID, &v.VoucherNumber, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create inserts v and sets its ID.  A colliding voucher number yields
// ErrDuplicateNumber; a second voucher for the same booking yields
// ErrVoucherExists.
func (r *VoucherRepo) Create(ctx context.Context, v *model.Voucher) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO vouchers (booking_id, voucher_number, created_at) VALUES (?, ?, ?)",
		v.BookingID, v.VoucherNumber, v.CreatedAt)
	if err != nil {
		switch {
		case isDuplicateKey(err, "uq_vouchers_number"):
			return ErrDuplicateNumber
		case isDuplicateKey(err, "uq_vouchers_booking"):
			return ErrVoucherExists
		}
		return err
	}
	return setID(res, &v.ID)
}

// ErrVoucherExists is returned when a concurrent request issued the
// booking's voucher first.
var ErrVoucherExists = errors.New("voucher already issued")

func setID(res sql.Result, id *uint64) error {
	n, err := res.LastInsertId()
	if err != nil {
		return err
	}
	*id = uint64(n)
	return nil
}
