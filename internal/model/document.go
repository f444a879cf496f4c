package model

import "time"

// Invoice is created together with its booking and never on its own.
type Invoice struct {
	ID            uint64    `json:"id"`            // invoices.id
	BookingID     uint64    `json:"bookingId"`     // invoices.booking_id
	InvoiceNumber string    `json:"invoiceNumber"` // invoices.invoice_number
	CreatedAt     time.Time `json:"createdAt"`     // invoices.created_at
}

// Receipt is created together with the payment of a booking.
type Receipt struct {
	ID            uint64    `json:"id"`            // receipts.id
	BookingID     uint64    `json:"bookingId"`     // receipts.booking_id
	ReceiptNumber string    `json:"receiptNumber"` // receipts.receipt_number
	CreatedAt     time.Time `json:"createdAt"`     // receipts.created_at
}

// Voucher is issued the first time a booking's hotel voucher is
// downloaded.  Later downloads reuse the same number.
type Voucher struct {
	ID            uint64    `json:"id"`            // vouchers.id
	BookingID     uint64    `json:"bookingId"`     // vouchers.booking_id
	VoucherNumber string    `json:"voucherNumber"` // vouchers.voucher_number
	CreatedAt     time.Time `json:"createdAt"`     // vouchers.created_at
}
