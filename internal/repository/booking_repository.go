package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

// BookingRepo provides access to bookings and their line items.  Reads
// return the booking together with its client, hotel and dependent
// documents so that a single query feeds both the JSON endpoints and the
// document renderer.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `b.id, b.owner_id, b.client_id, b.hotel_id, b.check_in, b.check_out,
       b.rooms, b.total_amount, b.status, b.ref, b.notes, b.meal_plan,
       b.special_requests, b.last_payment_date, b.created_at, b.updated_at`

const bookingDetailQuery = `SELECT ` + bookingColumns + `,
       c.id, c.owner_id, c.name, c.company, c.email, c.phone, c.country, c.created_at,
       h.id, h.owner_id, h.name, h.location, h.email, h.phone, h.mpesa_number, h.bank_details, h.created_at,
       i.id, i.invoice_number, i.created_at,
       p.id, p.amount, p.method, p.transaction_id, p.created_at,
       r.id, r.receipt_number, r.created_at,
       v.id, v.voucher_number, v.created_at
  FROM bookings b
  JOIN clients c ON c.id = b.client_id
  JOIN hotels h ON h.id = b.hotel_id
  LEFT JOIN invoices i ON i.booking_id = b.id
  LEFT JOIN payments p ON p.booking_id = b.id
  LEFT JOIN receipts r ON r.booking_id = b.id
  LEFT JOIN vouchers v ON v.booking_id = b.id`

const itemColumns = "id, booking_id, position, service_date, service, pax, cost_pp, amount"

// CreateTx inserts b within tx and sets its ID.  Status, CreatedAt and
// UpdatedAt must already be set.  Line items are inserted separately with
// CreateItemsTx.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (owner_id, client_id, hotel_id, check_in, check_out, rooms,
	                                 total_amount, status, ref, notes, meal_plan, special_requests,
	                                 last_payment_date, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.OwnerID, b.ClientID, b.HotelID, b.CheckIn, b.CheckOut, b.Rooms,
		b.TotalAmount, string(b.Status), nullString(b.Ref), nullString(b.Notes),
		nullString(b.MealPlan), nullString(b.SpecialRequests), nullTime(b.LastPaymentDate),
		b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreateItemsTx inserts all items of booking bookingID in one statement,
// numbering them in slice order.  IDs, BookingID and Position are set on
// the passed items.  Passing an empty slice has no effect.
func (r *BookingRepo) CreateItemsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, items []model.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO booking_items (booking_id, position, service_date, service, pax, cost_pp, amount) VALUES `
	args := make([]interface{}, 0, len(items)*7)
	for i := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		items[i].BookingID = bookingID
		items[i].Position = i + 1
		it := items[i]
		args = append(args, bookingID, it.Position, nullTime(it.Date), it.Service, it.Pax, it.CostPerPax, it.Amount)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	// A multi-row INSERT reports the first generated id and InnoDB assigns
	// consecutive ids to the rows of a single simple insert.
	first, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i := range items {
		items[i].ID = uint64(first) + uint64(i)
	}
	return nil
}

// GetByIDAndOwnerTx loads the bare booking row inside tx.  A booking owned
// by another operator yields ErrBookingNotFound.
func (r *BookingRepo) GetByIDAndOwnerTx(ctx context.Context, tx *sql.Tx, id, ownerID uint64) (*model.Booking, error) {
	q := "SELECT " + bookingColumns + " FROM bookings b WHERE b.id = ? AND b.owner_id = ?"
	var bs bookingScan
	if err := tx.QueryRowContext(ctx, q, id, ownerID).Scan(bs.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	b := bs.booking()
	return &b, nil
}

// UpdateStatusTx sets the status of booking id.  The caller has already
// verified ownership inside the same transaction.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus, at time.Time) error {
	res, err := tx.ExecContext(ctx, "UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?", string(status), at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ListDetailsByOwner returns every booking of ownerID, newest first, with
// client, hotel, line items and documents loaded.
func (r *BookingRepo) ListDetailsByOwner(ctx context.Context, ownerID uint64) ([]model.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, bookingDetailQuery+`
 WHERE b.owner_id = ?
 ORDER BY b.created_at DESC, b.id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BookingDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDetailByIDAndOwner returns one fully loaded booking.  A booking owned
// by another operator yields ErrBookingNotFound.
func (r *BookingRepo) GetDetailByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.BookingDetail, error) {
	row := r.db.QueryRowContext(ctx, bookingDetailQuery+`
 WHERE b.id = ? AND b.owner_id = ?`, id, ownerID)
	d, err := scanDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	one := []model.BookingDetail{*d}
	if err := r.attachItems(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// attachItems loads the line items of all given bookings with one query.
func (r *BookingRepo) attachItems(ctx context.Context, details []model.BookingDetail) error {
	if len(details) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(details))
	args := make([]interface{}, 0, len(details))
	for i, d := range details {
		index[d.ID] = i
		args = append(args, d.ID)
	}
	q := "SELECT " + itemColumns + " FROM booking_items WHERE booking_id IN (" + placeholders(len(args)) + ") ORDER BY booking_id, position"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it   model.LineItem
			date sql.NullTime
		)
		if err := rows.Scan(&it.ID, &it.BookingID, &it.Position, &date, &it.Service, &it.Pax, &it.CostPerPax, &it.Amount); err != nil {
			return err
		}
		it.Date = timePtr(date)
		if i, ok := index[it.BookingID]; ok {
			details[i].Items = append(details[i].Items, it)
		}
	}
	return rows.Err()
}

func scanDetail(s rowScanner) (*model.BookingDetail, error) {
	var (
		bs             bookingScan
		cs             clientScan
		hs             hotelScan
		inv, rcpt, vch docScan
		pay            paymentScan
	)
	dest := append(bs.dest(), cs.dest()...)
	dest = append(dest, hs.dest()...)
	dest = append(dest, inv.dest()...)
	dest = append(dest, pay.dest()...)
	dest = append(dest, rcpt.dest()...)
	dest = append(dest, vch.dest()...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	d := &model.BookingDetail{
		Booking: bs.booking(),
		Client:  cs.client(),
		Hotel:   hs.hotel(),
		Payment: pay.payment(bs.b.ID),
	}
	if inv.present() {
		d.Invoice = &model.Invoice{ID: uint64(inv.id.Int64), BookingID: d.ID, InvoiceNumber: inv.number.String, CreatedAt: inv.created.Time}
	}
	if rcpt.present() {
		d.Receipt = &model.Receipt{ID: uint64(rcpt.id.Int64), BookingID: d.ID, ReceiptNumber: rcpt.number.String, CreatedAt: rcpt.created.Time}
	}
	if vch.present() {
		d.Voucher = &model.Voucher{ID: uint64(vch.id.Int64), BookingID: d.ID, VoucherNumber: vch.number.String, CreatedAt: vch.created.Time}
	}
	return d, nil
}
