package repository

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// The *Scan types hold the scan destinations for one entity so that a
// joined row can be split back into its parts.  Column order matches the
// corresponding *Columns constant.

type clientScan struct {
	c                              model.Client
	company, email, phone, country sql.NullString
}

func (s *clientScan) dest() []any {
	return []any{&s.c.ID, &s.c.OwnerID, &s.c.Name, &s.company, &s.email, &s.phone, &s.country, &s.c.CreatedAt}
}

func (s *clientScan) client() model.Client {
	c := s.c
	c.Company, c.Email, c.Phone, c.Country = s.company.String, s.email.String, s.phone.String, s.country.String
	return c
}

type hotelScan struct {
	h                                   model.Hotel
	location, email, phone, mpesa, bank sql.NullString
}

func (s *hotelScan) dest() []any {
	return []any{&s.h.ID, &s.h.OwnerID, &s.h.Name, &s.location, &s.email, &s.phone, &s.mpesa, &s.bank, &s.h.CreatedAt}
}

func (s *hotelScan) hotel() model.Hotel {
	h := s.h
	h.Location, h.Email, h.Phone = s.location.String, s.email.String, s.phone.String
	h.MpesaNumber, h.BankDetails = s.mpesa.String, s.bank.String
	return h
}

type bookingScan struct {
	b                                 model.Booking
	ref, notes, mealPlan, specialReqs sql.NullString
	lastPaymentDate                   sql.NullTime
}

func (s *bookingScan) dest() []any {
	return []any{
		&s.b.ID, &s.b.OwnerID, &s.b.ClientID, &s.b.HotelID, &s.b.CheckIn, &s.b.CheckOut,
		&s.b.Rooms, &s.b.TotalAmount, &s.b.Status, &s.ref, &s.notes, &s.mealPlan,
		&s.specialReqs, &s.lastPaymentDate, &s.b.CreatedAt, &s.b.UpdatedAt,
	}
}

func (s *bookingScan) booking() model.Booking {
	b := s.b
	b.Ref, b.Notes, b.MealPlan, b.SpecialRequests = s.ref.String, s.notes.String, s.mealPlan.String, s.specialReqs.String
	b.LastPaymentDate = timePtr(s.lastPaymentDate)
	b.Items = []model.LineItem{}
	return b
}

// docScan reads the (id, number, created_at) triple of an optional
// invoice, receipt or voucher from a LEFT JOIN.
type docScan struct {
	id      sql.NullInt64
	number  sql.NullString
	created sql.NullTime
}

func (s *docScan) dest() []any { return []any{&s.id, &s.number, &s.created} }

func (s *docScan) present() bool { return s.id.Valid }

type paymentScan struct {
	id            sql.NullInt64
	amount        decimal.NullDecimal
	method        sql.NullString
	transactionID sql.NullString
	created       sql.NullTime
}

func (s *paymentScan) dest() []any {
	return []any{&s.id, &s.amount, &s.method, &s.transactionID, &s.created}
}

func (s *paymentScan) payment(bookingID uint64) *model.Payment {
	if !s.id.Valid {
		return nil
	}
	return &model.Payment{
		ID:            uint64(s.id.Int64),
		BookingID:     bookingID,
		Amount:        s.amount.Decimal,
		Method:        model.PaymentMethod(s.method.String),
		TransactionID: s.transactionID.String,
		CreatedAt:     s.created.Time,
	}
}
