package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking.  The set is closed:
// PENDING and PAID are reachable through the workflows, CANCELLED is a
// recognised value (documents render it) that no workflow sets.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingPaid      BookingStatus = "PAID"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingPaid, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking in state s may move to next.
// The only realised transition is PENDING -> PAID.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingPending && next == BookingPaid
}

// Booking records a hotel stay arranged by an operator for one of their
// clients.  Client and hotel must belong to the same operator as the
// booking itself.
//
// Fields:
//  ID              – primary key identifier.
//  OwnerID         – operator that created the booking.
//  ClientID        – booked client.
//  HotelID         – booked hotel.
//  CheckIn         – arrival date.
//  CheckOut        – departure date.
//  Rooms           – number of rooms.
//  TotalAmount     – stored total (sum of line items when they are given).
//  Status          – PENDING, PAID or CANCELLED.
//  Ref             – optional operator reference code.
//  Notes           – optional free-form notes.
//  MealPlan        – optional meal plan printed on the voucher.
//  SpecialRequests – optional requests printed on the voucher.
//  LastPaymentDate – optional payment deadline printed on the invoice.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64          `json:"id"`                        // bookings.id
	OwnerID         uint64          `json:"ownerId"`                   // bookings.owner_id
	ClientID        uint64          `json:"clientId"`                  // bookings.client_id
	HotelID         uint64          `json:"hotelId"`                   // bookings.hotel_id
	CheckIn         time.Time       `json:"checkIn"`                   // bookings.check_in
	CheckOut        time.Time       `json:"checkOut"`                  // bookings.check_out
	Rooms           int             `json:"rooms"`                     // bookings.rooms
	TotalAmount     decimal.Decimal `json:"totalAmount"`               // bookings.total_amount
	Status          BookingStatus   `json:"status"`                    // bookings.status
	Ref             string          `json:"ref,omitempty"`             // bookings.ref (nullable)
	Notes           string          `json:"notes,omitempty"`           // bookings.notes (nullable)
	MealPlan        string          `json:"mealPlan,omitempty"`        // bookings.meal_plan (nullable)
	SpecialRequests string          `json:"specialRequests,omitempty"` // bookings.special_requests (nullable)
	LastPaymentDate *time.Time      `json:"lastPaymentDate,omitempty"` // bookings.last_payment_date (nullable)
	CreatedAt       time.Time       `json:"createdAt"`                 // bookings.created_at
	UpdatedAt       time.Time       `json:"updatedAt"`                 // bookings.updated_at
	Items           []LineItem      `json:"items"`                     // booking_items rows
}

// LineItem is one billable row of a booking.  Rows keep the order in
// which they were submitted.
type LineItem struct {
	ID         uint64          `json:"id"`         // booking_items.id
	BookingID  uint64          `json:"bookingId"`  // booking_items.booking_id
	Position   int             `json:"position"`   // booking_items.position
	Date       *time.Time      `json:"date"`       // booking_items.service_date (nullable)
	Service    string          `json:"service"`    // booking_items.service
	Pax        int             `json:"pax"`        // booking_items.pax
	CostPerPax decimal.Decimal `json:"costPP"`     // booking_items.cost_pp
	Amount     decimal.Decimal `json:"amount"`     // booking_items.amount
}

// BookingDetail is a booking with its client, hotel and dependent
// documents loaded.  It is the input of the document renderer and the
// shape returned by the booking read endpoints.
type BookingDetail struct {
	Booking
	Client  Client   `json:"client"`
	Hotel   Hotel    `json:"hotel"`
	Invoice *Invoice `json:"invoice"`
	Payment *Payment `json:"payment"`
	Receipt *Receipt `json:"receipt"`
	Voucher *Voucher `json:"voucher"`
}
