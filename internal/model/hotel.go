package model

import "time"

// Hotel is a property an operator books rooms with.  Payment details are
// kept so that the operator can settle with the hotel directly.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user ID of the operator that recorded the hotel.
//  Name        – required hotel name.
//  Location    – optional free-form location.
//  Email       – optional reservations email.
//  Phone       – optional phone number.
//  MpesaNumber – optional mobile-money number.
//  BankDetails – optional bank details.
//  CreatedAt   – creation timestamp.
type Hotel struct {
	ID          uint64    `json:"id"`          // hotels.id
	OwnerID     uint64    `json:"ownerId"`     // hotels.owner_id
	Name        string    `json:"name"`        // hotels.name
	Location    string    `json:"location"`    // hotels.location (nullable)
	Email       string    `json:"email"`       // hotels.email (nullable)
	Phone       string    `json:"phone"`       // hotels.phone (nullable)
	MpesaNumber string    `json:"mpesaNumber"` // hotels.mpesa_number (nullable)
	BankDetails string    `json:"bankDetails"` // hotels.bank_details (nullable)
	CreatedAt   time.Time `json:"createdAt"`   // hotels.created_at
}
