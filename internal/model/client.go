package model

import "time"

// Client represents a traveller (or the company booking on their behalf)
// recorded by an operator.  Clients are owned by exactly one operator
// account and are never shared between accounts.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user ID of the operator that recorded the client.
//  Name      – required display name.
//  Company   – optional company name.
//  Email     – optional contact email.
//  Phone     – optional contact phone.
//  Country   – optional country of residence.
//  CreatedAt – creation timestamp.
type Client struct {
	ID        uint64    `json:"id"`        // clients.id
	OwnerID   uint64    `json:"ownerId"`   // clients.owner_id
	Name      string    `json:"name"`      // clients.name
	Company   string    `json:"company"`   // clients.company (nullable)
	Email     string    `json:"email"`     // clients.email (nullable)
	Phone     string    `json:"phone"`     // clients.phone (nullable)
	Country   string    `json:"country"`   // clients.country (nullable)
	CreatedAt time.Time `json:"createdAt"` // clients.created_at
}
