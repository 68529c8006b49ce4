package model

import "time"

// Booking is the denormalized record materialized as the side effect of
// a successful claim.  It exists for the "my bookings" / "my listings"
// read views and sits outside the concurrency-critical path; the slot
// inside the equipment calendar remains the source of truth.
type Booking struct {
	ID            string    `json:"id"`
	EquipmentID   string    `json:"equipment_id"`
	EquipmentName string    `json:"equipment_name"`
	Date          string    `json:"date"`
	SlotID        string    `json:"slot_id"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserContact   string    `json:"user_contact"`
	OwnerName     string    `json:"owner_name"`
	OwnerContact  string    `json:"owner_contact"`
	CreatedAt     time.Time `json:"created_at"`
}
