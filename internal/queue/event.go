// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a slot claim wins.  It carries
// enough denormalized data for downstream consumers (owner notification,
// analytics) to act without querying the primary store.
type BookingConfirmedEvent struct {
	BookingID     string `json:"booking_id"`
	EquipmentID   string `json:"equipment_id"`
	EquipmentName string `json:"equipment_name"`
	Date          string `json:"date"`
	SlotID        string `json:"slot_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	UserContact   string `json:"user_contact"`
	OwnerName     string `json:"owner_name"`
	OwnerContact  string `json:"owner_contact"`
	District      string `json:"district"`
	Village       string `json:"village"`
	ConfirmedAt   string `json:"confirmed_at"`
}
