package model

import "time"

// Equipment is a rentable item listed by a farmer.  The listing
// directory creates the record (including its availability calendar)
// before it becomes visible to the booking core; the core only ever
// mutates slots inside the calendar, never the structural fields.
//
// Fields:
//  ID           – stable identifier assigned by the listing directory.
//  OwnerID      – user id of the listing farmer.
//  OwnerName    – display name of the owner, denormalized for bookings.
//  OwnerContact – phone/contact string handed to winning claimants.
//  Category     – machinery category (tractor, tiller, sprayer, ...).
//  PricePerHour – rental price per hour.
//  Latitude, Longitude – geographic point used by nearby search.
//  District, Village   – geographic scope; derives the routing room.
//  Availability – availability days ordered by date.
type Equipment struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"owner_id"`
	OwnerName    string            `json:"owner_name"`
	OwnerContact string            `json:"owner_contact"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Category     string            `json:"category"`
	PricePerHour float64           `json:"price_per_hour"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
	Address      string            `json:"address,omitempty"`
	District     string            `json:"district"`
	Village      string            `json:"village"`
	Images       []string          `json:"images,omitempty"`
	Availability []AvailabilityDay `json:"availability"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Room returns the routing room this equipment's events are broadcast to.
func (e *Equipment) Room() RoomKey {
	return NewRoomKey(e.District, e.Village)
}

// Day returns the availability day for the given calendar date, or nil
// when the equipment has no such day.
func (e *Equipment) Day(date string) *AvailabilityDay {
	for i := range e.Availability {
		if e.Availability[i].Date == date {
			return &e.Availability[i]
		}
	}
	return nil
}

// AvailabilityDay is one calendar date of an equipment's calendar with
// its claimable slots ordered by start time.  Slots within a day are
// non-overlapping; the listing directory validates that at creation.
type AvailabilityDay struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Slots []Slot `json:"slots"`
}

// Slot returns the slot with the given id, or nil when absent.
func (d *AvailabilityDay) Slot(id string) *Slot {
	for i := range d.Slots {
		if d.Slots[i].ID == id {
			return &d.Slots[i]
		}
	}
	return nil
}

// Slot is an atomic claimable time interval within a day.  A slot
// transitions unclaimed -> claimed exactly once; there is no unclaim
// operation in this core.
type Slot struct {
	ID        string     `json:"id"`
	StartTime string     `json:"start_time"` // HH:MM
	EndTime   string     `json:"end_time"`   // HH:MM
	Claimed   bool       `json:"is_booked"`
	Claimant  *Claimant  `json:"booked_by,omitempty"`
	ClaimedAt *time.Time `json:"booked_at,omitempty"`
}

// Claimant identifies the user a slot was claimed for.  Identity is
// supplied by the auth collaborator and trusted as given.
type Claimant struct {
	UserID  string `json:"user_id"`
	Name    string `json:"user_name"`
	Contact string `json:"user_contact"`
}
