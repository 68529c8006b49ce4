package reservation

// BookingRequest is the inbound claim payload.  All fields are
// required; identity fields come from the auth collaborator and are
// trusted as given.
type BookingRequest struct {
	EquipmentID string `json:"equipment_id"`
	Date        string `json:"date"` // YYYY-MM-DD
	SlotID      string `json:"slot_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	UserContact string `json:"user_contact"`
}

// Failure reason codes surfaced in booking_failed events.  Clients use
// them to distinguish "someone else booked this" from a malformed
// request or a transient fault worth retrying.
const (
	ReasonAlreadyBooked     = "already_booked"
	ReasonEquipmentNotFound = "equipment_not_found"
	ReasonSlotNotFound      = "slot_not_found"
	ReasonInvalidRequest    = "invalid_request"
	ReasonTimeout           = "timeout"
	ReasonStoreUnavailable  = "store_unavailable"
)

// BookingConfirmed is delivered only to the winning requester.  It is
// the one payload that carries the owner's contact details.
type BookingConfirmed struct {
	Message       string `json:"message"`
	BookingID     string `json:"booking_id"`
	EquipmentID   string `json:"equipment_id"`
	EquipmentName string `json:"equipment_name"`
	Date          string `json:"date"`
	SlotID        string `json:"slot_id"`
	OwnerName     string `json:"owner_name"`
	OwnerContact  string `json:"owner_contact"`
}

// BookingFailed is delivered only to the requester whose claim did not
// succeed.
type BookingFailed struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// SlotUpdated is broadcast to every session in the equipment's room.
// It carries only the new claimed status, never personal data.
type SlotUpdated struct {
	EquipmentID string `json:"equipment_id"`
	Date        string `json:"date"`
	SlotID      string `json:"slot_id"`
	Status      string `json:"status"`
}

// SlotStatusBooked is the only status a slot ever transitions to.
const SlotStatusBooked = "booked"
