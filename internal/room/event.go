// Package room routes real-time events to the client sessions
// subscribed to a geographic scope.  The subscription table is mutated
// only by the session lifecycle (join/disconnect), never by the
// reservation path.
package room

// Event names exchanged with clients over the persistent connection.
// Inbound and outbound names share one constant block so the gateway
// and the coordinator cannot drift apart.
const (
	EventJoinRentalRoom   = "join_rental_room"
	EventRequestBooking   = "request_booking"
	EventResync           = "resync"
	EventRoomJoined       = "room_joined"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingFailed    = "booking_failed"
	EventSlotUpdated      = "slot_updated"
	EventEquipmentState   = "equipment_state"
	EventError            = "error"
)

// Event is a typed outbound message.  Data is any JSON-marshalable
// payload; the session encodes it at write time.
type Event struct {
	Name string
	Data any
}

// Subscriber is one live client session from the router's point of
// view.  Deliver must not block: delivery is best-effort per session
// and a slow or dead subscriber may simply drop the event.
type Subscriber interface {
	ID() string
	Deliver(ev Event)
}
