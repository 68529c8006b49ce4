// Package reservation orchestrates slot claims: it validates requests,
// drives the slot store and turns outcomes into client-visible events.
// For any slot, at most one booking_confirmed is ever produced
// system-wide; that is the core correctness property of the subsystem.
package reservation

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/agroshare/equipment-rental/internal/model"
	"github.com/agroshare/equipment-rental/internal/queue"
	"github.com/agroshare/equipment-rental/internal/room"
	"github.com/agroshare/equipment-rental/internal/store"
)

// DefaultClaimTimeout bounds how long a claim may wait for its
// equipment's turn before failing with a timeout reason.
const DefaultClaimTimeout = 2 * time.Second

// Notifier pushes a confirmed booking to the message broker.  Failures
// are ignored by the coordinator: the booking decision is already made
// and broadcast by the time the notifier runs.
type Notifier func(ctx context.Context, ev queue.BookingConfirmedEvent) error

// Coordinator serializes competing claims per equipment and emits the
// resulting events.  Claims on the same equipment are processed one at
// a time, which also fixes the order in which subscribers observe
// slot_updated events for that equipment; unrelated equipment proceeds
// in parallel.
type Coordinator struct {
	store        *store.Store
	router       *room.Router
	notify       Notifier
	claimTimeout time.Duration

	mu    sync.Mutex
	locks map[string]chan struct{} // per-equipment turn tokens, capacity 1
}

// NewCoordinator wires a coordinator to the authoritative store and the
// room router.  notify may be nil to disable broker publishing.
func NewCoordinator(st *store.Store, router *room.Router, notify Notifier) *Coordinator {
	return &Coordinator{
		store:        st,
		router:       router,
		notify:       notify,
		claimTimeout: DefaultClaimTimeout,
		locks:        make(map[string]chan struct{}),
	}
}

// SetClaimTimeout overrides the bounded lock wait, mainly for tests.
func (c *Coordinator) SetClaimTimeout(d time.Duration) { c.claimTimeout = d }

// lockFor returns the turn token channel for an equipment, creating it
// on first use.  A token in the channel means the section is free.
func (c *Coordinator) lockFor(equipmentID string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[equipmentID]
	if !ok {
		l = make(chan struct{}, 1)
		l <- struct{}{}
		c.locks[equipmentID] = l
	}
	return l
}

// HandleBooking runs one claim end to end and guarantees the requester
// receives exactly one of booking_confirmed / booking_failed, whether
// or not they are subscribed to the equipment's room.  The broadcast
// slot_updated is published while the equipment's turn is still held,
// so per-equipment event order matches claim order at every subscriber.
//
// ctx should not be tied to the requester's connection: a claim already
// accepted must resolve even if the requester disconnects mid-flight.
func (c *Coordinator) HandleBooking(ctx context.Context, req BookingRequest, requester room.Subscriber) {
	if msg := validate(req); msg != "" {
		requester.Deliver(room.Event{Name: room.EventBookingFailed, Data: BookingFailed{
			Message: msg,
			Reason:  ReasonInvalidRequest,
		}})
		return
	}

	lock := c.lockFor(req.EquipmentID)
	timer := time.NewTimer(c.claimTimeout)
	defer timer.Stop()
	select {
	case <-lock:
		defer func() { lock <- struct{}{} }()
	case <-timer.C:
		requester.Deliver(room.Event{Name: room.EventBookingFailed, Data: BookingFailed{
			Message: "Booking could not be processed in time. Please try again.",
			Reason:  ReasonTimeout,
		}})
		return
	case <-ctx.Done():
		requester.Deliver(room.Event{Name: room.EventBookingFailed, Data: BookingFailed{
			Message: "Booking could not be processed in time. Please try again.",
			Reason:  ReasonTimeout,
		}})
		return
	}

	claimant := model.Claimant{UserID: req.UserID, Name: req.UserName, Contact: req.UserContact}
	res := c.store.TryClaim(ctx, req.EquipmentID, req.Date, req.SlotID, claimant)

	switch res.Outcome {
	case store.Claimed:
		requester.Deliver(room.Event{Name: room.EventBookingConfirmed, Data: BookingConfirmed{
			Message:       "Booking confirmed!",
			BookingID:     res.Booking.ID,
			EquipmentID:   req.EquipmentID,
			EquipmentName: res.EquipmentName,
			Date:          req.Date,
			SlotID:        req.SlotID,
			OwnerName:     res.OwnerName,
			OwnerContact:  res.OwnerContact,
		}})
		// Broadcast to the whole room, requester included, so every
		// client converges through the same slot_updated path.
		c.router.Publish(res.Room, room.Event{Name: room.EventSlotUpdated, Data: SlotUpdated{
			EquipmentID: req.EquipmentID,
			Date:        req.Date,
			SlotID:      req.SlotID,
			Status:      SlotStatusBooked,
		}})
		c.publishConfirmed(res)

	case store.AlreadyClaimed:
		requester.Deliver(room.Event{Name: room.EventBookingFailed, Data: BookingFailed{
			Message: "Slot already booked or unavailable.",
			Reason:  ReasonAlreadyBooked,
		}})

	case store.EquipmentNotFound:
		requester.Deliver(room.Event{Name: room.EventBookingFailed, Data: BookingFailed{
			Message: "Equipment not found.",
			Reason:  ReasonEquipmentNotFound,
		}})

	case store.SlotNotFound:
		requester.Deliver(room.Event{Name: room.EventBookingFailed, Data: BookingFailed{
			Message: "Requested slot does not exist for that date.",
			Reason:  ReasonSlotNotFound,
		}})

	case store.Unavailable:
		requester.Deliver(room.Event{Name: room.EventBookingFailed, Data: BookingFailed{
			Message: "Booking store unavailable. Please try again.",
			Reason:  ReasonStoreUnavailable,
		}})
	}
}

// publishConfirmed hands the booking to the broker without blocking the
// reservation path.
func (c *Coordinator) publishConfirmed(res store.Result) {
	if c.notify == nil || res.Booking == nil {
		return
	}
	b := *res.Booking
	district, village := res.Room.District, res.Room.Village
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := c.notify(ctx, queue.BookingConfirmedEvent{
			BookingID:     b.ID,
			EquipmentID:   b.EquipmentID,
			EquipmentName: b.EquipmentName,
			Date:          b.Date,
			SlotID:        b.SlotID,
			StartTime:     b.StartTime,
			EndTime:       b.EndTime,
			UserID:        b.UserID,
			UserName:      b.UserName,
			UserContact:   b.UserContact,
			OwnerName:     b.OwnerName,
			OwnerContact:  b.OwnerContact,
			District:      district,
			Village:       village,
			ConfirmedAt:   b.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			log.Printf("reservation: broker publish failed for booking %s: %v", b.ID, err)
		}
	}()
}

// validate checks the shape of a booking request.  It returns an empty
// string when the request is well-formed, otherwise a user-facing
// message naming the first missing field.
func validate(req BookingRequest) string {
	switch {
	case req.EquipmentID == "":
		return "equipment_id is required"
	case req.Date == "":
		return "date is required"
	case req.SlotID == "":
		return "slot_id is required"
	case req.UserID == "":
		return "user_id is required"
	case req.UserName == "":
		return "user_name is required"
	case req.UserContact == "":
		return "user_contact is required"
	}
	return ""
}
