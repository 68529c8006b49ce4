// Package view maintains a client-side picture of equipment
// availability that is reconciled against authoritative server events.
// UIs may mutate their own state speculatively, but this view only ever
// changes in response to slot_updated / booking_confirmed events or a
// resync snapshot: server state is ground truth, and anything the
// client guessed is overwritten by it.
package view

import (
	"sync"

	"github.com/agroshare/equipment-rental/internal/model"
	"github.com/agroshare/equipment-rental/internal/reservation"
)

// View tracks the availability calendars of the equipment a client is
// currently looking at.  It is safe for concurrent use by a read
// goroutine applying events and a UI goroutine querying slots.
type View struct {
	mu        sync.Mutex
	calendars map[string][]model.AvailabilityDay
	stale     map[string]struct{}
}

// New returns an empty view.
func New() *View {
	return &View{
		calendars: make(map[string][]model.AvailabilityDay),
		stale:     make(map[string]struct{}),
	}
}

// Resync replaces the local calendar of one equipment with an
// authoritative snapshot (an equipment_state event or a REST fetch) and
// clears its stale mark.
func (v *View) Resync(equipmentID string, days []model.AvailabilityDay) {
	v.mu.Lock()
	defer v.mu.Unlock()
	copied := make([]model.AvailabilityDay, len(days))
	for i, d := range days {
		copied[i] = model.AvailabilityDay{
			Date:  d.Date,
			Slots: append([]model.Slot(nil), d.Slots...),
		}
	}
	v.calendars[equipmentID] = copied
	delete(v.stale, equipmentID)
}

// ApplySlotUpdated marks the referenced slot as booked.  If the event
// names an equipment, date or slot the view does not know, the
// equipment is flagged stale so the client knows to resync rather than
// trust a partial picture.
func (v *View) ApplySlotUpdated(ev reservation.SlotUpdated) {
	v.mu.Lock()
	defer v.mu.Unlock()
	days, ok := v.calendars[ev.EquipmentID]
	if !ok {
		return // not tracking this equipment; nothing to reconcile
	}
	for i := range days {
		if days[i].Date != ev.Date {
			continue
		}
		for j := range days[i].Slots {
			if days[i].Slots[j].ID == ev.SlotID {
				days[i].Slots[j].Claimed = ev.Status == reservation.SlotStatusBooked
				return
			}
		}
	}
	v.stale[ev.EquipmentID] = struct{}{}
}

// ApplyBookingConfirmed folds the client's own winning claim into the
// view.  The slot_updated broadcast normally arrives too, so this is a
// convergence shortcut, not a second source of truth.
func (v *View) ApplyBookingConfirmed(ev reservation.BookingConfirmed) {
	v.ApplySlotUpdated(reservation.SlotUpdated{
		EquipmentID: ev.EquipmentID,
		Date:        ev.Date,
		SlotID:      ev.SlotID,
		Status:      reservation.SlotStatusBooked,
	})
}

// Slot returns a copy of the tracked slot, when known.
func (v *View) Slot(equipmentID, date, slotID string) (model.Slot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, d := range v.calendars[equipmentID] {
		if d.Date != date {
			continue
		}
		for _, s := range d.Slots {
			if s.ID == slotID {
				return s, true
			}
		}
	}
	return model.Slot{}, false
}

// NeedsResync reports whether an event referenced state this view does
// not hold, meaning the local calendar can no longer be trusted until
// the client fetches a fresh snapshot.
func (v *View) NeedsResync(equipmentID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.stale[equipmentID]
	return ok
}
