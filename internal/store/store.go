// Package store holds the canonical availability state of every
// equipment listing and applies all slot mutations.  TryClaim is the
// single mutating entry point; it is linearizable per slot, so two
// concurrent claims for the same (equipment, date, slot) yield exactly
// one Claimed outcome and the rest AlreadyClaimed.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agroshare/equipment-rental/internal/model"
)

// ErrEquipmentNotFound is returned by read operations when the
// requested equipment is not registered with the store.
var ErrEquipmentNotFound = errors.New("equipment not found")

// Outcome classifies the result of a claim attempt.  AlreadyClaimed is
// a normal, expected race outcome and not a system error; losing
// callers get a definitive answer, never a transient one.
type Outcome int

const (
	Claimed Outcome = iota
	AlreadyClaimed
	SlotNotFound
	EquipmentNotFound
	Unavailable // persistence failed; the claim was rolled back
)

// Result carries the outcome of TryClaim together with the data the
// coordinator needs to build events: a copy of the slot as it now
// stands, the materialized booking on success, and the equipment's
// denormalized fields (owner contact, room scope).
type Result struct {
	Outcome       Outcome
	Slot          model.Slot
	Booking       *model.Booking
	EquipmentName string
	OwnerName     string
	OwnerContact  string
	Room          model.RoomKey
}

// BookingPersister persists the booking materialized by a successful
// claim.  It is called inside the claim's critical section so the slot
// flip and the booking write commit or fail together.
type BookingPersister interface {
	SaveBooking(ctx context.Context, b model.Booking) error
}

// entry pairs an equipment record with the mutex serializing all
// mutation of its calendar.  Unrelated equipment items claim fully in
// parallel.
type entry struct {
	mu sync.RWMutex
	eq *model.Equipment
}

// Store is the single writer of slot and booking state.  Equipment
// records enter via Register (fed by the listing directory) and are
// never structurally modified here.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	persist BookingPersister
	now     func() time.Time
}

// New returns an empty store.  persist may be nil, in which case
// bookings are kept only on the slot itself (useful in tests and for
// pure in-memory deployments).
func New(persist BookingPersister) *Store {
	return &Store{
		entries: make(map[string]*entry),
		persist: persist,
		now:     time.Now,
	}
}

// Register makes an equipment visible to the booking core.  The
// availability payload must already satisfy the listing directory's
// invariants (non-overlapping slots, unique dates); the store does not
// re-validate it.  Registering an existing id replaces the record.
func (s *Store) Register(eq *model.Equipment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[eq.ID] = &entry{eq: eq}
}

// Remove drops an equipment from the store, e.g. when the owner
// deletes the listing.  Removing an unknown id is a no-op.
func (s *Store) Remove(equipmentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, equipmentID)
}

func (s *Store) lookup(equipmentID string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[equipmentID]
	return e, ok
}

// GetEquipment returns a deep copy of the equipment record so callers
// can read it without racing the claim path.
func (s *Store) GetEquipment(equipmentID string) (model.Equipment, error) {
	e, ok := s.lookup(equipmentID)
	if !ok {
		return model.Equipment{}, ErrEquipmentNotFound
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copyEquipment(e.eq), nil
}

// Snapshot returns a copy of the equipment's availability calendar.
// It backs the resync operation: clients reconcile their local view
// against this authoritative state after a reconnect.
func (s *Store) Snapshot(equipmentID string) ([]model.AvailabilityDay, error) {
	e, ok := s.lookup(equipmentID)
	if !ok {
		return nil, ErrEquipmentNotFound
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copyAvailability(e.eq.Availability), nil
}

// TryClaim atomically transitions a slot from unclaimed to claimed on
// behalf of claimant.  On success it stamps the claimant and claim
// time, materializes a Booking and persists it before releasing the
// critical section; a persister failure rolls the slot back and
// reports Unavailable so the caller can retry safely.
func (s *Store) TryClaim(ctx context.Context, equipmentID, date, slotID string, claimant model.Claimant) Result {
	e, ok := s.lookup(equipmentID)
	if !ok {
		return Result{Outcome: EquipmentNotFound}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{
		EquipmentName: e.eq.Name,
		OwnerName:     e.eq.OwnerName,
		OwnerContact:  e.eq.OwnerContact,
		Room:          e.eq.Room(),
	}

	day := e.eq.Day(date)
	if day == nil {
		res.Outcome = SlotNotFound
		return res
	}
	slot := day.Slot(slotID)
	if slot == nil {
		res.Outcome = SlotNotFound
		return res
	}
	if slot.Claimed {
		res.Outcome = AlreadyClaimed
		res.Slot = *slot
		return res
	}

	now := s.now().UTC()
	who := claimant
	slot.Claimed = true
	slot.Claimant = &who
	slot.ClaimedAt = &now

	booking := model.Booking{
		ID:            uuid.NewString(),
		EquipmentID:   e.eq.ID,
		EquipmentName: e.eq.Name,
		Date:          date,
		SlotID:        slot.ID,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		UserID:        claimant.UserID,
		UserName:      claimant.Name,
		UserContact:   claimant.Contact,
		OwnerName:     e.eq.OwnerName,
		OwnerContact:  e.eq.OwnerContact,
		CreatedAt:     now,
	}

	if s.persist != nil {
		if err := s.persist.SaveBooking(ctx, booking); err != nil {
			slot.Claimed = false
			slot.Claimant = nil
			slot.ClaimedAt = nil
			res.Outcome = Unavailable
			return res
		}
	}

	res.Outcome = Claimed
	res.Slot = *slot
	res.Booking = &booking
	return res
}

func copyEquipment(eq *model.Equipment) model.Equipment {
	out := *eq
	out.Images = append([]string(nil), eq.Images...)
	out.Availability = copyAvailability(eq.Availability)
	return out
}

func copyAvailability(days []model.AvailabilityDay) []model.AvailabilityDay {
	out := make([]model.AvailabilityDay, len(days))
	for i, d := range days {
		out[i] = model.AvailabilityDay{
			Date:  d.Date,
			Slots: append([]model.Slot(nil), d.Slots...),
		}
	}
	return out
}
