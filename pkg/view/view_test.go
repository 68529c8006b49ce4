package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroshare/equipment-rental/internal/model"
	"github.com/agroshare/equipment-rental/internal/reservation"
)

func calendar() []model.AvailabilityDay {
	return []model.AvailabilityDay{
		{
			Date: "2024-05-10",
			Slots: []model.Slot{
				{ID: "S1", StartTime: "09:00", EndTime: "10:00"},
				{ID: "S2", StartTime: "10:00", EndTime: "11:00"},
			},
		},
	}
}

func TestResyncAndLookup(t *testing.T) {
	v := New()
	v.Resync("E1", calendar())

	s, ok := v.Slot("E1", "2024-05-10", "S1")
	require.True(t, ok)
	assert.False(t, s.Claimed)

	_, ok = v.Slot("E1", "2024-05-10", "S9")
	assert.False(t, ok)
	_, ok = v.Slot("E9", "2024-05-10", "S1")
	assert.False(t, ok)
}

func TestApplySlotUpdatedMarksBooked(t *testing.T) {
	v := New()
	v.Resync("E1", calendar())

	v.ApplySlotUpdated(reservation.SlotUpdated{
		EquipmentID: "E1",
		Date:        "2024-05-10",
		SlotID:      "S1",
		Status:      reservation.SlotStatusBooked,
	})

	s, ok := v.Slot("E1", "2024-05-10", "S1")
	require.True(t, ok)
	assert.True(t, s.Claimed)

	// Sibling slot untouched.
	s, ok = v.Slot("E1", "2024-05-10", "S2")
	require.True(t, ok)
	assert.False(t, s.Claimed)
	assert.False(t, v.NeedsResync("E1"))
}

func TestApplyBookingConfirmedMarksBooked(t *testing.T) {
	v := New()
	v.Resync("E1", calendar())

	v.ApplyBookingConfirmed(reservation.BookingConfirmed{
		EquipmentID: "E1",
		Date:        "2024-05-10",
		SlotID:      "S2",
	})

	s, ok := v.Slot("E1", "2024-05-10", "S2")
	require.True(t, ok)
	assert.True(t, s.Claimed)
}

func TestUnknownSlotFlagsResync(t *testing.T) {
	v := New()
	v.Resync("E1", calendar())

	// An event for a slot this view has never seen means the local
	// calendar is stale.
	v.ApplySlotUpdated(reservation.SlotUpdated{
		EquipmentID: "E1",
		Date:        "2024-05-10",
		SlotID:      "S9",
		Status:      reservation.SlotStatusBooked,
	})
	assert.True(t, v.NeedsResync("E1"))

	// A fresh snapshot clears the flag.
	v.Resync("E1", calendar())
	assert.False(t, v.NeedsResync("E1"))
}

func TestUntrackedEquipmentIsIgnored(t *testing.T) {
	v := New()
	v.Resync("E1", calendar())

	v.ApplySlotUpdated(reservation.SlotUpdated{
		EquipmentID: "E9",
		Date:        "2024-05-10",
		SlotID:      "S1",
		Status:      reservation.SlotStatusBooked,
	})
	assert.False(t, v.NeedsResync("E9"))
	_, ok := v.Slot("E9", "2024-05-10", "S1")
	assert.False(t, ok)
}

func TestResyncIsDefensiveCopy(t *testing.T) {
	v := New()
	days := calendar()
	v.Resync("E1", days)

	days[0].Slots[0].Claimed = true

	s, ok := v.Slot("E1", "2024-05-10", "S1")
	require.True(t, ok)
	assert.False(t, s.Claimed)
}
