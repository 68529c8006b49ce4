package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroshare/equipment-rental/internal/model"
)

func testEquipment() *model.Equipment {
	return &model.Equipment{
		ID:           "E1",
		OwnerID:      "owner-1",
		OwnerName:    "Raman",
		OwnerContact: "+91-900000001",
		Name:         "Power Tiller",
		Category:     "tiller",
		District:     "Palakkad",
		Village:      "Melarkode",
		Availability: []model.AvailabilityDay{
			{
				Date: "2024-05-10",
				Slots: []model.Slot{
					{ID: "S1", StartTime: "09:00", EndTime: "10:00"},
					{ID: "S2", StartTime: "10:00", EndTime: "11:00"},
				},
			},
		},
	}
}

func claimantN(n string) model.Claimant {
	return model.Claimant{UserID: "user-" + n, Name: "User " + n, Contact: "+91-1" + n}
}

func TestTryClaimAtMostOneWinner(t *testing.T) {
	s := New(nil)
	s.Register(testEquipment())

	const n = 32
	results := make([]Result, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = s.TryClaim(context.Background(), "E1", "2024-05-10", "S1", claimantN(string(rune('a'+i))))
		}(i)
	}
	close(start)
	wg.Wait()

	claimed, lost := 0, 0
	for _, r := range results {
		switch r.Outcome {
		case Claimed:
			claimed++
			require.NotNil(t, r.Booking)
			assert.Equal(t, "S1", r.Booking.SlotID)
			assert.Equal(t, "+91-900000001", r.OwnerContact)
		case AlreadyClaimed:
			lost++
		default:
			t.Fatalf("unexpected outcome %v", r.Outcome)
		}
	}
	assert.Equal(t, 1, claimed, "exactly one claim must win")
	assert.Equal(t, n-1, lost)

	// The winner is stamped on the canonical slot.
	eq, err := s.GetEquipment("E1")
	require.NoError(t, err)
	slot := eq.Day("2024-05-10").Slot("S1")
	require.NotNil(t, slot)
	assert.True(t, slot.Claimed)
	require.NotNil(t, slot.Claimant)
	require.NotNil(t, slot.ClaimedAt)
}

func TestTryClaimSecondSlotUnaffected(t *testing.T) {
	s := New(nil)
	s.Register(testEquipment())

	res := s.TryClaim(context.Background(), "E1", "2024-05-10", "S1", claimantN("1"))
	require.Equal(t, Claimed, res.Outcome)

	// S2 is untouched and still claimable by a different user.
	eq, err := s.GetEquipment("E1")
	require.NoError(t, err)
	assert.False(t, eq.Day("2024-05-10").Slot("S2").Claimed)

	res = s.TryClaim(context.Background(), "E1", "2024-05-10", "S2", claimantN("2"))
	assert.Equal(t, Claimed, res.Outcome)
}

func TestTryClaimNotFoundOutcomes(t *testing.T) {
	s := New(nil)
	s.Register(testEquipment())

	tests := []struct {
		name                      string
		equipmentID, date, slotID string
		want                      Outcome
	}{
		{"unknown equipment", "E9", "2024-05-10", "S1", EquipmentNotFound},
		{"unknown date", "E1", "2024-05-11", "S1", SlotNotFound},
		{"unknown slot", "E1", "2024-05-10", "S9", SlotNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := s.TryClaim(context.Background(), tc.equipmentID, tc.date, tc.slotID, claimantN("x"))
			assert.Equal(t, tc.want, res.Outcome)
			assert.Nil(t, res.Booking)
		})
	}

	// A failed claim mutates nothing.
	eq, err := s.GetEquipment("E1")
	require.NoError(t, err)
	for _, slot := range eq.Day("2024-05-10").Slots {
		assert.False(t, slot.Claimed)
	}
}

type failingPersister struct{ err error }

func (p failingPersister) SaveBooking(context.Context, model.Booking) error { return p.err }

type recordingPersister struct {
	mu       sync.Mutex
	bookings []model.Booking
}

func (p *recordingPersister) SaveBooking(_ context.Context, b model.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bookings = append(p.bookings, b)
	return nil
}

func TestTryClaimPersistFailureRollsBack(t *testing.T) {
	s := New(failingPersister{err: errors.New("connection refused")})
	s.Register(testEquipment())

	res := s.TryClaim(context.Background(), "E1", "2024-05-10", "S1", claimantN("1"))
	assert.Equal(t, Unavailable, res.Outcome)

	// The slot stays free: the losing persist rolled the flag back and
	// the claim can be retried.
	eq, err := s.GetEquipment("E1")
	require.NoError(t, err)
	assert.False(t, eq.Day("2024-05-10").Slot("S1").Claimed)
}

func TestTryClaimPersistsBooking(t *testing.T) {
	p := &recordingPersister{}
	s := New(p)
	s.Register(testEquipment())

	res := s.TryClaim(context.Background(), "E1", "2024-05-10", "S1", claimantN("1"))
	require.Equal(t, Claimed, res.Outcome)
	require.Len(t, p.bookings, 1)
	b := p.bookings[0]
	assert.Equal(t, "E1", b.EquipmentID)
	assert.Equal(t, "user-1", b.UserID)
	assert.Equal(t, "Raman", b.OwnerName)
	assert.Equal(t, "09:00", b.StartTime)
}

func TestSnapshotIsIsolatedCopy(t *testing.T) {
	s := New(nil)
	s.Register(testEquipment())

	days, err := s.Snapshot("E1")
	require.NoError(t, err)
	days[0].Slots[0].Claimed = true // mutating the copy must not leak

	eq, err := s.GetEquipment("E1")
	require.NoError(t, err)
	assert.False(t, eq.Day("2024-05-10").Slot("S1").Claimed)

	_, err = s.Snapshot("E9")
	assert.ErrorIs(t, err, ErrEquipmentNotFound)
}

func TestRemove(t *testing.T) {
	s := New(nil)
	s.Register(testEquipment())
	s.Remove("E1")

	res := s.TryClaim(context.Background(), "E1", "2024-05-10", "S1", claimantN("1"))
	assert.Equal(t, EquipmentNotFound, res.Outcome)
}
