package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquipmentCalendarLookups(t *testing.T) {
	eq := Equipment{
		District: "Palakkad",
		Village:  "Melarkode",
		Availability: []AvailabilityDay{
			{Date: "2024-05-10", Slots: []Slot{{ID: "S1"}, {ID: "S2"}}},
		},
	}

	d := eq.Day("2024-05-10")
	require.NotNil(t, d)
	assert.NotNil(t, d.Slot("S2"))
	assert.Nil(t, d.Slot("S9"))
	assert.Nil(t, eq.Day("2024-06-01"))
}

func TestRoomDerivation(t *testing.T) {
	eq := Equipment{District: " Palakkad ", Village: "MELARKODE"}
	key := eq.Room()
	assert.Equal(t, NewRoomKey("palakkad", "melarkode"), key)
	assert.Equal(t, "rental_palakkad_melarkode", key.String())

	assert.Equal(t, "rental_palakkad", RoomKey{District: "palakkad"}.String())
}
