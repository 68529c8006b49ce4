package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agroshare/equipment-rental/internal/model"
)

func day(date string, slots ...model.Slot) model.AvailabilityDay {
	return model.AvailabilityDay{Date: date, Slots: slots}
}

func slot(id, start, end string) model.Slot {
	return model.Slot{ID: id, StartTime: start, EndTime: end}
}

func TestValidateAvailability(t *testing.T) {
	tests := []struct {
		name    string
		days    []model.AvailabilityDay
		wantErr string
	}{
		{
			name: "valid calendar",
			days: []model.AvailabilityDay{
				day("2024-05-10", slot("S1", "09:00", "10:00"), slot("S2", "10:00", "11:00")),
				day("2024-05-11", slot("S1", "09:00", "12:00")),
			},
		},
		{
			name: "empty calendar is fine",
		},
		{
			name:    "bad date format",
			days:    []model.AvailabilityDay{day("10-05-2024", slot("S1", "09:00", "10:00"))},
			wantErr: "invalid date",
		},
		{
			name: "duplicate date",
			days: []model.AvailabilityDay{
				day("2024-05-10", slot("S1", "09:00", "10:00")),
				day("2024-05-10", slot("S1", "10:00", "11:00")),
			},
			wantErr: "duplicate availability date",
		},
		{
			name:    "slot without id",
			days:    []model.AvailabilityDay{day("2024-05-10", slot("", "09:00", "10:00"))},
			wantErr: "missing an id",
		},
		{
			name: "duplicate slot id on one day",
			days: []model.AvailabilityDay{
				day("2024-05-10", slot("S1", "09:00", "10:00"), slot("S1", "10:00", "11:00")),
			},
			wantErr: "duplicate slot id",
		},
		{
			name: "same slot id on different days is fine",
			days: []model.AvailabilityDay{
				day("2024-05-10", slot("S1", "09:00", "10:00")),
				day("2024-05-11", slot("S1", "09:00", "10:00")),
			},
		},
		{
			name:    "bad clock value",
			days:    []model.AvailabilityDay{day("2024-05-10", slot("S1", "9am", "10:00"))},
			wantErr: "invalid time",
		},
		{
			name:    "end before start",
			days:    []model.AvailabilityDay{day("2024-05-10", slot("S1", "10:00", "09:00"))},
			wantErr: "ends before it starts",
		},
		{
			name:    "zero-length slot",
			days:    []model.AvailabilityDay{day("2024-05-10", slot("S1", "10:00", "10:00"))},
			wantErr: "ends before it starts",
		},
		{
			name: "overlapping slots",
			days: []model.AvailabilityDay{
				day("2024-05-10", slot("S1", "09:00", "11:00"), slot("S2", "10:30", "12:00")),
			},
			wantErr: "overlaps",
		},
		{
			name: "touching slots do not overlap",
			days: []model.AvailabilityDay{
				day("2024-05-10", slot("S1", "09:00", "10:00"), slot("S2", "10:00", "11:00")),
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateAvailability(tc.days)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
