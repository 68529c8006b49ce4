package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agroshare/equipment-rental/internal/model"
)

// currentUser extracts the authenticated identity injected by the JWT
// middleware.  The identity collaborator issues tokens whose claims
// carry id, display name and contact; this core trusts them as given.
func currentUser(c echo.Context) (model.Claimant, error) {
	id, _ := c.Get("user_id").(string)
	if id == "" {
		return model.Claimant{}, errors.New("no authenticated user in context")
	}
	name, _ := c.Get("user_name").(string)
	contact, _ := c.Get("user_contact").(string)
	return model.Claimant{UserID: id, Name: name, Contact: contact}, nil
}

// validateAvailability enforces the listing directory's calendar
// invariants before a listing becomes visible to the booking core:
// dates are unique and well-formed, every slot has an id and a valid
// HH:MM interval, slot ids are unique within their day, and slots on
// the same day do not overlap.
func validateAvailability(days []model.AvailabilityDay) error {
	seenDates := make(map[string]struct{}, len(days))
	for _, day := range days {
		if _, err := time.Parse("2006-01-02", day.Date); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", day.Date)
		}
		if _, dup := seenDates[day.Date]; dup {
			return fmt.Errorf("duplicate availability date %s", day.Date)
		}
		seenDates[day.Date] = struct{}{}

		type interval struct{ start, end int }
		seenIDs := make(map[string]struct{}, len(day.Slots))
		intervals := make([]interval, 0, len(day.Slots))
		for _, s := range day.Slots {
			if s.ID == "" {
				return fmt.Errorf("slot on %s is missing an id", day.Date)
			}
			if _, dup := seenIDs[s.ID]; dup {
				return fmt.Errorf("duplicate slot id %s on %s", s.ID, day.Date)
			}
			seenIDs[s.ID] = struct{}{}

			start, err := parseClock(s.StartTime)
			if err != nil {
				return fmt.Errorf("slot %s on %s: %w", s.ID, day.Date, err)
			}
			end, err := parseClock(s.EndTime)
			if err != nil {
				return fmt.Errorf("slot %s on %s: %w", s.ID, day.Date, err)
			}
			if end <= start {
				return fmt.Errorf("slot %s on %s ends before it starts", s.ID, day.Date)
			}
			for _, iv := range intervals {
				if start < iv.end && iv.start < end {
					return fmt.Errorf("slot %s on %s overlaps another slot", s.ID, day.Date)
				}
			}
			intervals = append(intervals, interval{start, end})
		}
	}
	return nil
}

// parseClock converts an HH:MM string to minutes since midnight.
func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", v)
	}
	return t.Hour()*60 + t.Minute(), nil
}
