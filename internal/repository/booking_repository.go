package repository

import (
	"context"
	"database/sql"

	"github.com/agroshare/equipment-rental/internal/model"
)

// BookingRepo persists the denormalized booking records materialized by
// successful claims and serves the "my bookings" read view.  It
// implements store.BookingPersister: SaveBooking runs inside the claim's
// critical section, so a failed insert rolls the whole claim back.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, equipment_id, equipment_name, date, slot_id, start_time,
	end_time, user_id, user_name, user_contact, owner_name, owner_contact, created_at`

// SaveBooking inserts one booking row.
func (r *BookingRepo) SaveBooking(ctx context.Context, b model.Booking) error {
	const q = `INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.EquipmentID, b.EquipmentName, b.Date, b.SlotID, b.StartTime,
		b.EndTime, b.UserID, b.UserName, b.UserContact, b.OwnerName,
		b.OwnerContact, b.CreatedAt,
	)
	return err
}

// ListByUser returns every booking made by one user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID, &b.EquipmentID, &b.EquipmentName, &b.Date, &b.SlotID, &b.StartTime,
			&b.EndTime, &b.UserID, &b.UserName, &b.UserContact, &b.OwnerName,
			&b.OwnerContact, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
