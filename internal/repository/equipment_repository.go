package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/agroshare/equipment-rental/internal/model"
)

// EquipmentRepo provides CRUD and nearby search over the equipments
// table.  The availability calendar is stored as a JSON column
// mirroring the shape the booking core works with; the authoritative
// copy of slot state at runtime lives in the slot store, so this table
// is only read at startup (seeding) and written by listing CRUD.
type EquipmentRepo struct {
	db *sql.DB
}

// NewEquipmentRepo returns an EquipmentRepo bound to the given database.
func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

const equipmentColumns = `id, owner_id, owner_name, owner_contact, name, description,
	category, price_per_hour, latitude, longitude, address, district, village,
	images, availability, created_at`

// Create inserts a new equipment listing.  The caller (listing
// directory handler) must already have validated the availability
// payload; this layer only persists it.
func (r *EquipmentRepo) Create(ctx context.Context, eq *model.Equipment) error {
	images, err := json.Marshal(eq.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	availability, err := json.Marshal(eq.Availability)
	if err != nil {
		return fmt.Errorf("marshal availability: %w", err)
	}
	const q = `INSERT INTO equipments (` + equipmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		eq.ID, eq.OwnerID, eq.OwnerName, eq.OwnerContact, eq.Name, eq.Description,
		eq.Category, eq.PricePerHour, eq.Latitude, eq.Longitude, eq.Address,
		eq.District, eq.Village, images, availability, eq.CreatedAt,
	)
	return err
}

// GetByID fetches one equipment record.
func (r *EquipmentRepo) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	const q = `SELECT ` + equipmentColumns + ` FROM equipments WHERE id = ?`
	eq, err := scanEquipment(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrEquipmentNotFound
	}
	return eq, err
}

// ListAll streams every listing, used to seed the slot store at startup.
func (r *EquipmentRepo) ListAll(ctx context.Context) ([]*model.Equipment, error) {
	const q = `SELECT ` + equipmentColumns + ` FROM equipments ORDER BY created_at`
	return r.queryEquipments(ctx, q)
}

// ListByOwner returns all listings created by one farmer.
func (r *EquipmentRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Equipment, error) {
	const q = `SELECT ` + equipmentColumns + ` FROM equipments WHERE owner_id = ? ORDER BY created_at DESC`
	return r.queryEquipments(ctx, q, ownerID)
}

// ListNearby returns listings within radiusKm of the given point,
// nearest first, optionally filtered by category.  Distance uses the
// haversine formula evaluated in SQL; the original deployment relied on
// a geospatial index for the same query shape.
func (r *EquipmentRepo) ListNearby(ctx context.Context, lat, lng, radiusKm float64, category string) ([]*model.Equipment, error) {
	q := `SELECT ` + equipmentColumns + `,
		(6371 * ACOS(LEAST(1.0,
			COS(RADIANS(?)) * COS(RADIANS(latitude)) * COS(RADIANS(longitude) - RADIANS(?))
			+ SIN(RADIANS(?)) * SIN(RADIANS(latitude))))) AS distance_km
		FROM equipments`
	args := []any{lat, lng, lat}
	if category != "" {
		q += ` WHERE category = ?`
		args = append(args, category)
	}
	q += ` HAVING distance_km <= ? ORDER BY distance_km`
	args = append(args, radiusKm)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Equipment
	for rows.Next() {
		var distance float64
		eq, err := scanEquipmentFields(rows, &distance)
		if err != nil {
			return nil, err
		}
		out = append(out, eq)
	}
	return out, rows.Err()
}

// Delete removes a listing, but only when ownerID matches the stored
// owner.  It returns ErrEquipmentNotFound for unknown ids and
// ErrForbidden when the listing belongs to someone else.
func (r *EquipmentRepo) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipments WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM equipments WHERE id = ?)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrForbidden
	}
	return ErrEquipmentNotFound
}

func (r *EquipmentRepo) queryEquipments(ctx context.Context, q string, args ...any) ([]*model.Equipment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Equipment
	for rows.Next() {
		eq, err := scanEquipmentFields(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, eq)
	}
	return out, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning code.
type scanner interface {
	Scan(dest ...any) error
}

func scanEquipment(row scanner) (*model.Equipment, error) {
	return scanEquipmentFields(row)
}

func scanEquipmentFields(row scanner, extra ...any) (*model.Equipment, error) {
	var (
		eq           model.Equipment
		description  sql.NullString
		address      sql.NullString
		images       []byte
		availability []byte
	)
	dest := []any{
		&eq.ID, &eq.OwnerID, &eq.OwnerName, &eq.OwnerContact, &eq.Name, &description,
		&eq.Category, &eq.PricePerHour, &eq.Latitude, &eq.Longitude, &address,
		&eq.District, &eq.Village, &images, &availability, &eq.CreatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	eq.Description = description.String
	eq.Address = address.String
	if len(images) > 0 {
		if err := json.Unmarshal(images, &eq.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images for %s: %w", eq.ID, err)
		}
	}
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &eq.Availability); err != nil {
			return nil, fmt.Errorf("unmarshal availability for %s: %w", eq.ID, err)
		}
	}
	return &eq, nil
}
