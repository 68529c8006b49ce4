package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agroshare/equipment-rental/internal/model"
	"github.com/agroshare/equipment-rental/internal/repository"
	"github.com/agroshare/equipment-rental/internal/store"
)

// RentalHandler groups the listing directory endpoints (equipment CRUD
// and nearby search) with the read views derived from bookings.  The
// slot store is the runtime source of truth for availability, so
// snapshot reads go through it rather than the database.
type RentalHandler struct {
	Equipment *repository.EquipmentRepo
	Bookings  *repository.BookingRepo
	Store     *store.Store
}

// NewRentalHandler constructs a RentalHandler.  All dependencies must
// be non-nil.
func NewRentalHandler(equipment *repository.EquipmentRepo, bookings *repository.BookingRepo, st *store.Store) *RentalHandler {
	if equipment == nil || bookings == nil || st == nil {
		panic("nil dependency passed to NewRentalHandler")
	}
	return &RentalHandler{Equipment: equipment, Bookings: bookings, Store: st}
}

// Nearby handles GET /v1/rental/nearby?lat=..&lng=..&radius=..&category=..
// It returns listings within the radius (default 50 km), nearest first.
func (h *RentalHandler) Nearby(c echo.Context) error {
	lat, err1 := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lat and lng are required"})
	}
	radius := 50.0
	if v := c.QueryParam("radius"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid radius"})
		}
		radius = r
	}
	items, err := h.Equipment.ListNearby(c.Request().Context(), lat, lng, radius, c.QueryParam("category"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if items == nil {
		items = []*model.Equipment{}
	}
	return c.JSON(http.StatusOK, items)
}

// CreateEquipment handles POST /v1/rental/equipment.  The authenticated
// caller becomes the owner.  The availability payload is validated here
// (unique dates, well-formed non-overlapping slots) because the booking
// core assumes those invariants on entry; once persisted, the listing
// is registered with the slot store and becomes claimable immediately.
func (h *RentalHandler) CreateEquipment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var eq model.Equipment
	if err := c.Bind(&eq); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if eq.Name == "" || eq.Category == "" || eq.District == "" || eq.Village == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, category, district and village are required"})
	}
	if err := validateAvailability(eq.Availability); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	eq.ID = uuid.NewString()
	eq.OwnerID = user.UserID
	eq.OwnerName = user.Name
	eq.OwnerContact = user.Contact
	eq.CreatedAt = time.Now().UTC()
	// Incoming slots are always unclaimed regardless of what the client sent.
	for i := range eq.Availability {
		for j := range eq.Availability[i].Slots {
			s := &eq.Availability[i].Slots[j]
			s.Claimed = false
			s.Claimant = nil
			s.ClaimedAt = nil
		}
	}

	if err := h.Equipment.Create(c.Request().Context(), &eq); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create listing"})
	}
	registered := eq
	h.Store.Register(&registered)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": eq.ID})
}

// GetEquipment handles GET /v1/rental/equipment/:id.  It serves the
// live availability snapshot from the slot store, which is also the
// REST resync path for clients without a socket connection.
func (h *RentalHandler) GetEquipment(c echo.Context) error {
	eq, err := h.Store.GetEquipment(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrEquipmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store error"})
	}
	return c.JSON(http.StatusOK, eq)
}

// DeleteEquipment handles DELETE /v1/rental/equipment/:id.  Only the
// owner may delete a listing; on success it is deregistered from the
// slot store and stops being claimable.
func (h *RentalHandler) DeleteEquipment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if err := h.Equipment.Delete(c.Request().Context(), id, user.UserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrEquipmentNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not the owner of this listing"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	h.Store.Remove(id)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MyListings handles GET /v1/rental/my-listings for the authenticated owner.
func (h *RentalHandler) MyListings(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Equipment.ListByOwner(c.Request().Context(), user.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if items == nil {
		items = []*model.Equipment{}
	}
	return c.JSON(http.StatusOK, items)
}

// MyBookings handles GET /v1/rental/my-bookings for the authenticated user.
func (h *RentalHandler) MyBookings(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), user.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if items == nil {
		items = []model.Booking{}
	}
	return c.JSON(http.StatusOK, items)
}
