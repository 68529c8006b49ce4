// Package repository persists the listing directory (equipment records)
// and the denormalized bookings read store in MySQL.  Sentinel errors
// let handlers distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrEquipmentNotFound is returned when no equipment row matches the
// requested id. Handlers translate this into an HTTP 404 response.
var ErrEquipmentNotFound = errors.New("equipment not found")

// ErrForbidden is returned when the caller attempts an operation on a
// listing they do not own, such as deleting another farmer's
// equipment. Handlers translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
