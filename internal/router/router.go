// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/agroshare/equipment-rental/internal/config"
	"github.com/agroshare/equipment-rental/internal/gateway"
	"github.com/agroshare/equipment-rental/internal/handler"
	"github.com/agroshare/equipment-rental/internal/middleware"
)

// RegisterRoutes wires every endpoint of the service onto the provided
// Echo instance: the health check, the public rental lookups, the
// WebSocket gateway and the JWT-protected listing/booking views.  rdb
// may be nil, in which case rate limiting and caching become
// pass-throughs.
func RegisterRoutes(e *echo.Echo, h *handler.RentalHandler, gw *gateway.Gateway, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	rental := e.Group("/v1/rental")

	// Public lookups.  Nearby search is cacheable; availability
	// snapshots are served live from the slot store and never cached.
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rental.GET("/nearby", h.Nearby, cached)
	rental.GET("/equipment/:id", h.GetEquipment)

	// The persistent connection used for rooms and slot claims.
	rental.GET("/ws", gw.Serve)

	// Owner/renter operations require an identity token.
	auth := rental.Group("", middleware.JWTAuth(jwtSecret))
	auth.POST("/equipment", h.CreateEquipment)
	auth.DELETE("/equipment/:id", h.DeleteEquipment)
	auth.GET("/my-listings", h.MyListings)
	auth.GET("/my-bookings", h.MyBookings)
}
