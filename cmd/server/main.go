// Entry point of the equipment rental booking service.  It seeds the
// slot store from the listing directory, wires the reservation
// coordinator and room router behind the WebSocket gateway, and serves
// the REST surface.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/agroshare/equipment-rental/internal/config"
	"github.com/agroshare/equipment-rental/internal/database"
	"github.com/agroshare/equipment-rental/internal/gateway"
	"github.com/agroshare/equipment-rental/internal/handler"
	"github.com/agroshare/equipment-rental/internal/queue"
	"github.com/agroshare/equipment-rental/internal/repository"
	"github.com/agroshare/equipment-rental/internal/reservation"
	"github.com/agroshare/equipment-rental/internal/room"
	"github.com/agroshare/equipment-rental/internal/router"
	"github.com/agroshare/equipment-rental/internal/store"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	equipmentRepo := repository.NewEquipmentRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	// The slot store is the single writer of slot state.  Seed it with
	// every listing the directory already knows about; new listings are
	// registered as they are created.
	slotStore := store.New(bookingRepo)
	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	listings, err := equipmentRepo.ListAll(seedCtx)
	cancel()
	if err != nil {
		log.Fatalf("seed slot store: %v", err)
	}
	for _, eq := range listings {
		slotStore.Register(eq)
	}
	log.Printf("slot store seeded with %d listings", len(listings))

	rooms := room.NewRouter()
	coord := reservation.NewCoordinator(slotStore, rooms, queue.PublishBookingConfirmed)
	coord.SetClaimTimeout(cfg.ClaimTimeout)
	gw := gateway.New(rooms, coord, slotStore, cfg.JWTSecret)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	if cfg.ConsumerEnable {
		go func() {
			if err := queue.StartBookingConsumer(); err != nil {
				log.Printf("booking consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	h := handler.NewRentalHandler(equipmentRepo, bookingRepo, slotStore)
	router.RegisterRoutes(e, h, gw, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
