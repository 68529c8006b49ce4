package room

import (
	"sync"

	"github.com/agroshare/equipment-rental/internal/model"
)

// Router maintains the membership mapping (district, village) -> live
// sessions and fans events out to exactly the sessions subscribed to
// the affected scope.  Publish preserves, per subscriber, the order in
// which it was called: the coordinator serializes claims per equipment,
// so observers never see slot updates for one equipment out of order.
type Router struct {
	mu      sync.RWMutex
	rooms   map[model.RoomKey]map[string]Subscriber
	members map[string]map[model.RoomKey]struct{} // session id -> rooms joined
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{
		rooms:   make(map[model.RoomKey]map[string]Subscriber),
		members: make(map[string]map[model.RoomKey]struct{}),
	}
}

// Subscribe adds sub to the given room.  Joining a room twice is
// idempotent: the session holds exactly one subscription per key.
func (r *Router) Subscribe(sub Subscriber, key model.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[key] == nil {
		r.rooms[key] = make(map[string]Subscriber)
	}
	r.rooms[key][sub.ID()] = sub

	if r.members[sub.ID()] == nil {
		r.members[sub.ID()] = make(map[model.RoomKey]struct{})
	}
	r.members[sub.ID()][key] = struct{}{}
}

// Unsubscribe removes the session from every room it joined.  It is
// called on disconnect; unknown session ids are a no-op.
func (r *Router) Unsubscribe(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.members[sessionID] {
		delete(r.rooms[key], sessionID)
		if len(r.rooms[key]) == 0 {
			delete(r.rooms, key)
		}
	}
	delete(r.members, sessionID)
}

// Publish delivers ev to every session currently subscribed to key.
// Delivery is best-effort and non-blocking; there is no durable queue
// or redelivery, and a dead session simply misses the event.
func (r *Router) Publish(key model.RoomKey, ev Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.rooms[key] {
		sub.Deliver(ev)
	}
}

// Rooms reports the rooms a session is currently subscribed to.
func (r *Router) Rooms(sessionID string) []model.RoomKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]model.RoomKey, 0, len(r.members[sessionID]))
	for key := range r.members[sessionID] {
		keys = append(keys, key)
	}
	return keys
}
