// Package gateway is the per-connection boundary of the booking core.
// It upgrades clients to WebSocket, translates inbound envelopes into
// coordinator and router calls, and pushes outbound events back to the
// originating and subscribed sessions.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/agroshare/equipment-rental/internal/model"
	"github.com/agroshare/equipment-rental/internal/reservation"
	"github.com/agroshare/equipment-rental/internal/room"
	"github.com/agroshare/equipment-rental/internal/store"
)

// Gateway accepts client connections and hosts their sessions.
type Gateway struct {
	router    *room.Router
	coord     *reservation.Coordinator
	store     *store.Store
	jwtSecret string
	upgrader  websocket.Upgrader
}

// New builds a gateway.  jwtSecret verifies optional connect tokens;
// an empty secret disables token identification and sessions rely on
// the identity fields carried in each booking payload.
func New(router *room.Router, coord *reservation.Coordinator, st *store.Store, jwtSecret string) *Gateway {
	return &Gateway{
		router:    router,
		coord:     coord,
		store:     st,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The portal frontend is served from a different origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /v1/rental/ws.  It upgrades the connection,
// allocates a session and runs the read loop until disconnect.  No slot
// state is touched on connect or disconnect.
func (g *Gateway) Serve(c echo.Context) error {
	user := g.identify(c.QueryParam("token"))
	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sess := newSession(uuid.NewString(), user, conn)
	log.Printf("gateway: session %s connected", sess.id)

	go sess.writePump()
	g.readLoop(sess)

	// Disconnect releases the session and its subscriptions.  Claims
	// already handed to the coordinator keep running on their own
	// context and resolve regardless.
	g.router.Unsubscribe(sess.id)
	sess.close()
	log.Printf("gateway: session %s disconnected", sess.id)
	return nil
}

func (g *Gateway) readLoop(sess *Session) {
	sess.conn.SetReadLimit(maxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := sess.conn.ReadMessage()
		if err != nil {
			return
		}
		g.dispatch(sess, raw)
	}
}

// dispatch routes one inbound frame.  A malformed message rejects that
// single message with an error event; it never drops the connection.
func (g *Gateway) dispatch(sess *Session, raw []byte) {
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		sess.Deliver(errEvent("malformed message"))
		return
	}

	switch env.Event {
	case room.EventJoinRentalRoom:
		g.handleJoin(sess, env.Data)
	case room.EventRequestBooking:
		g.handleBooking(sess, env.Data)
	case room.EventResync:
		g.handleResync(sess, env.Data)
	default:
		sess.Deliver(errEvent("unknown event: " + env.Event))
	}
}

// RoomJoined acknowledges a join_rental_room request.
type RoomJoined struct {
	Room string `json:"room"`
}

func (g *Gateway) handleJoin(sess *Session, data json.RawMessage) {
	var req struct {
		District string `json:"district"`
		Village  string `json:"village"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.District == "" {
		sess.Deliver(errEvent("district is required"))
		return
	}
	key := model.NewRoomKey(req.District, req.Village)
	g.router.Subscribe(sess, key)
	sess.Deliver(room.Event{Name: room.EventRoomJoined, Data: RoomJoined{Room: key.String()}})
}

func (g *Gateway) handleBooking(sess *Session, data json.RawMessage) {
	var req reservation.BookingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		sess.Deliver(errEvent("malformed booking payload"))
		return
	}
	// A token-identified session overrides whatever identity the
	// payload claims; anonymous sessions are trusted as-is, matching
	// the identity collaborator's contract.
	if sess.user != nil {
		req.UserID = sess.user.UserID
		req.UserName = sess.user.Name
		req.UserContact = sess.user.Contact
	}
	// Detached context: losing the connection after sending a request
	// must not leave the slot in limbo.
	go g.coord.HandleBooking(context.Background(), req, sess)
}

// EquipmentState is the authoritative availability snapshot returned by
// a resync request.
type EquipmentState struct {
	EquipmentID  string                  `json:"equipment_id"`
	Availability []model.AvailabilityDay `json:"availability"`
}

func (g *Gateway) handleResync(sess *Session, data json.RawMessage) {
	var req struct {
		EquipmentID string `json:"equipment_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.EquipmentID == "" {
		sess.Deliver(errEvent("equipment_id is required"))
		return
	}
	days, err := g.store.Snapshot(req.EquipmentID)
	if err != nil {
		if errors.Is(err, store.ErrEquipmentNotFound) {
			sess.Deliver(errEvent("equipment not found"))
			return
		}
		sess.Deliver(errEvent("resync failed"))
		return
	}
	sess.Deliver(room.Event{Name: room.EventEquipmentState, Data: EquipmentState{
		EquipmentID:  req.EquipmentID,
		Availability: days,
	}})
}

// identify parses an optional connect token and extracts the claimant
// identity from its claims.  Any parse failure yields an anonymous
// session rather than a rejected connection; booking validation still
// applies downstream.
func (g *Gateway) identify(token string) *model.Claimant {
	if token == "" || g.jwtSecret == "" {
		return nil
	}
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(g.jwtSecret), nil
	})
	if err != nil || !tok.Valid {
		return nil
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	id, _ := claims["sub"].(string)
	if id == "" {
		return nil
	}
	name, _ := claims["user_name"].(string)
	contact, _ := claims["user_contact"].(string)
	return &model.Claimant{UserID: id, Name: name, Contact: contact}
}

func errEvent(msg string) room.Event {
	return room.Event{Name: room.EventError, Data: echo.Map{"message": msg}}
}
