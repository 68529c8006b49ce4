package gateway

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroshare/equipment-rental/internal/model"
	"github.com/agroshare/equipment-rental/internal/reservation"
	"github.com/agroshare/equipment-rental/internal/room"
	"github.com/agroshare/equipment-rental/internal/store"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.New(nil)
	st.Register(&model.Equipment{
		ID:           "E1",
		OwnerID:      "owner-1",
		OwnerName:    "Raman",
		OwnerContact: "+91-900000001",
		Name:         "Power Tiller",
		District:     "Palakkad",
		Village:      "Melarkode",
		Availability: []model.AvailabilityDay{
			{
				Date: "2024-05-10",
				Slots: []model.Slot{
					{ID: "S1", StartTime: "09:00", EndTime: "10:00"},
				},
			},
		},
	})
	rooms := room.NewRouter()
	coord := reservation.NewCoordinator(st, rooms, nil)
	gw := New(rooms, coord, st, testSecret)

	e := echo.New()
	e.GET("/ws", gw.Serve)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"event": event, "data": data}))
}

// recv reads one envelope off the wire with a deadline so a missing
// event fails the test instead of hanging it.
func recv(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&env))
	var data map[string]any
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return env.Event, data
}

func TestJoinThenBookingFlow(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "")

	send(t, conn, room.EventJoinRentalRoom, map[string]any{
		"district": "Palakkad", "village": "Melarkode",
	})
	name, data := recv(t, conn)
	assert.Equal(t, room.EventRoomJoined, name)
	assert.Equal(t, "rental_palakkad_melarkode", data["room"])

	send(t, conn, room.EventRequestBooking, map[string]any{
		"equipment_id": "E1",
		"date":         "2024-05-10",
		"slot_id":      "S1",
		"user_id":      "u1",
		"user_name":    "Asha",
		"user_contact": "+91-123",
	})

	// Personal confirmation first, then the room broadcast this session
	// also receives as a member.
	name, data = recv(t, conn)
	require.Equal(t, room.EventBookingConfirmed, name)
	assert.Equal(t, "Power Tiller", data["equipment_name"])
	assert.Equal(t, "+91-900000001", data["owner_contact"])

	name, data = recv(t, conn)
	require.Equal(t, room.EventSlotUpdated, name)
	assert.Equal(t, "S1", data["slot_id"])
	assert.Equal(t, "booked", data["status"])
}

func TestBookingWithoutJoiningStillAnswers(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "")

	send(t, conn, room.EventRequestBooking, map[string]any{
		"equipment_id": "E1",
		"date":         "2024-05-10",
		"slot_id":      "S1",
		"user_id":      "u1",
		"user_name":    "Asha",
		"user_contact": "+91-123",
	})

	name, _ := recv(t, conn)
	assert.Equal(t, room.EventBookingConfirmed, name)
}

func TestTokenIdentityOverridesPayload(t *testing.T) {
	srv := newTestServer(t)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          "token-user",
		"user_name":    "Token Asha",
		"user_contact": "+91-777",
		"exp":          time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	conn := dial(t, srv, "?token="+signed)
	send(t, conn, room.EventRequestBooking, map[string]any{
		"equipment_id": "E1",
		"date":         "2024-05-10",
		"slot_id":      "S1",
		"user_id":      "spoofed",
		"user_name":    "Spoofer",
		"user_contact": "+91-000",
	})

	name, _ := recv(t, conn)
	require.Equal(t, room.EventBookingConfirmed, name)

	// The canonical slot carries the token identity, not the payload's.
	send(t, conn, room.EventResync, map[string]any{"equipment_id": "E1"})
	name, data := recv(t, conn)
	require.Equal(t, room.EventEquipmentState, name)

	raw, err := json.Marshal(data["availability"])
	require.NoError(t, err)
	var days []model.AvailabilityDay
	require.NoError(t, json.Unmarshal(raw, &days))
	slot := days[0].Slot("S1")
	require.NotNil(t, slot)
	require.True(t, slot.Claimed)
	assert.Equal(t, "token-user", slot.Claimant.UserID)
}

func TestResyncUnknownEquipment(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "")

	send(t, conn, room.EventResync, map[string]any{"equipment_id": "E9"})
	name, data := recv(t, conn)
	assert.Equal(t, room.EventError, name)
	assert.Equal(t, "equipment not found", data["message"])
}

func TestMalformedFrameKeepsConnectionAlive(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	name, _ := recv(t, conn)
	assert.Equal(t, room.EventError, name)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"mystery"}`)))
	name, data := recv(t, conn)
	assert.Equal(t, room.EventError, name)
	assert.Contains(t, data["message"], "unknown event")

	// The session still works after rejected frames.
	send(t, conn, room.EventJoinRentalRoom, map[string]any{"district": "Palakkad"})
	name, _ = recv(t, conn)
	assert.Equal(t, room.EventRoomJoined, name)
}

func TestJoinRequiresDistrict(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "")

	send(t, conn, room.EventJoinRentalRoom, map[string]any{"village": "Melarkode"})
	name, data := recv(t, conn)
	assert.Equal(t, room.EventError, name)
	assert.Equal(t, "district is required", data["message"])
}
