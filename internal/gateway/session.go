package gateway

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agroshare/equipment-rental/internal/model"
	"github.com/agroshare/equipment-rental/internal/room"
)

const (
	// writeWait bounds a single frame write to a slow client.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before it is
	// considered dead; pings go out at pingPeriod to keep it alive.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize caps inbound frames; booking payloads are tiny.
	maxMessageSize = 4096
	// sendBuffer is the per-session outbound queue.  When it fills the
	// session is too slow and further events are dropped, per the
	// best-effort delivery contract.
	sendBuffer = 32
)

// Session is one client's live connection state.  It is ephemeral:
// created on connect, destroyed on disconnect, never resumed.  A
// session owns no slot state; tearing it down only removes its room
// subscriptions.
type Session struct {
	id   string
	user *model.Claimant // identity from the connect token, nil if anonymous
	conn *websocket.Conn

	send chan room.Event
	done chan struct{}
	once sync.Once
}

func newSession(id string, user *model.Claimant, conn *websocket.Conn) *Session {
	return &Session{
		id:   id,
		user: user,
		conn: conn,
		send: make(chan room.Event, sendBuffer),
		done: make(chan struct{}),
	}
}

// ID implements room.Subscriber.
func (s *Session) ID() string { return s.id }

// Deliver implements room.Subscriber.  It never blocks: if the session's
// outbound buffer is full or the session is closing, the event is dropped.
func (s *Session) Deliver(ev room.Event) {
	select {
	case <-s.done:
	case s.send <- ev:
	default:
		log.Printf("gateway: session %s send buffer full, dropping %s", s.id, ev.Name)
	}
}

// close marks the session terminal and closes the underlying
// connection.  Safe to call from both pump goroutines.
func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// envelope is the wire frame: every message names its event and wraps
// the payload.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// writePump is the single writer for the connection.  It drains the
// send queue in order (preserving per-equipment event order decided by
// the coordinator) and keeps the connection alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()
	for {
		select {
		case ev := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(envelope{Event: ev.Name, Data: ev.Data}); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}
