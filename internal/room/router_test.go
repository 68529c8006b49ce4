package room

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroshare/equipment-rental/internal/model"
)

type fakeSubscriber struct {
	id string

	mu     sync.Mutex
	events []Event
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Deliver(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeSubscriber) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func TestSubscribeIsIdempotent(t *testing.T) {
	r := NewRouter()
	sub := &fakeSubscriber{id: "s1"}
	key := model.NewRoomKey("Palakkad", "Melarkode")

	r.Subscribe(sub, key)
	r.Subscribe(sub, key)

	r.Publish(key, Event{Name: EventSlotUpdated})
	assert.Len(t, sub.received(), 1, "double join must not double deliveries")
	assert.Len(t, r.Rooms("s1"), 1)
}

func TestPublishIsScopedToRoom(t *testing.T) {
	r := NewRouter()
	inRoom := &fakeSubscriber{id: "s1"}
	elsewhere := &fakeSubscriber{id: "s2"}

	r.Subscribe(inRoom, model.NewRoomKey("Palakkad", "Melarkode"))
	r.Subscribe(elsewhere, model.NewRoomKey("Thrissur", "Ollur"))

	r.Publish(model.NewRoomKey("Palakkad", "Melarkode"), Event{Name: EventSlotUpdated})

	assert.Len(t, inRoom.received(), 1)
	assert.Empty(t, elsewhere.received())
}

func TestRoomKeyIsCaseInsensitive(t *testing.T) {
	r := NewRouter()
	sub := &fakeSubscriber{id: "s1"}

	r.Subscribe(sub, model.NewRoomKey("PALAKKAD", "  Melarkode "))
	r.Publish(model.NewRoomKey("palakkad", "melarkode"), Event{Name: EventSlotUpdated})

	assert.Len(t, sub.received(), 1)
}

func TestUnsubscribeRemovesFromAllRooms(t *testing.T) {
	r := NewRouter()
	sub := &fakeSubscriber{id: "s1"}
	k1 := model.NewRoomKey("Palakkad", "Melarkode")
	k2 := model.NewRoomKey("Thrissur", "Ollur")

	r.Subscribe(sub, k1)
	r.Subscribe(sub, k2)
	require.Len(t, r.Rooms("s1"), 2)

	r.Unsubscribe("s1")
	assert.Empty(t, r.Rooms("s1"))

	r.Publish(k1, Event{Name: EventSlotUpdated})
	r.Publish(k2, Event{Name: EventSlotUpdated})
	assert.Empty(t, sub.received())

	// Unknown session is a no-op.
	r.Unsubscribe("ghost")
}

func TestPublishPreservesOrderPerSubscriber(t *testing.T) {
	r := NewRouter()
	sub := &fakeSubscriber{id: "s1"}
	key := model.NewRoomKey("Palakkad", "Melarkode")
	r.Subscribe(sub, key)

	r.Publish(key, Event{Name: EventSlotUpdated, Data: "first"})
	r.Publish(key, Event{Name: EventSlotUpdated, Data: "second"})

	got := sub.received()
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Data)
	assert.Equal(t, "second", got[1].Data)
}
