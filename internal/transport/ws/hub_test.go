package ws_test

import (
	"cardparty/internal/model"
	"cardparty/internal/store"
	"cardparty/internal/transport/ws"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus captures published events and lets the test inject remote
// ones into the subscribed handler.
type fakeBus struct {
	origin    string
	published []*store.Event
	handler   func(*store.Event)
}

func (b *fakeBus) Publish(_ context.Context, ev *store.Event) error {
	b.published = append(b.published, ev)
	return nil
}

func (b *fakeBus) Subscribe(_ context.Context, handler func(*store.Event)) {
	b.handler = handler
}

func (b *fakeBus) Origin() string {
	return b.origin
}

func (b *fakeBus) emit(ev *store.Event) {
	b.handler(ev)
}

func newConn(id string) *ws.Connection {
	return &ws.Connection{ID: id, Send: make(chan []byte, 8)}
}

func joinedConn(hub *ws.Hub, id, roomID string, role model.Role) *ws.Connection {
	conn := newConn(id)
	hub.Register(conn)
	hub.Join(conn, roomID, role)
	return conn
}

func receivedEnvelope(t *testing.T, conn *ws.Connection) *ws.Envelope {
	t.Helper()
	select {
	case msg := <-conn.Send:
		var env ws.Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return &env
	default:
		return nil
	}
}

func TestBroadcastReachesRoomOnly(t *testing.T) {
	bus := &fakeBus{origin: "proc-1"}
	hub := ws.NewHub(bus)

	inRoom := joinedConn(hub, "c1", "room-a", model.RolePlayer)
	alsoIn := joinedConn(hub, "c2", "room-a", model.RoleHost)
	elsewhere := joinedConn(hub, "c3", "room-b", model.RolePlayer)
	unjoined := newConn("c4")
	hub.Register(unjoined)

	hub.Broadcast("room-a", "trackScanned", map[string]interface{}{"number": 7})

	env := receivedEnvelope(t, inRoom)
	require.NotNil(t, env)
	assert.Equal(t, "trackScanned", env.Type)
	assert.JSONEq(t, `{"number":7}`, string(env.Data))

	assert.NotNil(t, receivedEnvelope(t, alsoIn))
	assert.Nil(t, receivedEnvelope(t, elsewhere))
	assert.Nil(t, receivedEnvelope(t, unjoined))
}

func TestBroadcastPublishesForOtherProcesses(t *testing.T) {
	bus := &fakeBus{origin: "proc-1"}
	hub := ws.NewHub(bus)
	joinedConn(hub, "c1", "room-a", model.RolePlayer)

	hub.Broadcast("room-a", "roomEnded", map[string]interface{}{"roomId": "room-a"})

	require.Len(t, bus.published, 1)
	ev := bus.published[0]
	assert.Equal(t, "roomEnded", ev.Type)
	assert.Equal(t, "room-a", ev.RoomID)
	assert.Equal(t, "proc-1", ev.Origin)
	assert.Empty(t, ev.Role)
}

func TestBroadcastRole(t *testing.T) {
	bus := &fakeBus{origin: "proc-1"}
	hub := ws.NewHub(bus)

	host := joinedConn(hub, "c1", "room-a", model.RoleHost)
	player := joinedConn(hub, "c2", "room-a", model.RolePlayer)

	hub.BroadcastRole("room-a", model.RoleHost, "quizAllAnswered", map[string]interface{}{"questionIndex": 0})

	env := receivedEnvelope(t, host)
	require.NotNil(t, env)
	assert.Equal(t, "quizAllAnswered", env.Type)
	assert.Nil(t, receivedEnvelope(t, player))

	require.Len(t, bus.published, 1)
	assert.Equal(t, string(model.RoleHost), bus.published[0].Role)
}

func TestRemoteEventsFanOut(t *testing.T) {
	bus := &fakeBus{origin: "proc-1"}
	hub := ws.NewHub(bus)
	hub.Start(context.Background())
	require.NotNil(t, bus.handler)

	conn := joinedConn(hub, "c1", "room-a", model.RolePlayer)
	elsewhere := joinedConn(hub, "c2", "room-b", model.RolePlayer)

	payload, _ := json.Marshal(map[string]interface{}{"number": 3})
	bus.emit(&store.Event{Type: "trackScanned", RoomID: "room-a", Payload: payload, Origin: "proc-2"})

	env := receivedEnvelope(t, conn)
	require.NotNil(t, env)
	assert.Equal(t, "trackScanned", env.Type)
	assert.Nil(t, receivedEnvelope(t, elsewhere))
	assert.Empty(t, bus.published, "remote events are not republished")
}

func TestOwnEventsAreDropped(t *testing.T) {
	bus := &fakeBus{origin: "proc-1"}
	hub := ws.NewHub(bus)
	hub.Start(context.Background())

	conn := joinedConn(hub, "c1", "room-a", model.RolePlayer)

	payload, _ := json.Marshal(map[string]interface{}{"number": 3})
	bus.emit(&store.Event{Type: "trackScanned", RoomID: "room-a", Payload: payload, Origin: "proc-1"})

	assert.Nil(t, receivedEnvelope(t, conn), "locally published events were already delivered at publish time")
}

func TestUnregister(t *testing.T) {
	bus := &fakeBus{origin: "proc-1"}
	hub := ws.NewHub(bus)

	conn := joinedConn(hub, "c1", "room-a", model.RolePlayer)
	assert.Equal(t, 1, hub.RoomConnections("room-a"))

	hub.Unregister(conn)
	assert.Equal(t, 0, hub.RoomConnections("room-a"))

	_, open := <-conn.Send
	assert.False(t, open, "send channel closes on unregister")

	// A second unregister is harmless.
	hub.Unregister(conn)
}

func TestSendTo(t *testing.T) {
	bus := &fakeBus{origin: "proc-1"}
	hub := ws.NewHub(bus)
	conn := newConn("c1")
	hub.Register(conn)

	hub.SendTo(conn, "pong", map[string]interface{}{})

	env := receivedEnvelope(t, conn)
	require.NotNil(t, env)
	assert.Equal(t, "pong", env.Type)
}
