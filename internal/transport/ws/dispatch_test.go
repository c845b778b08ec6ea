package ws

import (
	"cardparty/internal/model"
	"cardparty/internal/store"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBus struct{}

func (stubBus) Publish(context.Context, *store.Event) error   { return nil }
func (stubBus) Subscribe(context.Context, func(*store.Event)) {}
func (stubBus) Origin() string                                { return "test" }

func newDispatchHandler() *Handler {
	return NewHandler(context.Background(), NewHub(stubBus{}), nil, nil, nil)
}

func reply(t *testing.T, conn *Connection) *Envelope {
	t.Helper()
	select {
	case msg := <-conn.Send:
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return &env
	default:
		return nil
	}
}

func TestDispatchRejectsByRole(t *testing.T) {
	h := newDispatchHandler()

	tests := []struct {
		name    string
		role    model.Role
		msgType string
	}{
		{name: "unjoined cannot answer", role: roleNone, msgType: MsgQuizAnswer},
		{name: "unjoined cannot drive the quiz", role: roleNone, msgType: MsgQuizHostAction},
		{name: "player cannot drive the quiz", role: model.RolePlayer, msgType: MsgQuizHostAction},
		{name: "player cannot start a bingo round", role: model.RolePlayer, msgType: MsgBingoNewRound},
		{name: "host app is display-only", role: model.RoleHostApp, msgType: MsgQuizAnswer},
		{name: "joined connections cannot rejoin", role: model.RolePlayer, msgType: MsgJoinRoom},
		{name: "unknown message type", role: model.RoleHost, msgType: "selfDestruct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &Connection{ID: "c1", Role: tt.role, Send: make(chan []byte, 1)}
			raw, _ := json.Marshal(Envelope{Type: tt.msgType})

			h.dispatch(conn, raw)

			env := reply(t, conn)
			require.NotNil(t, env)
			assert.Equal(t, EventError, env.Type)
		})
	}
}

func TestDispatchPingForEveryRole(t *testing.T) {
	h := newDispatchHandler()

	for _, role := range []model.Role{roleNone, model.RoleHost, model.RoleHostApp, model.RolePlayer} {
		conn := &Connection{ID: "c1", Role: role, Send: make(chan []byte, 1)}
		raw, _ := json.Marshal(Envelope{Type: MsgPing})

		h.dispatch(conn, raw)

		env := reply(t, conn)
		require.NotNil(t, env, "role %q", role)
		assert.Equal(t, EventPong, env.Type)
	}
}

func TestDispatchMalformedMessage(t *testing.T) {
	h := newDispatchHandler()
	conn := &Connection{ID: "c1", Send: make(chan []byte, 1)}

	h.dispatch(conn, []byte("{not json"))

	env := reply(t, conn)
	require.NotNil(t, env)
	assert.Equal(t, EventError, env.Type)
}
