package ws

import (
	"cardparty/internal/game/bingo"
	"cardparty/internal/game/quiz"
	"cardparty/internal/model"
	"cardparty/internal/service"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades sockets and dispatches their messages. One Handler
// serves every room type; the dispatch table routes by role.
type Handler struct {
	hub   *Hub
	rooms *service.RoomService
	quiz  *quiz.Engine
	bingo *bingo.Plugin
	table map[dispatchKey]dispatchFunc

	// ctx bounds store access from socket handlers; it is the server's
	// run context, not a per-request one, because socket lifetimes span
	// requests.
	ctx context.Context
}

func NewHandler(ctx context.Context, hub *Hub, rooms *service.RoomService, quizEngine *quiz.Engine, bingoPlugin *bingo.Plugin) *Handler {
	h := &Handler{
		hub:   hub,
		rooms: rooms,
		quiz:  quizEngine,
		bingo: bingoPlugin,
		ctx:   ctx,
	}
	h.table = h.dispatchTable()
	return h
}

// Serve handles GET /v1/ws.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade: %v", err)
		return
	}

	conn := &Connection{
		ID:   uuid.New().String(),
		Send: make(chan []byte, 256),
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.disconnected(conn)
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read: %v", err)
			}
			break
		}
		h.dispatch(conn, raw)
	}
}

// writePump drains the send channel and runs the liveness sweep: a
// connection that misses a pong within pongWait is closed by the read
// deadline and cleaned up through the normal disconnect path.
func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, okMsg := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !okMsg {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnected marks quiz players as away (entry kept in place so a
// rejoin by name can recover score and answers).
func (h *Handler) disconnected(conn *Connection) {
	if conn.RoomID == "" || conn.Role != model.RolePlayer {
		return
	}

	room, err := h.rooms.Live(h.ctx, conn.RoomID)
	if err != nil || room == nil {
		return
	}
	if room.Type != model.RoomTypeQuiz {
		return
	}

	sc := h.rooms.ScanContext(h.ctx, room)
	if err := h.quiz.Disconnected(sc, conn.ID); err != nil {
		log.Printf("ws: mark %s disconnected: %v", conn.ID, err)
	}
}
