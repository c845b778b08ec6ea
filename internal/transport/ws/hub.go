package ws

import (
	"cardparty/internal/model"
	"cardparty/internal/store"
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Envelope is the wire format for every server push and client
// message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Connection is one live socket. Exclusively owned by this process;
// other processes only learn about its room through the bus.
type Connection struct {
	ID     string
	RoomID string
	Role   model.Role
	Send   chan []byte
}

// Hub tracks this process's connections per room and bridges the
// broadcast bus: local broadcasts are delivered synchronously and
// published for other processes; remote events are fanned out to local
// sockets in the matching room.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection
	rooms map[string]map[string]*Connection

	bus store.Bus
}

func NewHub(bus store.Bus) *Hub {
	return &Hub{
		conns: make(map[string]*Connection),
		rooms: make(map[string]map[string]*Connection),
		bus:   bus,
	}
}

// Start begins consuming bus events until ctx is done. Events this
// process published are dropped: they were already delivered to local
// sockets synchronously at publish time.
func (h *Hub) Start(ctx context.Context) {
	h.bus.Subscribe(ctx, func(ev *store.Event) {
		if ev.Origin == h.bus.Origin() {
			return
		}
		h.deliverLocal(ev.RoomID, model.Role(ev.Role), ev.Type, ev.Payload)
	})
}

// Register adds a freshly upgraded connection (no room yet).
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.ID] = conn
}

// Join attaches a connection to a room with its role.
func (h *Hub) Join(conn *Connection, roomID string, role model.Role) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.RoomID = roomID
	conn.Role = role
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Connection)
	}
	h.rooms[roomID][conn.ID] = conn
	log.Printf("ws: %s joined room %s as %s", conn.ID, roomID, role)
}

// Unregister removes a connection and closes its send channel.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, okConn := h.conns[conn.ID]; !okConn {
		return
	}
	delete(h.conns, conn.ID)
	if conn.RoomID != "" {
		if room, okRoom := h.rooms[conn.RoomID]; okRoom {
			delete(room, conn.ID)
			if len(room) == 0 {
				delete(h.rooms, conn.RoomID)
			}
		}
	}
	close(conn.Send)
	log.Printf("ws: %s disconnected", conn.ID)
}

// RoomConnections reports how many local sockets a room has.
func (h *Hub) RoomConnections(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Broadcast implements game.Broadcaster: deliver to every local socket
// in the room, then publish for the other processes.
func (h *Hub) Broadcast(roomID, eventType string, payload interface{}) {
	h.broadcast(roomID, "", eventType, payload)
}

// BroadcastRole implements game.Broadcaster for role-targeted events.
func (h *Hub) BroadcastRole(roomID string, role model.Role, eventType string, payload interface{}) {
	h.broadcast(roomID, role, eventType, payload)
}

func (h *Hub) broadcast(roomID string, role model.Role, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws: marshal %s event: %v", eventType, err)
		return
	}

	h.deliverLocal(roomID, role, eventType, data)

	ev := &store.Event{
		Type:    eventType,
		RoomID:  roomID,
		Role:    string(role),
		Payload: data,
		Origin:  h.bus.Origin(),
	}
	if err := h.bus.Publish(context.Background(), ev); err != nil {
		log.Printf("ws: publish %s event: %v", eventType, err)
	}
}

func (h *Hub) deliverLocal(roomID string, role model.Role, eventType string, payload json.RawMessage) {
	data, err := json.Marshal(&Envelope{Type: eventType, Data: payload})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.rooms[roomID] {
		if role != "" && conn.Role != role {
			continue
		}
		select {
		case conn.Send <- data:
		default:
			// Slow consumer; drop rather than block the room.
		}
	}
}

// SendTo pushes an envelope to a single connection.
func (h *Hub) SendTo(conn *Connection, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws: marshal %s reply: %v", eventType, err)
		return
	}
	msg, err := json.Marshal(&Envelope{Type: eventType, Data: data})
	if err != nil {
		return
	}
	select {
	case conn.Send <- msg:
	default:
	}
}
