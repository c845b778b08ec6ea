package game

import (
	"cardparty/internal/model"
	"context"
	"fmt"
)

// Broadcaster pushes events to every live connection in a room, local
// and remote. Implemented by the WebSocket hub (mirrors the interface
// indirection the REST/service layers use to avoid importing the
// transport package).
type Broadcaster interface {
	// Broadcast delivers to every connection in the room.
	Broadcast(roomID, eventType string, payload interface{})
	// BroadcastRole delivers only to connections holding the role.
	BroadcastRole(roomID string, role model.Role, eventType string, payload interface{})
}

// ScanContext is what a plugin gets when it handles a card-scan
// message: the current room, a way to persist it, and a way to push
// events. Save refreshes the room's TTL and activity timestamp.
type ScanContext struct {
	Ctx  context.Context
	Room *model.Room
	Save func(*model.Room) error
	// End terminates the room (idempotent); used when a game finishes
	// on its own, like a quiz reaching its final phase.
	End         func(*model.Room) error
	Broadcaster Broadcaster
}

// ScanResult is the outcome of one card-scan message. StoreRoomID
// carries the room's external id back to the scanning client so it can
// open a live connection.
type ScanResult struct {
	Success     bool        `json:"success"`
	Action      string      `json:"action,omitempty"`
	StoreRoomID string      `json:"storeRoomId,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Plugin is one game type. Plugins own their slice of the room's
// plugin data; nothing else inspects it.
type Plugin interface {
	Type() model.RoomType
	// DefaultData builds the initial plugin data for a new room from
	// caller-supplied options.
	DefaultData(ctx context.Context, opts map[string]interface{}) (model.PluginData, error)
	// ScanTypes lists the card-scan message types this plugin owns,
	// beyond the built-ins.
	ScanTypes() []string
	// HandleScan processes a card-scan message of one of ScanTypes,
	// or a TS message delegated by the protocol handler.
	HandleScan(sc *ScanContext, msgType, payload string) (*ScanResult, error)
	// ValidateUpdate vets an owner-supplied plugin data replacement.
	ValidateUpdate(room *model.Room, data *model.PluginData) error
}

// Registry maps room types and scan message types to plugins. Built
// once at startup, read-only afterward.
type Registry struct {
	byType map[model.RoomType]Plugin
	byScan map[string]Plugin
}

func NewRegistry(plugins ...Plugin) (*Registry, error) {
	r := &Registry{
		byType: make(map[model.RoomType]Plugin),
		byScan: make(map[string]Plugin),
	}
	for _, p := range plugins {
		if _, dup := r.byType[p.Type()]; dup {
			return nil, fmt.Errorf("registry: duplicate plugin for room type %q", p.Type())
		}
		r.byType[p.Type()] = p
		for _, t := range p.ScanTypes() {
			if owner, dup := r.byScan[t]; dup {
				return nil, fmt.Errorf("registry: scan type %q claimed by both %q and %q", t, owner.Type(), p.Type())
			}
			r.byScan[t] = p
		}
	}
	return r, nil
}

// ForRoomType resolves the plugin owning a room type.
func (r *Registry) ForRoomType(t model.RoomType) (Plugin, bool) {
	p, ok := r.byType[t]
	return p, ok
}

// ForScanType resolves the plugin owning a card-scan message type.
func (r *Registry) ForScanType(msgType string) (Plugin, bool) {
	p, ok := r.byScan[msgType]
	return p, ok
}
