package model

import (
	"fmt"
	"time"
)

// RoomType selects the game plugin that owns a room's data.
type RoomType string

const (
	RoomTypeBingo RoomType = "bingo"
	RoomTypeQuiz  RoomType = "quiz"
)

// RoomState is the lifecycle state of a room. Transitions only move
// forward: created -> active -> ended.
type RoomState string

const (
	RoomCreated RoomState = "created"
	RoomActive  RoomState = "active"
	RoomEnded   RoomState = "ended"
)

var stateOrder = map[RoomState]int{
	RoomCreated: 0,
	RoomActive:  1,
	RoomEnded:   2,
}

// PluginData is the closed set of per-game room payloads. Exactly one
// field is set, matching the room's Type.
type PluginData struct {
	Bingo *BingoRoomData `json:"bingo,omitempty" bson:"bingo,omitempty"`
	Quiz  *QuizRoomData  `json:"quiz,omitempty" bson:"quiz,omitempty"`
}

// Room is one play session. ID is the durable numeric identity; UUID
// is the external, unguessable identifier embedded in QR codes.
type Room struct {
	ID           int64      `json:"id" bson:"id"`
	UUID         string     `json:"uuid" bson:"uuid"`
	Type         RoomType   `json:"type" bson:"type"`
	OwnerID      string     `json:"ownerId" bson:"ownerId"`
	State        RoomState  `json:"state" bson:"state"`
	LastActivity time.Time  `json:"lastActivity" bson:"lastActivity"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	EndedAt      *time.Time `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	Data         PluginData `json:"data" bson:"data"`
}

// Advance moves the room to a later lifecycle state. Moving to the
// current state is a no-op (ending twice is idempotent); moving
// backward is an error.
func (r *Room) Advance(to RoomState) error {
	if stateOrder[to] < stateOrder[r.State] {
		return fmt.Errorf("room %s: cannot move from %s back to %s", r.UUID, r.State, to)
	}
	r.State = to
	return nil
}

// Touch records gameplay activity for the inactivity sweep.
func (r *Room) Touch() {
	r.LastActivity = time.Now()
}
