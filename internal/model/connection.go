package model

// Role is the privilege class of one live connection. A connection is
// assigned exactly one role when it joins a room and keeps it until it
// disconnects.
type Role string

const (
	// RoleHost is the room creator's control surface; only hosts may
	// drive the quiz phase machine or replace plugin data.
	RoleHost Role = "host"
	// RoleHostApp is the companion playback client of a quiz room.
	RoleHostApp Role = "hostApp"
	RolePlayer  Role = "player"
)
