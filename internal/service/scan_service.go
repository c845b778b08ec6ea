package service

import (
	"cardparty/internal/game"
	"cardparty/internal/model"
	"context"
	"fmt"
	"strings"
)

// Built-in card-scan message types, handled before plugin dispatch.
const (
	msgRoomStart = "RS"
	msgTrackScan = "TS"
	msgRoomCheck = "RV"
)

// ScanService decodes the short text codes embedded in printed QR
// codes. Messages are "TYPE" or "TYPE:payload"; the payload may itself
// contain colons.
type ScanService struct {
	rooms    *RoomService
	registry *game.Registry
	// wsEndpoint is handed to quiz host apps on room start.
	wsEndpoint string
}

func NewScanService(rooms *RoomService, registry *game.Registry, wsEndpoint string) *ScanService {
	return &ScanService{
		rooms:      rooms,
		registry:   registry,
		wsEndpoint: wsEndpoint,
	}
}

// HandleMessage processes one scanned message. Every failure here is a
// per-request, user-visible outcome, never fatal.
func (s *ScanService) HandleMessage(ctx context.Context, raw, roomID string) *game.ScanResult {
	msgType, payload := splitMessage(raw)
	if msgType == "" {
		return &game.ScanResult{Success: false, Error: "empty message"}
	}

	var room *model.Room
	if roomID != "" {
		var err error
		room, err = s.rooms.Live(ctx, roomID)
		if err != nil {
			return &game.ScanResult{Success: false, Error: "room lookup failed"}
		}
	}

	switch msgType {
	case msgRoomStart:
		return s.roomStart(ctx, room)
	case msgTrackScan:
		return s.trackScan(ctx, room, payload)
	case msgRoomCheck:
		return s.roomCheck(room)
	}

	plugin, okPlugin := s.registry.ForScanType(msgType)
	if !okPlugin {
		return &game.ScanResult{Success: false, Error: fmt.Sprintf("unknown message type %q", msgType)}
	}
	if room == nil {
		return &game.ScanResult{Success: false, Error: "not found"}
	}
	if room.State == model.RoomEnded {
		return &game.ScanResult{Success: false, Error: "ended"}
	}

	result, err := plugin.HandleScan(s.rooms.ScanContext(ctx, room), msgType, payload)
	if err != nil {
		return &game.ScanResult{Success: false, Error: "internal error"}
	}
	return result
}

// roomStart marks a created room active and tells the scanning client
// how to proceed: quiz rooms get the live-connection endpoint for the
// host companion app, everything else a plain joined payload.
func (s *ScanService) roomStart(ctx context.Context, room *model.Room) *game.ScanResult {
	if room == nil {
		return &game.ScanResult{Success: false, Error: "not found"}
	}
	if room.State == model.RoomEnded {
		return &game.ScanResult{Success: false, Error: "ended"}
	}

	if room.State == model.RoomCreated {
		if err := room.Advance(model.RoomActive); err != nil {
			return &game.ScanResult{Success: false, Error: err.Error()}
		}
		if err := s.rooms.SaveLive(ctx, room); err != nil {
			return &game.ScanResult{Success: false, Error: "room save failed"}
		}
	}

	if room.Type == model.RoomTypeQuiz {
		return &game.ScanResult{
			Success:     true,
			Action:      "connectAsHostApp",
			StoreRoomID: room.UUID,
			Data: map[string]interface{}{
				"wsUrl":  s.wsEndpoint,
				"roomId": room.UUID,
			},
		}
	}

	return &game.ScanResult{
		Success:     true,
		StoreRoomID: room.UUID,
		Data: map[string]interface{}{
			"joined":   true,
			"roomType": room.Type,
		},
	}
}

// trackScan resolves a scanned track id into game-specific meaning by
// delegating to the room's plugin.
func (s *ScanService) trackScan(ctx context.Context, room *model.Room, trackID string) *game.ScanResult {
	if room == nil {
		return &game.ScanResult{Success: false, Error: "not found"}
	}
	if room.State == model.RoomEnded {
		return &game.ScanResult{Success: false, Error: "ended"}
	}
	if trackID == "" {
		return &game.ScanResult{Success: false, Error: "missing track id"}
	}

	plugin, okPlugin := s.registry.ForRoomType(room.Type)
	if !okPlugin {
		return &game.ScanResult{Success: false, Error: fmt.Sprintf("unknown room type %q", room.Type)}
	}

	result, err := plugin.HandleScan(s.rooms.ScanContext(ctx, room), msgTrackScan, trackID)
	if err != nil {
		return &game.ScanResult{Success: false, Error: "internal error"}
	}
	return result
}

// roomCheck is the cheap existence/state probe clients poll before
// presenting UI.
func (s *ScanService) roomCheck(room *model.Room) *game.ScanResult {
	if room == nil {
		return &game.ScanResult{Success: false, Error: "not found"}
	}
	return &game.ScanResult{
		Success:     true,
		StoreRoomID: room.UUID,
		Data: map[string]interface{}{
			"state":    room.State,
			"roomType": room.Type,
		},
	}
}

func splitMessage(raw string) (msgType, payload string) {
	parts := strings.SplitN(raw, ":", 2)
	msgType = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		payload = parts[1]
	}
	return msgType, payload
}
