// Package bingo implements the music-bingo game plugin: a printed 5x5
// card of track positions, marked off as the host scans track cards.
package bingo

import (
	"cardparty/internal/game"
	"cardparty/internal/model"
	"cardparty/internal/repository"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Card-scan message types owned by this plugin. TS is delegated by the
// protocol handler; BC is printed on the sheets themselves ("check my
// card").
const (
	ScanTrack = "TS"
	ScanCheck = "BC"
)

// Event types pushed to bingo rooms.
const (
	EventTrackScanned = "trackScanned"
	EventCheck        = "bingoCheck"
	EventNewRound     = "newRound"
)

var validModes = map[model.BingoMode]bool{
	model.BingoHorizontal: true,
	model.BingoVertical:   true,
	model.BingoDiagonal:   true,
	model.BingoFullCard:   true,
}

// Plugin is the bingo game plugin.
type Plugin struct {
	tracks repository.TrackRepo
}

func New(tracks repository.TrackRepo) *Plugin {
	return &Plugin{tracks: tracks}
}

func (p *Plugin) Type() model.RoomType {
	return model.RoomTypeBingo
}

func (p *Plugin) ScanTypes() []string {
	return []string{ScanCheck}
}

// DefaultData precomputes the track-id -> bingo-number mapping from
// the playlist so scans never need a catalog lookup.
func (p *Plugin) DefaultData(ctx context.Context, opts map[string]interface{}) (model.PluginData, error) {
	playlistID, _ := opts["playlistId"].(string)
	if playlistID == "" {
		return model.PluginData{}, fmt.Errorf("bingo: playlistId is required")
	}

	mode := model.BingoHorizontal
	if m, ok := opts["gameMode"].(string); ok && m != "" {
		mode = model.BingoMode(m)
	}
	if !validModes[mode] {
		return model.PluginData{}, fmt.Errorf("bingo: unknown game mode %q", mode)
	}

	tracks, err := p.tracks.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return model.PluginData{}, fmt.Errorf("bingo: load playlist: %w", err)
	}
	if len(tracks) == 0 {
		return model.PluginData{}, fmt.Errorf("bingo: playlist %q has no tracks", playlistID)
	}

	mapping := make(map[string]int, len(tracks))
	for i, t := range tracks {
		number := t.Position
		if number == 0 {
			number = i + 1
		}
		mapping[t.ID] = number
	}

	return model.PluginData{
		Bingo: &model.BingoRoomData{
			GameMode:     mode,
			PlaylistID:   playlistID,
			TrackMapping: mapping,
			Round:        1,
		},
	}, nil
}

func (p *Plugin) HandleScan(sc *game.ScanContext, msgType, payload string) (*game.ScanResult, error) {
	data := sc.Room.Data.Bingo
	if data == nil {
		return &game.ScanResult{Success: false, Error: "room has no bingo data"}, nil
	}

	switch msgType {
	case ScanTrack:
		return p.trackScanned(sc, data, payload)
	case ScanCheck:
		return p.checkCard(sc, data, payload)
	default:
		return &game.ScanResult{Success: false, Error: fmt.Sprintf("unknown message type %q", msgType)}, nil
	}
}

// trackScanned resolves a scanned track against the precomputed
// mapping. A miss is an expected outcome, not an error: any non-bingo
// card can end up under the scanner.
func (p *Plugin) trackScanned(sc *game.ScanContext, data *model.BingoRoomData, trackID string) (*game.ScanResult, error) {
	number, ok := data.TrackMapping[trackID]
	if !ok {
		return &game.ScanResult{
			Success: true,
			Data: map[string]interface{}{
				"inPlaylist": false,
				"message":    "not in bingo playlist",
			},
		}, nil
	}

	if !data.Played(number) {
		data.PlayedNumbers = append(data.PlayedNumbers, number)
		if err := sc.Save(sc.Room); err != nil {
			return nil, err
		}
	}

	payload := map[string]interface{}{
		"number":      number,
		"playedCount": len(data.PlayedNumbers),
		"round":       data.Round,
	}
	sc.Broadcaster.Broadcast(sc.Room.UUID, EventTrackScanned, payload)

	return &game.ScanResult{
		Success: true,
		Data: map[string]interface{}{
			"inPlaylist":  true,
			"number":      number,
			"playedCount": len(data.PlayedNumbers),
		},
	}, nil
}

// checkCard runs win detection for a scanned sheet. The payload is
// the comma-separated numbers of the sheet, 24 values (free center
// omitted) or 25.
func (p *Plugin) checkCard(sc *game.ScanContext, data *model.BingoRoomData, payload string) (*game.ScanResult, error) {
	sheet, err := parseSheet(payload)
	if err != nil {
		return &game.ScanResult{Success: false, Error: err.Error()}, nil
	}
	return p.Check(sc, sheet)
}

// Check runs win detection for a sheet and broadcasts the result to
// the room. Pure apart from the broadcast; checking never mutates the
// called numbers.
func (p *Plugin) Check(sc *game.ScanContext, sheet []int) (*game.ScanResult, error) {
	data := sc.Room.Data.Bingo
	if data == nil {
		return &game.ScanResult{Success: false, Error: "room has no bingo data"}, nil
	}
	if len(sheet) == gridSize-1 {
		expanded := make([]int, 0, gridSize)
		expanded = append(expanded, sheet[:freeCell]...)
		expanded = append(expanded, 0)
		expanded = append(expanded, sheet[freeCell:]...)
		sheet = expanded
	}
	if len(sheet) != gridSize {
		return &game.ScanResult{Success: false, Error: fmt.Sprintf("sheet must have %d or %d numbers, got %d", gridSize-1, gridSize, len(sheet))}, nil
	}

	result := CheckWin(sheet, data.PlayedNumbers, data.GameMode, data.Round)
	sc.Broadcaster.Broadcast(sc.Room.UUID, EventCheck, result)
	return &game.ScanResult{Success: true, Data: result}, nil
}

// NewRound resets the called numbers and bumps the round counter.
// Host-driven, via the live connection.
func (p *Plugin) NewRound(sc *game.ScanContext) (*game.ScanResult, error) {
	data := sc.Room.Data.Bingo
	if data == nil {
		return &game.ScanResult{Success: false, Error: "room has no bingo data"}, nil
	}

	data.PlayedNumbers = nil
	data.Round++
	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{"round": data.Round}
	sc.Broadcaster.Broadcast(sc.Room.UUID, EventNewRound, payload)
	return &game.ScanResult{Success: true, Data: payload}, nil
}

// ValidateUpdate vets owner-supplied data replacements: the variant
// must stay bingo, the mode must be known, and the round counter must
// not move backward.
func (p *Plugin) ValidateUpdate(room *model.Room, data *model.PluginData) error {
	if data.Bingo == nil || data.Quiz != nil {
		return fmt.Errorf("bingo: update must carry bingo data only")
	}
	if !validModes[data.Bingo.GameMode] {
		return fmt.Errorf("bingo: unknown game mode %q", data.Bingo.GameMode)
	}
	if current := room.Data.Bingo; current != nil && data.Bingo.Round < current.Round {
		return fmt.Errorf("bingo: round cannot move backward")
	}
	return nil
}

func parseSheet(payload string) ([]int, error) {
	parts := strings.Split(payload, ",")
	if len(parts) != gridSize && len(parts) != gridSize-1 {
		return nil, fmt.Errorf("sheet must have %d or %d numbers, got %d", gridSize-1, gridSize, len(parts))
	}

	numbers := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad sheet number %q", part)
		}
		numbers = append(numbers, n)
	}

	return numbers, nil
}
