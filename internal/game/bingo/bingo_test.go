package bingo_test

import (
	"cardparty/internal/game"
	"cardparty/internal/game/bingo"
	"cardparty/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	roomID    string
	role      model.Role
	eventType string
	payload   interface{}
}

type recorder struct {
	events []recordedEvent
}

func (r *recorder) Broadcast(roomID, eventType string, payload interface{}) {
	r.events = append(r.events, recordedEvent{roomID: roomID, eventType: eventType, payload: payload})
}

func (r *recorder) BroadcastRole(roomID string, role model.Role, eventType string, payload interface{}) {
	r.events = append(r.events, recordedEvent{roomID: roomID, role: role, eventType: eventType, payload: payload})
}

func newBingoRoom() *model.Room {
	return &model.Room{
		UUID:  "room-1",
		Type:  model.RoomTypeBingo,
		State: model.RoomActive,
		Data: model.PluginData{
			Bingo: &model.BingoRoomData{
				GameMode: model.BingoHorizontal,
				TrackMapping: map[string]int{
					"trk_001": 1,
					"trk_002": 2,
					"trk_003": 3,
				},
				Round: 1,
			},
		},
	}
}

func newScanContext(room *model.Room, rec *recorder, saves *int) *game.ScanContext {
	return &game.ScanContext{
		Ctx:  context.Background(),
		Room: room,
		Save: func(*model.Room) error {
			*saves++
			return nil
		},
		End:         func(*model.Room) error { return nil },
		Broadcaster: rec,
	}
}

func TestTrackScan(t *testing.T) {
	plugin := bingo.New(nil)

	t.Run("hit appends and broadcasts", func(t *testing.T) {
		room := newBingoRoom()
		rec := &recorder{}
		saves := 0

		result, err := plugin.HandleScan(newScanContext(room, rec, &saves), bingo.ScanTrack, "trk_002")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, []int{2}, room.Data.Bingo.PlayedNumbers)
		assert.Equal(t, 1, saves)

		require.Len(t, rec.events, 1)
		assert.Equal(t, bingo.EventTrackScanned, rec.events[0].eventType)
		assert.Equal(t, "room-1", rec.events[0].roomID)
	})

	t.Run("duplicate scan is a no-op", func(t *testing.T) {
		room := newBingoRoom()
		rec := &recorder{}
		saves := 0
		sc := newScanContext(room, rec, &saves)

		_, err := plugin.HandleScan(sc, bingo.ScanTrack, "trk_002")
		require.NoError(t, err)
		result, err := plugin.HandleScan(sc, bingo.ScanTrack, "trk_002")
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, []int{2}, room.Data.Bingo.PlayedNumbers, "second scan must not append")
		assert.Equal(t, 1, saves, "second scan must not persist")
		assert.Len(t, rec.events, 2, "the running count is still broadcast")
	})

	t.Run("miss is not an error", func(t *testing.T) {
		room := newBingoRoom()
		rec := &recorder{}
		saves := 0

		result, err := plugin.HandleScan(newScanContext(room, rec, &saves), bingo.ScanTrack, "trk_999")
		require.NoError(t, err)
		assert.True(t, result.Success)

		data, okData := result.Data.(map[string]interface{})
		require.True(t, okData)
		assert.Equal(t, false, data["inPlaylist"])
		assert.Equal(t, "not in bingo playlist", data["message"])
		assert.Empty(t, room.Data.Bingo.PlayedNumbers)
		assert.Zero(t, saves)
		assert.Empty(t, rec.events)
	})
}

func TestCheckBroadcastsResult(t *testing.T) {
	plugin := bingo.New(nil)
	room := newBingoRoom()
	room.Data.Bingo.PlayedNumbers = []int{1, 2, 3}
	rec := &recorder{}
	saves := 0

	sheet := make([]int, 24)
	sheet[0], sheet[1], sheet[2] = 1, 2, 3
	for i := 3; i < 24; i++ {
		sheet[i] = 100 + i
	}

	result, err := plugin.Check(newScanContext(room, rec, &saves), sheet)
	require.NoError(t, err)
	require.True(t, result.Success)

	checked, okChecked := result.Data.(bingo.CheckResult)
	require.True(t, okChecked)
	assert.False(t, checked.IsWinner)
	assert.Equal(t, 4, checked.MatchedCount) // three hits plus the free space
	assert.Len(t, checked.Sheet, 25, "24-number sheets gain the free center")

	require.Len(t, rec.events, 1)
	assert.Equal(t, bingo.EventCheck, rec.events[0].eventType)
	assert.Zero(t, saves, "checking never mutates the called numbers")
}

func TestNewRound(t *testing.T) {
	plugin := bingo.New(nil)
	room := newBingoRoom()
	room.Data.Bingo.PlayedNumbers = []int{1, 2}
	rec := &recorder{}
	saves := 0

	result, err := plugin.NewRound(newScanContext(room, rec, &saves))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, room.Data.Bingo.PlayedNumbers)
	assert.Equal(t, 2, room.Data.Bingo.Round)
	assert.Equal(t, 1, saves)
}

func TestValidateUpdate(t *testing.T) {
	plugin := bingo.New(nil)
	room := newBingoRoom()

	tests := []struct {
		name    string
		data    model.PluginData
		wantErr bool
	}{
		{
			name: "valid mode change",
			data: model.PluginData{Bingo: &model.BingoRoomData{GameMode: model.BingoFullCard, Round: 1}},
		},
		{
			name:    "wrong variant",
			data:    model.PluginData{Quiz: &model.QuizRoomData{}},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			data:    model.PluginData{Bingo: &model.BingoRoomData{GameMode: "SPIRAL", Round: 1}},
			wantErr: true,
		},
		{
			name:    "round regression",
			data:    model.PluginData{Bingo: &model.BingoRoomData{GameMode: model.BingoHorizontal, Round: 0}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := plugin.ValidateUpdate(room, &tt.data)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
