package model_test

import (
	"cardparty/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomAdvance(t *testing.T) {
	tests := []struct {
		name    string
		from    model.RoomState
		to      model.RoomState
		wantErr bool
	}{
		{name: "created to active", from: model.RoomCreated, to: model.RoomActive},
		{name: "active to ended", from: model.RoomActive, to: model.RoomEnded},
		{name: "created straight to ended", from: model.RoomCreated, to: model.RoomEnded},
		{name: "ending twice is idempotent", from: model.RoomEnded, to: model.RoomEnded},
		{name: "no regression to created", from: model.RoomActive, to: model.RoomCreated, wantErr: true},
		{name: "no regression from ended", from: model.RoomEnded, to: model.RoomActive, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := &model.Room{UUID: "r1", State: tt.from}
			err := room.Advance(tt.to)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.from, room.State, "state must not change on rejected transition")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, room.State)
		})
	}
}

func TestQuizRoomDataCounts(t *testing.T) {
	data := &model.QuizRoomData{
		CurrentQuestion: 1,
		Players: map[string]*model.QuizPlayer{
			"c1": {Name: "Alice", Connected: true},
			"c2": {Name: "Bob", Connected: true},
			"c3": {Name: "Carol", Connected: false},
		},
		Answers: map[string][]model.QuizAnswer{
			"c1": {{QuestionIndex: 0, Answer: "a"}, {QuestionIndex: 1, Answer: "b"}},
			"c2": {{QuestionIndex: 1, Answer: "a"}}, // joined late, skipped question 0
		},
	}

	assert.Equal(t, 2, data.ConnectedCount())
	assert.Equal(t, 1, data.AnsweredCount(0))
	assert.Equal(t, 2, data.AnsweredCount(1))
	assert.Equal(t, 0, data.AnsweredCount(2))
}

func TestQuizRoomDataAnswerTo(t *testing.T) {
	data := &model.QuizRoomData{
		Answers: map[string][]model.QuizAnswer{
			"c1": {{QuestionIndex: 2, Answer: "late"}},
		},
	}

	require.NotNil(t, data.AnswerTo("c1", 2))
	assert.Equal(t, "late", data.AnswerTo("c1", 2).Answer)
	assert.Nil(t, data.AnswerTo("c1", 0), "list position must not stand in for the question index")
	assert.Nil(t, data.AnswerTo("c2", 2))
}
