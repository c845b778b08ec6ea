package quiz

import (
	"cardparty/internal/game"
	"cardparty/internal/model"
	"strconv"
	"time"
)

// PlayerState is the resume payload a rejoining player gets: enough to
// render the current phase without replaying the game.
type PlayerState struct {
	Phase            model.QuizPhase `json:"phase"`
	CurrentQuestion  int             `json:"currentQuestion"`
	RemainingSeconds int             `json:"remainingSeconds"`
	AlreadyAnswered  bool            `json:"alreadyAnswered"`
	TotalScore       int             `json:"totalScore"`
	PlayerName       string          `json:"playerName"`
}

// JoinPlayer registers a new player under its connection id.
func (e *Engine) JoinPlayer(sc *game.ScanContext, connID, name string) (*game.ScanResult, error) {
	data := sc.Room.Data.Quiz
	if data == nil {
		return &game.ScanResult{Success: false, Error: "room has no quiz data"}, nil
	}
	if data.Phase == model.PhaseFinal {
		return &game.ScanResult{Success: false, Error: "quiz already finished"}, nil
	}
	if name == "" {
		return &game.ScanResult{Success: false, Error: "player name is required"}, nil
	}

	data.Players[connID] = &model.QuizPlayer{Name: name, Connected: true}
	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventPlayerJoin, map[string]interface{}{
		"name":        name,
		"playerCount": data.ConnectedCount(),
	})
	return &game.ScanResult{Success: true, Data: e.playerState(data, connID)}, nil
}

// RejoinPlayer recovers a disconnected player's entry by display name
// and re-keys it under the new connection id. Display name is the de
// facto reconnection key; two simultaneous players with identical
// names are ambiguous and the first matching entry wins (known
// limitation).
func (e *Engine) RejoinPlayer(sc *game.ScanContext, connID, name string) (*game.ScanResult, error) {
	data := sc.Room.Data.Quiz
	if data == nil {
		return &game.ScanResult{Success: false, Error: "room has no quiz data"}, nil
	}

	oldID := ""
	for id, p := range data.Players {
		if p.Name == name {
			oldID = id
			break
		}
	}
	if oldID == "" {
		return &game.ScanResult{Success: false, Error: "no player with that name"}, nil
	}

	player := data.Players[oldID]
	delete(data.Players, oldID)
	data.Players[connID] = player
	if answers, okAnswers := data.Answers[oldID]; okAnswers {
		delete(data.Answers, oldID)
		data.Answers[connID] = answers
	}
	player.Connected = true

	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventPlayerJoin, map[string]interface{}{
		"name":        name,
		"playerCount": data.ConnectedCount(),
		"rejoined":    true,
	})
	return &game.ScanResult{Success: true, Data: e.playerState(data, connID)}, nil
}

// Disconnected marks the player's entry in place; the entry (score and
// answers included) survives for a later rejoin.
func (e *Engine) Disconnected(sc *game.ScanContext, connID string) error {
	data := sc.Room.Data.Quiz
	if data == nil {
		return nil
	}
	player, okPlayer := data.Players[connID]
	if !okPlayer {
		return nil
	}

	player.Connected = false
	if err := sc.Save(sc.Room); err != nil {
		return err
	}

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventPlayerLeft, map[string]interface{}{
		"name":        player.Name,
		"playerCount": data.ConnectedCount(),
	})
	return nil
}

// SubmitAnswer scores one player's answer. Accepted only during the
// question phase for the current index; a second submission for an
// already-answered index changes nothing.
func (e *Engine) SubmitAnswer(sc *game.ScanContext, connID string, questionIndex int, answer string) (*game.ScanResult, error) {
	data := sc.Room.Data.Quiz
	if data == nil {
		return &game.ScanResult{Success: false, Error: "room has no quiz data"}, nil
	}
	if data.Phase != model.PhaseQuestion {
		return &game.ScanResult{Success: false, Error: "answers are closed"}, nil
	}
	if questionIndex != data.CurrentQuestion {
		return &game.ScanResult{Success: false, Error: "answer is for a different question"}, nil
	}
	player, okPlayer := data.Players[connID]
	if !okPlayer {
		return &game.ScanResult{Success: false, Error: "not a player in this room"}, nil
	}
	if data.AnswerTo(connID, data.CurrentQuestion) != nil {
		// Duplicate submission: benign no-op.
		return &game.ScanResult{Success: true, Data: map[string]interface{}{"alreadyAnswered": true}}, nil
	}

	q := data.Questions[data.CurrentQuestion]
	now := time.Now()
	elapsed := now.Sub(data.QuestionStarted).Seconds()

	var score int
	var correct bool
	switch q.Kind {
	case model.QuestionYear:
		guess, err := strconv.Atoi(answer)
		if err != nil {
			return &game.ScanResult{Success: false, Error: "answer must be a year"}, nil
		}
		score, correct = yearScore(guess, q.ReleaseYear, elapsed, data.TimerSeconds)
	default:
		correct = answer == q.CorrectAnswer
		score = choiceScore(correct, elapsed, data.TimerSeconds)
	}

	data.Answers[connID] = append(data.Answers[connID], model.QuizAnswer{
		QuestionIndex: data.CurrentQuestion,
		Answer:        answer,
		AnsweredAt:    now,
		Score:         score,
		Correct:       correct,
	})
	player.Score += score

	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	answered := data.AnsweredCount(data.CurrentQuestion)
	connected := data.ConnectedCount()
	sc.Broadcaster.Broadcast(sc.Room.UUID, EventAnswerCount, map[string]interface{}{
		"questionIndex": data.CurrentQuestion,
		"answered":      answered,
		"connected":     connected,
	})
	if answered >= connected {
		sc.Broadcaster.BroadcastRole(sc.Room.UUID, model.RoleHost, EventAllAnswered, map[string]interface{}{
			"questionIndex": data.CurrentQuestion,
		})
	}

	return &game.ScanResult{Success: true, Data: map[string]interface{}{
		"score":      score,
		"correct":    correct,
		"totalScore": player.Score,
	}}, nil
}

func (e *Engine) playerState(data *model.QuizRoomData, connID string) *PlayerState {
	state := &PlayerState{
		Phase:           data.Phase,
		CurrentQuestion: data.CurrentQuestion,
	}
	if player, okPlayer := data.Players[connID]; okPlayer {
		state.TotalScore = player.Score
		state.PlayerName = player.Name
	}
	if data.CurrentQuestion >= 0 {
		state.AlreadyAnswered = data.AnswerTo(connID, data.CurrentQuestion) != nil
	}
	if data.Phase == model.PhaseQuestion {
		remaining := data.TimerSeconds - int(time.Since(data.QuestionStarted).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		state.RemainingSeconds = remaining
	}
	return state
}
