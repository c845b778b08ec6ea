package quiz

import (
	"cardparty/internal/game"
	"cardparty/internal/model"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Host action names accepted over the live connection.
const (
	ActionStart        = "startQuiz"
	ActionNextScan     = "nextScan"
	ActionShowQuestion = "showQuestion"
	ActionShowReveal   = "showReveal"
	ActionShowRanking  = "showRanking"
	ActionNextQuestion = "nextQuestion"
	ActionEnd          = "endQuiz"
)

// HostAction drives the phase machine. Only host-role connections
// reach this (the gateway's dispatch table enforces it).
func (e *Engine) HostAction(sc *game.ScanContext, action string) (*game.ScanResult, error) {
	data := sc.Room.Data.Quiz
	if data == nil {
		return &game.ScanResult{Success: false, Error: "room has no quiz data"}, nil
	}

	switch action {
	case ActionStart:
		return e.startQuiz(sc, data)
	case ActionNextScan:
		return e.advance(sc, data, true)
	case ActionNextQuestion:
		return e.advance(sc, data, false)
	case ActionShowQuestion:
		return e.showQuestion(sc, data)
	case ActionShowReveal:
		return e.showReveal(sc, data)
	case ActionShowRanking:
		return e.showRanking(sc, data)
	case ActionEnd:
		return e.endQuiz(sc)
	default:
		return &game.ScanResult{Success: false, Error: fmt.Sprintf("unknown host action %q", action)}, nil
	}
}

func (e *Engine) startQuiz(sc *game.ScanContext, data *model.QuizRoomData) (*game.ScanResult, error) {
	if data.Phase != model.PhaseLobby {
		return phaseError(data.Phase), nil
	}

	data.CurrentQuestion = 0
	data.Phase = model.PhaseAnnounce
	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventAnnounce, announcePayload(data))
	return ok(data), nil
}

// advance moves to the next question, or to final standings when none
// remain. With toScan set the room goes straight into the scanning
// phase for the new question.
func (e *Engine) advance(sc *game.ScanContext, data *model.QuizRoomData, toScan bool) (*game.ScanResult, error) {
	if data.Phase == model.PhaseLobby || data.Phase == model.PhaseFinal {
		return phaseError(data.Phase), nil
	}

	if data.CurrentQuestion+1 >= len(data.Questions) {
		return e.finish(sc, data)
	}

	data.CurrentQuestion++
	data.Phase = model.PhaseAnnounce
	if toScan {
		data.Phase = model.PhaseScanning
	}
	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventAnnounce, announcePayload(data))
	if toScan {
		sc.Broadcaster.Broadcast(sc.Room.UUID, EventScanPrompt, map[string]interface{}{
			"questionIndex": data.CurrentQuestion,
		})
	}
	return ok(data), nil
}

func (e *Engine) showQuestion(sc *game.ScanContext, data *model.QuizRoomData) (*game.ScanResult, error) {
	switch data.Phase {
	case model.PhaseAnnounce, model.PhaseScanning, model.PhaseListening:
	default:
		return phaseError(data.Phase), nil
	}

	q := data.Questions[data.CurrentQuestion]
	data.Phase = model.PhaseQuestion
	data.QuestionStarted = time.Now()
	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventQuestion, map[string]interface{}{
		"questionIndex": data.CurrentQuestion,
		"kind":          q.Kind,
		"text":          q.Text,
		"options":       q.Options,
		"timerSeconds":  data.TimerSeconds,
	})
	return ok(data), nil
}

// showReveal closes the answer window: the phase check on submission
// is the authoritative cutoff, not a server-side timer.
func (e *Engine) showReveal(sc *game.ScanContext, data *model.QuizRoomData) (*game.ScanResult, error) {
	if data.Phase != model.PhaseQuestion {
		return phaseError(data.Phase), nil
	}

	q := data.Questions[data.CurrentQuestion]
	data.Phase = model.PhaseReveal
	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"questionIndex": data.CurrentQuestion,
		"correctAnswer": q.CorrectAnswer,
		"trackName":     q.TrackName,
		"trackArtist":   q.TrackArtist,
		"releaseYear":   q.ReleaseYear,
	}
	if q.Kind == model.QuestionYear {
		payload["closestGuesses"] = closestGuesses(data, q)
	} else {
		payload["optionTally"] = optionTally(data)
	}

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventReveal, payload)
	return ok(data), nil
}

func (e *Engine) showRanking(sc *game.ScanContext, data *model.QuizRoomData) (*game.ScanResult, error) {
	if data.Phase != model.PhaseReveal {
		return phaseError(data.Phase), nil
	}

	standings := computeRanking(data)
	previous := data.PrevRanking
	data.Phase = model.PhaseRanking
	data.PrevRanking = standings
	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventRanking, map[string]interface{}{
		"standings": standings,
		"previous":  previous,
	})
	return ok(data), nil
}

// finish broadcasts final standings and ends the room: a quiz that has
// run out of questions is done.
func (e *Engine) finish(sc *game.ScanContext, data *model.QuizRoomData) (*game.ScanResult, error) {
	data.Phase = model.PhaseFinal
	standings := computeRanking(data)
	data.PrevRanking = standings

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventFinal, map[string]interface{}{
		"standings": standings,
	})
	if err := sc.End(sc.Room); err != nil {
		return nil, err
	}
	return ok(data), nil
}

func (e *Engine) endQuiz(sc *game.ScanContext) (*game.ScanResult, error) {
	if err := sc.End(sc.Room); err != nil {
		return nil, err
	}
	return &game.ScanResult{Success: true, Data: map[string]interface{}{"state": sc.Room.State}}, nil
}

func announcePayload(data *model.QuizRoomData) map[string]interface{} {
	q := data.Questions[data.CurrentQuestion]
	// Track identity only; for year questions the release year is the
	// answer, so it never rides along here.
	return map[string]interface{}{
		"questionIndex":  data.CurrentQuestion,
		"totalQuestions": len(data.Questions),
		"trackId":        q.TrackID,
		"trackName":      q.TrackName,
		"trackArtist":    q.TrackArtist,
		"requiresScan":   q.RequiresScan,
	}
}

// optionTally counts submitted answers per option for choice and order
// questions.
func optionTally(data *model.QuizRoomData) map[string]int {
	tally := make(map[string]int)
	for connID := range data.Answers {
		if a := data.AnswerTo(connID, data.CurrentQuestion); a != nil {
			tally[a.Answer]++
		}
	}
	return tally
}

// guessEntry is one row of the year-question reveal leaderboard.
type guessEntry struct {
	Name  string `json:"name"`
	Guess int    `json:"guess"`
	Diff  int    `json:"diff"`
}

// closestGuesses is the top-5 nearest year guesses for the current
// question.
func closestGuesses(data *model.QuizRoomData, q model.Question) []guessEntry {
	var entries []guessEntry
	for connID := range data.Answers {
		a := data.AnswerTo(connID, data.CurrentQuestion)
		if a == nil {
			continue
		}
		player, okPlayer := data.Players[connID]
		if !okPlayer {
			continue
		}
		guess, err := strconv.Atoi(a.Answer)
		if err != nil {
			continue
		}
		diff := guess - q.ReleaseYear
		if diff < 0 {
			diff = -diff
		}
		entries = append(entries, guessEntry{Name: player.Name, Guess: guess, Diff: diff})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Diff != entries[j].Diff {
			return entries[i].Diff < entries[j].Diff
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > 5 {
		entries = entries[:5]
	}
	return entries
}

// computeRanking sorts players by cumulative score and counts each
// player's streak of consecutive correct answers, newest backward.
func computeRanking(data *model.QuizRoomData) []model.RankingEntry {
	entries := make([]model.RankingEntry, 0, len(data.Players))
	for connID, player := range data.Players {
		entries = append(entries, model.RankingEntry{
			Name:   player.Name,
			Score:  player.Score,
			Streak: streak(data.Answers[connID]),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func streak(answers []model.QuizAnswer) int {
	n := 0
	for i := len(answers) - 1; i >= 0; i-- {
		if !answers[i].Correct {
			break
		}
		n++
	}
	return n
}

func ok(data *model.QuizRoomData) *game.ScanResult {
	return &game.ScanResult{Success: true, Data: map[string]interface{}{
		"phase":           data.Phase,
		"currentQuestion": data.CurrentQuestion,
	}}
}

func phaseError(phase model.QuizPhase) *game.ScanResult {
	return &game.ScanResult{Success: false, Error: fmt.Sprintf("action not allowed in phase %s", phase)}
}
