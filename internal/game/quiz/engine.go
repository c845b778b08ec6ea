// Package quiz implements the live music-quiz plugin: a host-driven
// phase machine where players scan the question's track card, listen,
// then answer against a timer.
package quiz

import (
	"cardparty/internal/game"
	"cardparty/internal/model"
	"cardparty/internal/repository"
	"context"
	"fmt"
)

// Event types pushed to quiz rooms.
const (
	EventAnnounce    = "quizAnnounce"
	EventScanPrompt  = "quizScanPrompt"
	EventListening   = "quizListening"
	EventWrongTrack  = "quizWrongTrack"
	EventQuestion    = "quizQuestion"
	EventAnswerCount = "quizAnswerCount"
	EventAllAnswered = "quizAllAnswered"
	EventReveal      = "quizReveal"
	EventRanking     = "quizRanking"
	EventFinal       = "quizFinal"
	EventPlayerJoin  = "playerJoined"
	EventPlayerLeft  = "playerLeft"
)

const scanType = "TS"

// Engine is the quiz game plugin.
type Engine struct {
	quizzes          repository.QuizRepo
	timerSeconds     int
	listeningSeconds int
}

func New(quizzes repository.QuizRepo, timerSeconds, listeningSeconds int) *Engine {
	return &Engine{
		quizzes:          quizzes,
		timerSeconds:     timerSeconds,
		listeningSeconds: listeningSeconds,
	}
}

func (e *Engine) Type() model.RoomType {
	return model.RoomTypeQuiz
}

// ScanTypes is empty: the quiz only reacts to TS, which the protocol
// handler delegates by room type rather than by message type.
func (e *Engine) ScanTypes() []string {
	return nil
}

// DefaultData caches the full question set in the room so gameplay
// never reloads the quiz document.
func (e *Engine) DefaultData(ctx context.Context, opts map[string]interface{}) (model.PluginData, error) {
	quizID, _ := opts["quizId"].(string)
	if quizID == "" {
		return model.PluginData{}, fmt.Errorf("quiz: quizId is required")
	}

	q, err := e.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return model.PluginData{}, fmt.Errorf("quiz: load %s: %w", quizID, err)
	}
	if q == nil {
		return model.PluginData{}, fmt.Errorf("quiz: %s not found", quizID)
	}
	if len(q.Questions) == 0 {
		return model.PluginData{}, fmt.Errorf("quiz: %s has no questions", quizID)
	}

	timer := e.timerSeconds
	if t, ok := toInt(opts["timerSeconds"]); ok && t > 0 {
		timer = t
	}
	listening := e.listeningSeconds
	if l, ok := toInt(opts["listeningSeconds"]); ok && l > 0 {
		listening = l
	}

	return model.PluginData{
		Quiz: &model.QuizRoomData{
			QuizID:           quizID,
			Questions:        q.Questions,
			CurrentQuestion:  -1,
			Phase:            model.PhaseLobby,
			Players:          make(map[string]*model.QuizPlayer),
			Answers:          make(map[string][]model.QuizAnswer),
			TimerSeconds:     timer,
			ListeningSeconds: listening,
		},
	}, nil
}

// HandleScan verifies a scanned card against the current question.
// Valid only while the room is in the scanning phase; a wrong card is
// a retryable failure, not a state change.
func (e *Engine) HandleScan(sc *game.ScanContext, msgType, payload string) (*game.ScanResult, error) {
	if msgType != scanType {
		return &game.ScanResult{Success: false, Error: fmt.Sprintf("unknown message type %q", msgType)}, nil
	}

	data := sc.Room.Data.Quiz
	if data == nil {
		return &game.ScanResult{Success: false, Error: "room has no quiz data"}, nil
	}
	if data.Phase != model.PhaseScanning {
		return &game.ScanResult{Success: false, Error: fmt.Sprintf("not expecting a scan in phase %s", data.Phase)}, nil
	}

	expected := data.Questions[data.CurrentQuestion]
	if payload != expected.TrackID {
		sc.Broadcaster.Broadcast(sc.Room.UUID, EventWrongTrack, map[string]interface{}{
			"questionIndex": data.CurrentQuestion,
		})
		return &game.ScanResult{Success: false, Error: "wrong track"}, nil
	}

	data.Phase = model.PhaseListening
	if err := sc.Save(sc.Room); err != nil {
		return nil, err
	}

	sc.Broadcaster.Broadcast(sc.Room.UUID, EventListening, map[string]interface{}{
		"questionIndex":    data.CurrentQuestion,
		"listeningSeconds": data.ListeningSeconds,
	})
	return &game.ScanResult{Success: true, Data: map[string]interface{}{
		"phase":            data.Phase,
		"listeningSeconds": data.ListeningSeconds,
	}}, nil
}

// ValidateUpdate only allows replacing quiz data wholesale before the
// game starts; once live, state changes go through the phase machine.
func (e *Engine) ValidateUpdate(room *model.Room, data *model.PluginData) error {
	if data.Quiz == nil || data.Bingo != nil {
		return fmt.Errorf("quiz: update must carry quiz data only")
	}
	if current := room.Data.Quiz; current != nil && current.Phase != model.PhaseLobby {
		return fmt.Errorf("quiz: data can only be replaced in the lobby")
	}
	if data.Quiz.Phase != model.PhaseLobby {
		return fmt.Errorf("quiz: replacement data must start in the lobby")
	}
	return nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
