package model

import "time"

// QuizPhase is the current step of a quiz room's state machine.
type QuizPhase string

const (
	PhaseLobby     QuizPhase = "lobby"
	PhaseAnnounce  QuizPhase = "announce"
	PhaseScanning  QuizPhase = "scanning"
	PhaseListening QuizPhase = "listening"
	PhaseQuestion  QuizPhase = "question"
	PhaseReveal    QuizPhase = "reveal"
	PhaseRanking   QuizPhase = "ranking"
	PhaseFinal     QuizPhase = "final"
)

// QuestionKind selects the scoring rule for a question.
type QuestionKind string

const (
	QuestionChoice QuestionKind = "choice" // multiple choice, strict equality
	QuestionYear   QuestionKind = "year"   // release-year estimation, proximity scored
	QuestionOrder  QuestionKind = "order"  // position in release order, strict equality
)

// Question is one entry of a cached quiz question set. The track
// identity doubles as the card the players must scan before the
// question is shown.
type Question struct {
	TrackID     string       `json:"trackId" bson:"trackId"`
	TrackName   string       `json:"trackName" bson:"trackName"`
	TrackArtist string       `json:"trackArtist" bson:"trackArtist"`
	ReleaseYear int          `json:"releaseYear" bson:"releaseYear"`
	Kind        QuestionKind `json:"kind" bson:"kind"`
	Text        string       `json:"text" bson:"text"`
	Options     []string     `json:"options,omitempty" bson:"options,omitempty"`
	// CorrectAnswer is the canonical answer: the option text for
	// choice questions, the year for year questions, the position
	// index for order questions. Kept as a string so answers compare
	// uniformly.
	CorrectAnswer string `json:"correctAnswer" bson:"correctAnswer"`
	RequiresScan  bool   `json:"requiresScan" bson:"requiresScan"`
}

// Quiz is a durable question set.
type Quiz struct {
	ID        string     `json:"id" bson:"_id"`
	OwnerID   string     `json:"ownerId" bson:"ownerId"`
	Title     string     `json:"title" bson:"title"`
	Questions []Question `json:"questions" bson:"questions"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
}

// QuizPlayer is one participant, keyed in QuizRoomData.Players by
// connection id. Disconnected players stay in place with
// Connected=false so a rejoin can recover score and answers.
type QuizPlayer struct {
	Name      string `json:"name" bson:"name"`
	Score     int    `json:"score" bson:"score"`
	Connected bool   `json:"connected" bson:"connected"`
}

// QuizAnswer is one player's answer to one question. QuestionIndex
// ties the answer to its question: players can join mid-game or sit a
// question out, so list position says nothing about which question an
// entry belongs to.
type QuizAnswer struct {
	QuestionIndex int       `json:"questionIndex" bson:"questionIndex"`
	Answer        string    `json:"answer" bson:"answer"`
	AnsweredAt    time.Time `json:"answeredAt" bson:"answeredAt"`
	Score         int       `json:"score" bson:"score"`
	Correct       bool      `json:"correct" bson:"correct"`
}

// RankingEntry is one row of the standings shown in the ranking and
// final phases.
type RankingEntry struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Streak int    `json:"streak"`
	Rank   int    `json:"rank"`
}

// QuizRoomData is the quiz plugin's slice of a room. Players and
// Answers are keyed by connection id; each player's answers hold at
// most one entry per question index, appended in play order.
type QuizRoomData struct {
	QuizID           string                  `json:"quizId" bson:"quizId"`
	Questions        []Question              `json:"questions" bson:"questions"`
	CurrentQuestion  int                     `json:"currentQuestion" bson:"currentQuestion"`
	Phase            QuizPhase               `json:"phase" bson:"phase"`
	Players          map[string]*QuizPlayer  `json:"players" bson:"players"`
	Answers          map[string][]QuizAnswer `json:"answers" bson:"answers"`
	TimerSeconds     int                     `json:"timerSeconds" bson:"timerSeconds"`
	ListeningSeconds int                     `json:"listeningSeconds" bson:"listeningSeconds"`
	QuestionStarted  time.Time               `json:"questionStarted" bson:"questionStarted"`
	PrevRanking      []RankingEntry          `json:"prevRanking,omitempty" bson:"prevRanking,omitempty"`
}

// ConnectedCount reports how many players are currently attached.
func (d *QuizRoomData) ConnectedCount() int {
	n := 0
	for _, p := range d.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// AnsweredCount reports how many players have answered the question at
// the given index.
func (d *QuizRoomData) AnsweredCount(questionIndex int) int {
	n := 0
	for connID := range d.Answers {
		if d.AnswerTo(connID, questionIndex) != nil {
			n++
		}
	}
	return n
}

// AnswerTo returns a player's answer to the question at the given
// index, or nil if they have not answered it.
func (d *QuizRoomData) AnswerTo(connID string, questionIndex int) *QuizAnswer {
	answers := d.Answers[connID]
	for i := range answers {
		if answers[i].QuestionIndex == questionIndex {
			return &answers[i]
		}
	}
	return nil
}
