package quiz

import "math"

const (
	maxPoints = 1000
	// Answers landing inside this window get full points.
	fullPointsWindow = 0.5
	// Year guesses this many years off (or more) score nothing.
	yearMissRange = 15
)

// choiceScore is the time-decayed score for strict-equality questions
// (multiple choice and release-order positions). Full points before
// the 0.5s window closes, then a linear decay over twice the timer
// length, never below zero.
func choiceScore(correct bool, elapsedSec float64, timerSec int) int {
	if !correct {
		return 0
	}
	if elapsedSec < fullPointsWindow {
		return maxPoints
	}
	score := math.Round((1 - elapsedSec/(2*float64(timerSec))) * maxPoints)
	if score < 0 {
		return 0
	}
	return int(score)
}

// yearScore is the proximity score for release-year estimations. Only
// an exact year counts as correct, but near misses still earn points,
// scaled down linearly over the miss range and by a mild speed factor
// that never drops below 0.8.
func yearScore(guess, correctYear int, elapsedSec float64, timerSec int) (score int, correct bool) {
	diff := guess - correctYear
	if diff < 0 {
		diff = -diff
	}
	if diff >= yearMissRange {
		return 0, false
	}

	speed := 1 - elapsedSec/float64(timerSec)*0.2
	if speed < 0.8 {
		speed = 0.8
	}
	score = int(math.Round(maxPoints * (1 - float64(diff)/yearMissRange) * speed))
	return score, diff == 0
}
