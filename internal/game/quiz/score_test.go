package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChoiceScore(t *testing.T) {
	tests := []struct {
		name    string
		correct bool
		elapsed float64
		timer   int
		want    int
	}{
		{name: "instant answer gets full points", correct: true, elapsed: 0.4, timer: 20, want: 1000},
		{name: "window boundary starts the decay", correct: true, elapsed: 0.5, timer: 20, want: 988},
		{name: "halfway through the timer", correct: true, elapsed: 10, timer: 20, want: 750},
		{name: "full timer elapsed", correct: true, elapsed: 20, timer: 20, want: 500},
		{name: "never below zero", correct: true, elapsed: 45, timer: 20, want: 0},
		{name: "wrong answer scores nothing however fast", correct: false, elapsed: 0.1, timer: 20, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, choiceScore(tt.correct, tt.elapsed, tt.timer))
		})
	}
}

func TestYearScore(t *testing.T) {
	tests := []struct {
		name        string
		guess       int
		year        int
		elapsed     float64
		timer       int
		wantScore   int
		wantCorrect bool
	}{
		{name: "exact and instant", guess: 1994, year: 1994, elapsed: 0, timer: 20, wantScore: 1000, wantCorrect: true},
		{name: "exact but slow hits the speed floor", guess: 1994, year: 1994, elapsed: 20, timer: 20, wantScore: 800, wantCorrect: true},
		{name: "speed factor never drops below the floor", guess: 1994, year: 1994, elapsed: 100, timer: 20, wantScore: 800, wantCorrect: true},
		{name: "seven years off", guess: 2001, year: 1994, elapsed: 1, timer: 20, wantScore: 528, wantCorrect: false},
		{name: "near the miss range", guess: 2008, year: 1994, elapsed: 0, timer: 20, wantScore: 67, wantCorrect: false},
		{name: "at the miss range", guess: 2009, year: 1994, elapsed: 0, timer: 20, wantScore: 0, wantCorrect: false},
		{name: "way off", guess: 2014, year: 1994, elapsed: 0, timer: 20, wantScore: 0, wantCorrect: false},
		{name: "undershooting counts the same", guess: 1987, year: 1994, elapsed: 1, timer: 20, wantScore: 528, wantCorrect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, correct := yearScore(tt.guess, tt.year, tt.elapsed, tt.timer)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantCorrect, correct)
		})
	}
}
