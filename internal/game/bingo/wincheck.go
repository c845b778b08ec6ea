package bingo

import "cardparty/internal/model"

// Cards are 5x5 grids indexed 0..24 row-major. The center cell is a
// free space and counts as marked on every card.
const (
	gridSize = 25
	freeCell = 12
)

// CheckResult is the outcome of a win check. It is broadcast verbatim
// to the room, so it carries the post-check values the clients render
// from: the sheet that was checked, the round, and the matched count
// over the whole card including the free space.
type CheckResult struct {
	IsWinner         bool            `json:"isWinner"`
	MatchedCount     int             `json:"matchedCount"`
	GameMode         model.BingoMode `json:"gameMode"`
	WinningPositions []int           `json:"winningPositions,omitempty"`
	Round            int             `json:"round"`
	Sheet            []int           `json:"sheet"`
}

var (
	rows = [][]int{
		{0, 1, 2, 3, 4},
		{5, 6, 7, 8, 9},
		{10, 11, 12, 13, 14},
		{15, 16, 17, 18, 19},
		{20, 21, 22, 23, 24},
	}
	columns = [][]int{
		{0, 5, 10, 15, 20},
		{1, 6, 11, 16, 21},
		{2, 7, 12, 17, 22},
		{3, 8, 13, 18, 23},
		{4, 9, 14, 19, 24},
	}
	diagonals = [][]int{
		{0, 6, 12, 18, 24},
		{4, 8, 12, 16, 20},
	}
)

// CheckWin is a pure function of the sheet, the called numbers and the
// game mode. Lines are evaluated in a fixed order, so the first fully
// marked line in scan order wins; calling more numbers can never
// un-win a line.
func CheckWin(sheet []int, played []int, mode model.BingoMode, round int) CheckResult {
	playedSet := make(map[int]bool, len(played))
	for _, n := range played {
		playedSet[n] = true
	}

	marked := make([]bool, gridSize)
	matched := 0
	for i := 0; i < gridSize; i++ {
		if i == freeCell || (i < len(sheet) && playedSet[sheet[i]]) {
			marked[i] = true
			matched++
		}
	}

	result := CheckResult{
		MatchedCount: matched,
		GameMode:     mode,
		Round:        round,
		Sheet:        sheet,
	}

	var lines [][]int
	switch mode {
	case model.BingoHorizontal:
		lines = rows
	case model.BingoVertical:
		lines = columns
	case model.BingoDiagonal:
		lines = diagonals
	case model.BingoFullCard:
		if matched == gridSize {
			result.IsWinner = true
			result.WinningPositions = allPositions()
		}
		return result
	default:
		return result
	}

	for _, line := range lines {
		if allMarked(marked, line) {
			result.IsWinner = true
			result.WinningPositions = line
			return result
		}
	}
	return result
}

func allMarked(marked []bool, line []int) bool {
	for _, i := range line {
		if !marked[i] {
			return false
		}
	}
	return true
}

func allPositions() []int {
	positions := make([]int, gridSize)
	for i := range positions {
		positions[i] = i
	}
	return positions
}
