package model

// BingoMode selects which lines win a bingo round.
type BingoMode string

const (
	BingoHorizontal BingoMode = "HORIZONTAL"
	BingoVertical   BingoMode = "VERTICAL"
	BingoDiagonal   BingoMode = "DIAGONAL"
	BingoFullCard   BingoMode = "FULL_CARD"
)

// BingoRoomData is the bingo plugin's slice of a room. TrackMapping is
// computed once at room creation (track id -> 1-based bingo number) so
// scans never hit the catalog. PlayedNumbers holds the called bingo
// numbers in call order; appends are idempotent.
type BingoRoomData struct {
	GameMode      BingoMode      `json:"gameMode" bson:"gameMode"`
	PlaylistID    string         `json:"playlistId" bson:"playlistId"`
	TrackMapping  map[string]int `json:"trackMapping" bson:"trackMapping"`
	PlayedNumbers []int          `json:"playedNumbers" bson:"playedNumbers"`
	Round         int            `json:"round" bson:"round"`
}

// Played reports whether a bingo number has been called.
func (d *BingoRoomData) Played(number int) bool {
	for _, n := range d.PlayedNumbers {
		if n == number {
			return true
		}
	}
	return false
}
