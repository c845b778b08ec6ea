package model

// Track is one catalog entry. The catalog is an external collaborator
// as far as gameplay is concerned; rooms only see it through the
// precomputed mappings and cached question sets built at creation.
type Track struct {
	ID          string `json:"trackId" bson:"_id"`
	Name        string `json:"trackName" bson:"name"`
	Artist      string `json:"trackArtist" bson:"artist"`
	ReleaseYear int    `json:"releaseYear" bson:"releaseYear"`
	PlaylistID  string `json:"playlistId" bson:"playlistId"`
	// Position is the 1-based slot of the track within its playlist,
	// which becomes the bingo number.
	Position int `json:"position" bson:"position"`
}
