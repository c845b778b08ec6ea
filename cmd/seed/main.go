// Seeds a demo track catalog, playlist and quiz for local development.
package main

import (
	"cardparty/internal/config"
	"cardparty/internal/model"
	"cardparty/internal/repository"
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const demoPlaylist = "demo-playlist"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	trackRepo := repository.NewTrackRepo(db)
	quizRepo := repository.NewQuizRepo(db)

	tracks := demoTracks()
	for i := range tracks {
		if err := trackRepo.Upsert(ctx, &tracks[i]); err != nil {
			log.Fatalf("Failed to seed track %s: %v", tracks[i].ID, err)
		}
	}
	log.Printf("Seeded %d tracks into playlist %s", len(tracks), demoPlaylist)

	quiz := demoQuiz(tracks)
	if err := quizRepo.Upsert(ctx, &quiz); err != nil {
		log.Fatalf("Failed to seed quiz: %v", err)
	}
	log.Printf("Seeded quiz %s with %d questions", quiz.ID, len(quiz.Questions))
}

func demoTracks() []model.Track {
	names := []struct {
		name   string
		artist string
		year   int
	}{
		{"Take On Me", "a-ha", 1985},
		{"Billie Jean", "Michael Jackson", 1983},
		{"Smells Like Teen Spirit", "Nirvana", 1991},
		{"Wonderwall", "Oasis", 1995},
		{"Hey Ya!", "OutKast", 2003},
		{"Rolling in the Deep", "Adele", 2010},
		{"Bohemian Rhapsody", "Queen", 1975},
		{"Like a Prayer", "Madonna", 1989},
		{"Lose Yourself", "Eminem", 2002},
		{"Get Lucky", "Daft Punk", 2013},
		{"Dancing Queen", "ABBA", 1976},
		{"Purple Rain", "Prince", 1984},
		{"Zombie", "The Cranberries", 1994},
		{"Crazy in Love", "Beyoncé", 2003},
		{"Seven Nation Army", "The White Stripes", 2003},
		{"Superstition", "Stevie Wonder", 1972},
		{"Mr. Brightside", "The Killers", 2004},
		{"Respect", "Aretha Franklin", 1967},
		{"Blinding Lights", "The Weeknd", 2019},
		{"Africa", "Toto", 1982},
		{"Wannabe", "Spice Girls", 1996},
		{"Hotel California", "Eagles", 1977},
		{"Umbrella", "Rihanna", 2007},
		{"Sweet Child O' Mine", "Guns N' Roses", 1987},
		{"Shape of You", "Ed Sheeran", 2017},
	}

	tracks := make([]model.Track, len(names))
	for i, n := range names {
		tracks[i] = model.Track{
			ID:          fmt.Sprintf("trk_%03d", i+1),
			Name:        n.name,
			Artist:      n.artist,
			ReleaseYear: n.year,
			PlaylistID:  demoPlaylist,
			Position:    i + 1,
		}
	}
	return tracks
}

func demoQuiz(tracks []model.Track) model.Quiz {
	questions := []model.Question{
		question(tracks[0], model.QuestionYear, "When was this track released?", nil, strconv.Itoa(tracks[0].ReleaseYear)),
		question(tracks[1], model.QuestionChoice, "Who performs this track?", []string{"Prince", "Michael Jackson", "Lionel Richie", "Stevie Wonder"}, "Michael Jackson"),
		question(tracks[2], model.QuestionYear, "When was this track released?", nil, strconv.Itoa(tracks[2].ReleaseYear)),
		question(tracks[3], model.QuestionOrder, "Place this track in release order", []string{"first", "second", "third", "fourth"}, "2"),
		question(tracks[4], model.QuestionChoice, "Which duo recorded this one?", []string{"Daft Punk", "OutKast", "The White Stripes", "Simon & Garfunkel"}, "OutKast"),
	}

	return model.Quiz{
		ID:        "demo-quiz",
		OwnerID:   "user_seed",
		Title:     "Demo Music Quiz",
		Questions: questions,
		CreatedAt: time.Now(),
	}
}

func question(t model.Track, kind model.QuestionKind, text string, opts []string, answer string) model.Question {
	return model.Question{
		TrackID:       t.ID,
		TrackName:     t.Name,
		TrackArtist:   t.Artist,
		ReleaseYear:   t.ReleaseYear,
		Kind:          kind,
		Text:          text,
		Options:       opts,
		CorrectAnswer: answer,
		RequiresScan:  true,
	}
}
