package repository

import (
	"cardparty/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TrackRepo is the catalog collaborator: track identity plus release
// metadata, keyed by the id printed on the physical cards.
type TrackRepo interface {
	Upsert(ctx context.Context, track *model.Track) error
	ListByPlaylist(ctx context.Context, playlistID string) ([]model.Track, error)
}

type trackRepo struct {
	collection *mongo.Collection
}

func NewTrackRepo(db *mongo.Database) TrackRepo {
	return &trackRepo{collection: db.Collection("tracks")}
}

func (r *trackRepo) Upsert(ctx context.Context, track *model.Track) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": track.ID}, track, options.Replace().SetUpsert(true))
	return err
}

func (r *trackRepo) ListByPlaylist(ctx context.Context, playlistID string) ([]model.Track, error) {
	opts := options.Find().SetSort(bson.M{"position": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"playlistId": playlistID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tracks []model.Track
	if err := cursor.All(ctx, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}
