package repository

import (
	"cardparty/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RoomRepo interface {
	Create(ctx context.Context, room *model.Room) error
	GetByUUID(ctx context.Context, uuid string) (*model.Room, error)
	Update(ctx context.Context, room *model.Room) error
	NextID(ctx context.Context) (int64, error)
}

type roomRepo struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

func NewRoomRepo(db *mongo.Database) RoomRepo {
	return &roomRepo{
		collection: db.Collection("rooms"),
		counters:   db.Collection("counters"),
	}
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	_, err := r.collection.InsertOne(ctx, room)
	return err
}

func (r *roomRepo) GetByUUID(ctx context.Context, uuid string) (*model.Room, error) {
	var room model.Room
	err := r.collection.FindOne(ctx, bson.M{"uuid": uuid}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) Update(ctx context.Context, room *model.Room) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"uuid": room.UUID}, room)
	return err
}

// NextID hands out durable numeric room ids from a counter document.
func (r *roomRepo) NextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "rooms"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
