package store

import (
	"cardparty/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const activeSetKey = "rooms:active"

// RoomStore is the shared room state every server process reads and
// writes. All mutation is read-modify-write with no cross-process
// lock: gameplay events for one room are serialized by the
// originating client, and the rare concurrent write resolves as
// last-writer-wins. That trade-off is deliberate (latency over strict
// linearizability); handlers compensate by being idempotent.
type RoomStore interface {
	// Get returns the room, or nil when the key is absent or expired.
	Get(ctx context.Context, roomID string) (*model.Room, error)
	// Put overwrites the room, resets its expiry and re-indexes it in
	// the active-room set.
	Put(ctx context.Context, room *model.Room, ttl time.Duration) error
	// Remove deletes the room state and drops it from the active set.
	Remove(ctx context.Context, roomID string) error
	// Deactivate drops the room from the active set but leaves its
	// state readable until the TTL runs out (ended rooms still answer
	// validation checks).
	Deactivate(ctx context.Context, roomID string) error
	// ActiveRooms lists the ids currently in the active set.
	ActiveRooms(ctx context.Context) ([]string, error)
}

type roomStore struct {
	client *redis.Client
}

func NewRoomStore(client *redis.Client) RoomStore {
	return &roomStore{client: client}
}

func (s *roomStore) key(roomID string) string {
	return fmt.Sprintf("room:%s", roomID)
}

func (s *roomStore) Get(ctx context.Context, roomID string) (*model.Room, error) {
	data, err := s.client.Get(ctx, s.key(roomID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *roomStore) Put(ctx context.Context, room *model.Room, ttl time.Duration) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(room.UUID), data, ttl).Err(); err != nil {
		return err
	}
	return s.client.SAdd(ctx, activeSetKey, room.UUID).Err()
}

func (s *roomStore) Remove(ctx context.Context, roomID string) error {
	if err := s.client.Del(ctx, s.key(roomID)).Err(); err != nil {
		return err
	}
	return s.client.SRem(ctx, activeSetKey, roomID).Err()
}

func (s *roomStore) Deactivate(ctx context.Context, roomID string) error {
	return s.client.SRem(ctx, activeSetKey, roomID).Err()
}

func (s *roomStore) ActiveRooms(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, activeSetKey).Result()
}
