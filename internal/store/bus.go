package store

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const busChannel = "cardparty.rooms"

// Event is one room event fanned out across server processes. Payload
// carries post-mutation values, never diffs: consumers re-render from
// it regardless of ordering. Role, when set, targets a single
// connection role in the room.
type Event struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId"`
	Role    string          `json:"role,omitempty"`
	Payload json.RawMessage `json:"payload"`
	Origin  string          `json:"origin"`
}

// Bus is the publish/subscribe layer between server processes. It is
// the only way one process learns about another's room mutations.
// Delivery is at-most-once with no cross-process ordering guarantee.
type Bus interface {
	Publish(ctx context.Context, ev *Event) error
	// Subscribe starts delivering events to handler until ctx is done.
	// The handler sees this process's own events too and must drop
	// them by Origin when it already delivered at publish time.
	Subscribe(ctx context.Context, handler func(*Event))
	// Origin is this process's bus identity.
	Origin() string
}

type redisBus struct {
	client *redis.Client
	origin string
}

func NewBus(client *redis.Client) Bus {
	return &redisBus{
		client: client,
		origin: uuid.New().String(),
	}
}

func (b *redisBus) Origin() string {
	return b.origin
}

func (b *redisBus) Publish(ctx context.Context, ev *Event) error {
	if ev.Origin == "" {
		ev.Origin = b.origin
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, busChannel, data).Err()
}

func (b *redisBus) Subscribe(ctx context.Context, handler func(*Event)) {
	sub := b.client.Subscribe(ctx, busChannel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("bus: dropping malformed event: %v", err)
					continue
				}
				handler(&ev)
			}
		}
	}()
}
