package service

import (
	"cardparty/internal/game"
	"cardparty/internal/model"
	"cardparty/internal/repository"
	"cardparty/internal/store"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomEnded    = errors.New("room has ended")
	ErrNotOwner     = errors.New("not the room owner")
)

// Event types every room can receive, regardless of game.
const (
	EventRoomEnded         = "roomEnded"
	EventRoomExpired       = "roomExpired"
	EventPluginDataChanged = "pluginDataChanged"
)

// RoomService owns the room lifecycle: creation, TTL refresh on every
// gameplay mutation, explicit termination, and the inactivity sweep.
type RoomService struct {
	repo        repository.RoomRepo
	store       store.RoomStore
	registry    *game.Registry
	broadcaster game.Broadcaster

	ttl               time.Duration
	inactivityTimeout time.Duration
	baseURL           string
}

func NewRoomService(
	repo repository.RoomRepo,
	st store.RoomStore,
	registry *game.Registry,
	ttl, inactivityTimeout time.Duration,
	baseURL string,
) *RoomService {
	return &RoomService{
		repo:              repo,
		store:             st,
		registry:          registry,
		ttl:               ttl,
		inactivityTimeout: inactivityTimeout,
		baseURL:           baseURL,
	}
}

// SetBroadcaster wires the WebSocket hub in after construction (the
// hub needs services too, so one side attaches late).
func (s *RoomService) SetBroadcaster(b game.Broadcaster) {
	s.broadcaster = b
}

// Create builds a room of the requested type: durable record, store
// entry with TTL, and the QR payload string for printing.
func (s *RoomService) Create(ctx context.Context, ownerID string, roomType model.RoomType, opts map[string]interface{}) (*model.Room, string, error) {
	plugin, okPlugin := s.registry.ForRoomType(roomType)
	if !okPlugin {
		return nil, "", fmt.Errorf("unknown room type %q", roomType)
	}

	data, err := plugin.DefaultData(ctx, opts)
	if err != nil {
		return nil, "", err
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("allocate room id: %w", err)
	}

	now := time.Now()
	room := &model.Room{
		ID:           id,
		UUID:         uuid.New().String(),
		Type:         roomType,
		OwnerID:      ownerID,
		State:        model.RoomCreated,
		LastActivity: now,
		CreatedAt:    now,
		Data:         data,
	}

	if err := s.repo.Create(ctx, room); err != nil {
		return nil, "", fmt.Errorf("persist room: %w", err)
	}
	if err := s.store.Put(ctx, room, s.ttl); err != nil {
		return nil, "", fmt.Errorf("cache room: %w", err)
	}

	return room, s.QRPayload(room), nil
}

// QRPayload is the string printed into the room's QR code; scanning it
// sends an RS message for this room.
func (s *RoomService) QRPayload(room *model.Room) string {
	return fmt.Sprintf("%s/r/%s?m=RS", s.baseURL, room.UUID)
}

// Get reads the durable record.
func (s *RoomService) Get(ctx context.Context, roomUUID string) (*model.Room, error) {
	return s.repo.GetByUUID(ctx, roomUUID)
}

// Live reads the shared store entry; nil means absent or expired.
func (s *RoomService) Live(ctx context.Context, roomUUID string) (*model.Room, error) {
	return s.store.Get(ctx, roomUUID)
}

// SaveLive writes a mutated room back, refreshing activity and TTL.
// Read-modify-write with no cross-process lock; see store.RoomStore.
func (s *RoomService) SaveLive(ctx context.Context, room *model.Room) error {
	room.Touch()
	return s.store.Put(ctx, room, s.ttl)
}

// End terminates a room. Idempotent: ending an ended room changes
// nothing. The store entry stays readable (validation scans report
// "ended") but leaves the active index.
func (s *RoomService) End(ctx context.Context, room *model.Room) error {
	if room.State != model.RoomEnded {
		now := time.Now()
		room.EndedAt = &now
		if err := room.Advance(model.RoomEnded); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, room); err != nil {
			return fmt.Errorf("persist room end: %w", err)
		}
		if err := s.store.Put(ctx, room, s.ttl); err != nil {
			return fmt.Errorf("cache room end: %w", err)
		}
	}
	if err := s.store.Deactivate(ctx, room.UUID); err != nil {
		return err
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(room.UUID, EventRoomEnded, map[string]interface{}{
			"roomId": room.UUID,
		})
	}
	return nil
}

// EndByOwner ends a room on the owner's explicit request.
func (s *RoomService) EndByOwner(ctx context.Context, roomUUID, ownerID string) error {
	room, err := s.repo.GetByUUID(ctx, roomUUID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}
	if room.OwnerID != ownerID {
		return ErrNotOwner
	}
	// Prefer live state so the end preserves gameplay progress.
	if live, liveErr := s.store.Get(ctx, roomUUID); liveErr == nil && live != nil {
		room = live
	}
	return s.End(ctx, room)
}

// UpdatePluginData replaces a room's plugin data after the owning
// plugin validates the replacement.
func (s *RoomService) UpdatePluginData(ctx context.Context, roomUUID, ownerID string, data *model.PluginData) (*model.Room, error) {
	room, err := s.store.Get(ctx, roomUUID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if room.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	if room.State == model.RoomEnded {
		return nil, ErrRoomEnded
	}

	plugin, okPlugin := s.registry.ForRoomType(room.Type)
	if !okPlugin {
		return nil, fmt.Errorf("unknown room type %q", room.Type)
	}
	if err := plugin.ValidateUpdate(room, data); err != nil {
		return nil, err
	}

	room.Data = *data
	if err := s.SaveLive(ctx, room); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(room.UUID, EventPluginDataChanged, map[string]interface{}{
			"roomId": room.UUID,
			"data":   room.Data,
		})
	}
	return room, nil
}

// ScanContext builds the mutation context handed to game plugins.
func (s *RoomService) ScanContext(ctx context.Context, room *model.Room) *game.ScanContext {
	return &game.ScanContext{
		Ctx:  ctx,
		Room: room,
		Save: func(r *model.Room) error {
			return s.SaveLive(ctx, r)
		},
		End: func(r *model.Room) error {
			return s.End(ctx, r)
		},
		Broadcaster: s.broadcaster,
	}
}

// RunSweeper expires inactive rooms until ctx is done.
func (s *RoomService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				log.Printf("room sweep: %v", err)
			}
		}
	}
}

// Sweep runs one inactivity pass over the active-room index.
func (s *RoomService) Sweep(ctx context.Context) error {
	ids, err := s.store.ActiveRooms(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		room, err := s.store.Get(ctx, id)
		if err != nil {
			log.Printf("room sweep: load %s: %v", id, err)
			continue
		}
		if room == nil {
			// Key expired underneath the index.
			if err := s.store.Deactivate(ctx, id); err != nil {
				log.Printf("room sweep: deindex %s: %v", id, err)
			}
			continue
		}
		if time.Since(room.LastActivity) < s.inactivityTimeout {
			continue
		}

		log.Printf("room sweep: expiring %s (last activity %s)", id, room.LastActivity.Format(time.RFC3339))
		now := time.Now()
		room.EndedAt = &now
		if err := room.Advance(model.RoomEnded); err != nil {
			log.Printf("room sweep: end %s: %v", id, err)
			continue
		}
		if err := s.repo.Update(ctx, room); err != nil {
			log.Printf("room sweep: persist %s: %v", id, err)
		}
		if err := s.store.Remove(ctx, id); err != nil {
			log.Printf("room sweep: remove %s: %v", id, err)
		}
		if s.broadcaster != nil {
			s.broadcaster.Broadcast(id, EventRoomExpired, map[string]interface{}{
				"roomId": id,
			})
		}
	}
	return nil
}
