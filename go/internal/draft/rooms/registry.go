// Package rooms tracks every live draft room. Each room runs its own actor
// goroutine; the registry only routes to them, so one room's transitions
// never block another's.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/draft/resolver"
	"github.com/draftkit/draftroom/go/internal/draft/room"
	"github.com/draftkit/draftroom/go/internal/models"
)

// ErrRoomNotFound is returned when routing to an unknown room id.
var ErrRoomNotFound = errors.New("room not found")

// Registry owns the set of live rooms.
type Registry struct {
	clock     clockwork.Clock
	publisher room.Publisher
	defaults  models.RoomSettings

	mu      sync.RWMutex
	rooms   map[uuid.UUID]*room.Room
	cancels map[uuid.UUID]context.CancelFunc
}

// NewRegistry returns an empty registry. publisher may be nil.
func NewRegistry(clock clockwork.Clock, publisher room.Publisher, defaults models.RoomSettings) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Registry{
		clock:     clock,
		publisher: publisher,
		defaults:  defaults,
		rooms:     make(map[uuid.UUID]*room.Room),
		cancels:   make(map[uuid.UUID]context.CancelFunc),
	}
}

// CreateRoomRequest carries room-creation parameters. Zero-valued Settings
// fields fall back to the registry defaults.
type CreateRoomRequest struct {
	Settings     *models.RoomSettings
	FastMode     bool
	Participants []models.Participant
	Players      []models.Player
	Strategy     resolver.AutoPickStrategy
	OnSnapshot   func(room.Snapshot)
}

// CreateRoom forms a room, starts its actor, and returns it. The actor stops
// when ctx is cancelled or the registry closes the room.
func (g *Registry) CreateRoom(ctx context.Context, req CreateRoomRequest) (*room.Room, error) {
	settings := g.defaults
	if req.FastMode {
		settings = models.FastRoomSettings()
	}
	if req.Settings != nil {
		settings = *req.Settings
	}

	r, err := room.New(room.Config{
		Settings:     settings,
		Participants: req.Participants,
		Players:      req.Players,
		Strategy:     req.Strategy,
		Clock:        g.clock,
		Publisher:    g.publisher,
		OnSnapshot:   req.OnSnapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	roomCtx, cancel := context.WithCancel(ctx)

	g.mu.Lock()
	g.rooms[r.ID()] = r
	g.cancels[r.ID()] = cancel
	g.mu.Unlock()

	go r.Run(roomCtx)

	log.Info().Str("room_id", r.ID().String()).Int("team_count", settings.TeamCount).
		Bool("fast_mode", req.FastMode).Msg("room created")
	return r, nil
}

// Room returns the live room with the given id.
func (g *Registry) Room(id uuid.UUID) (*room.Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return r, nil
}

// CloseRoom stops a room's actor and forgets it.
func (g *Registry) CloseRoom(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	cancel, ok := g.cancels[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	cancel()
	delete(g.rooms, id)
	delete(g.cancels, id)
	log.Info().Str("room_id", id.String()).Msg("room closed")
	return nil
}

// Len reports how many rooms are live.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// Close stops every room.
func (g *Registry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, cancel := range g.cancels {
		cancel()
		delete(g.rooms, id)
		delete(g.cancels, id)
	}
}
