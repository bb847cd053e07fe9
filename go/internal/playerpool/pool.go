// Package playerpool supplies the read-only player lookup the draft engine
// consumes. The engine never writes to the pool; which players exist is
// someone else's problem.
package playerpool

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/draftkit/draftroom/go/internal/models"
)

// ErrPlayerNotFound is returned for lookups of unknown player ids.
var ErrPlayerNotFound = errors.New("player not found")

// Pool is the lookup interface rooms are seeded from.
type Pool interface {
	Player(ctx context.Context, id uuid.UUID) (models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
}

// StaticPool is an in-memory Pool, used by tests and fast-mode rooms seeded
// from a file.
type StaticPool struct {
	byID  map[uuid.UUID]models.Player
	order []uuid.UUID
}

// NewStaticPool builds a pool from a fixed player list. Duplicate ids are an
// error rather than a silent overwrite.
func NewStaticPool(players []models.Player) (*StaticPool, error) {
	byID := make(map[uuid.UUID]models.Player, len(players))
	order := make([]uuid.UUID, 0, len(players))
	for _, p := range players {
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %s", p.ID)
		}
		if !p.Position.Valid() {
			return nil, fmt.Errorf("player %s has unknown position %q", p.ID, p.Position)
		}
		byID[p.ID] = p
		order = append(order, p.ID)
	}
	return &StaticPool{byID: byID, order: order}, nil
}

// Player implements Pool.
func (s *StaticPool) Player(_ context.Context, id uuid.UUID) (models.Player, error) {
	p, ok := s.byID[id]
	if !ok {
		return models.Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return p, nil
}

// List implements Pool, returning players in insertion order.
func (s *StaticPool) List(_ context.Context) ([]models.Player, error) {
	out := make([]models.Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}
