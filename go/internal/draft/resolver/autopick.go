package resolver

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/draftkit/draftroom/go/internal/models"
)

// ErrSkipTurn is returned by a strategy that declines to select anyone; the
// turn commits as a skipped pick so the room keeps moving.
var ErrSkipTurn = errors.New("skip turn")

// AutoPickStrategy decides the fallback selection when a pick clock expires
// and the participant's queue is empty. Product requirements here move
// often, so the policy is injected per room rather than hard-coded.
type AutoPickStrategy interface {
	Select(v View, onClock models.Participant) (models.Player, error)
}

// HighestProjectedStrategy takes the available player with the most
// projected points, breaking ties toward the lower (better) ADP. This is the
// room default.
type HighestProjectedStrategy struct{}

// NewHighestProjectedStrategy constructs the default strategy.
func NewHighestProjectedStrategy() *HighestProjectedStrategy {
	return &HighestProjectedStrategy{}
}

// Select implements AutoPickStrategy.
func (s *HighestProjectedStrategy) Select(v View, _ models.Participant) (models.Player, error) {
	if len(v.Available) == 0 {
		return models.Player{}, fmt.Errorf("no available players at pick %d", v.PickNumber)
	}
	best := v.Available[0]
	for _, p := range v.Available[1:] {
		if p.ProjectedPoints > best.ProjectedPoints ||
			(p.ProjectedPoints == best.ProjectedPoints && p.ADP < best.ADP) {
			best = p
		}
	}
	return best, nil
}

// RandomStrategy picks uniformly among available players. Used by test and
// mock rooms.
type RandomStrategy struct {
	rng *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Select implements AutoPickStrategy.
func (s *RandomStrategy) Select(v View, _ models.Participant) (models.Player, error) {
	if len(v.Available) == 0 {
		return models.Player{}, fmt.Errorf("no available players at pick %d", v.PickNumber)
	}
	return v.Available[s.rng.Intn(len(v.Available))], nil
}

// SkipStrategy never selects; expired turns commit as skipped picks.
type SkipStrategy struct{}

// Select implements AutoPickStrategy.
func (s *SkipStrategy) Select(View, models.Participant) (models.Player, error) {
	return models.Player{}, ErrSkipTurn
}
