// Package resolver turns manual picks and clock expiries into committed
// picks. It validates legality against the snake order and the set of
// drafted players; when a clock expires it consults the participant's queue
// first and falls back to the room's autopick strategy.
package resolver

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/draft/events"
	"github.com/draftkit/draftroom/go/internal/draft/queue"
	"github.com/draftkit/draftroom/go/internal/draft/snake"
	"github.com/draftkit/draftroom/go/internal/models"
)

// View is the read-only slice of room state a resolution needs. The room
// actor builds one per call; the resolver never holds state of its own
// beyond its strategy.
type View struct {
	RoomID       uuid.UUID
	Order        snake.Order
	PickNumber   int
	Participants []models.Participant // indexed by draft position
	Drafted      map[uuid.UUID]bool
	Available    []models.Player // undrafted players, for autopick strategies
}

// OnClock returns the participant who owns the view's current pick number.
func (v View) OnClock() (models.Participant, error) {
	seat, err := v.Order.Seat(v.PickNumber)
	if err != nil {
		return models.Participant{}, err
	}
	if seat >= len(v.Participants) {
		return models.Participant{}, fmt.Errorf("seat %d has no participant (%d seated)", seat, len(v.Participants))
	}
	return v.Participants[seat], nil
}

// Resolver builds committed picks. One per room.
type Resolver struct {
	clock  clockwork.Clock
	queues *queue.Manager
	strat  AutoPickStrategy
}

// New returns a resolver using the given autopick strategy for expired
// clocks with empty queues.
func New(clock clockwork.Clock, queues *queue.Manager, strat AutoPickStrategy) *Resolver {
	return &Resolver{
		clock:  clock,
		queues: queues,
		strat:  strat,
	}
}

// ResolveManual validates a participant's own selection and returns the pick
// to commit. A *events.Rejection is returned for currently-illegal requests;
// a plain error is a usage or consistency failure.
func (r *Resolver) ResolveManual(v View, participantID uuid.UUID, player models.Player) (models.Pick, *events.Rejection, error) {
	onClock, err := v.OnClock()
	if err != nil {
		return models.Pick{}, nil, err
	}
	if onClock.ID != participantID {
		return models.Pick{}, r.reject(events.ReasonNotYourTurn, participantID, player.ID,
			fmt.Sprintf("pick %d belongs to %s", v.PickNumber, onClock.DisplayName)), nil
	}
	if v.Drafted[player.ID] {
		return models.Pick{}, r.reject(events.ReasonPlayerDrafted, participantID, player.ID,
			player.FullName+" is already drafted"), nil
	}

	pick, err := r.buildPick(v, onClock, &player, false)
	if err != nil {
		return models.Pick{}, nil, err
	}
	return pick, nil, nil
}

// ResolveExpired produces the autopick for the participant on the clock.
// The queue head wins when present; otherwise the strategy decides. Expiry
// must always yield a commit (possibly a skipped one), or the room would
// stall.
func (r *Resolver) ResolveExpired(v View) (models.Pick, error) {
	onClock, err := v.OnClock()
	if err != nil {
		return models.Pick{}, err
	}

	if entry, ok := r.queues.DequeueFirst(onClock.ID); ok {
		if v.Drafted[entry.Player.ID] {
			// Purge-on-commit should make this unreachable.
			return models.Pick{}, fmt.Errorf("queued player %s already drafted; queue purge missed it", entry.Player.ID)
		}
		log.Debug().
			Str("room_id", v.RoomID.String()).
			Str("participant_id", onClock.ID.String()).
			Str("player_id", entry.Player.ID.String()).
			Msg("autopick from queue")
		return r.buildPick(v, onClock, &entry.Player, true)
	}

	player, err := r.strat.Select(v, onClock)
	if err == ErrSkipTurn {
		return r.buildPick(v, onClock, nil, true)
	}
	if err != nil {
		return models.Pick{}, fmt.Errorf("autopick strategy: %w", err)
	}
	log.Debug().
		Str("room_id", v.RoomID.String()).
		Str("participant_id", onClock.ID.String()).
		Str("player_id", player.ID.String()).
		Msg("autopick from strategy")
	return r.buildPick(v, onClock, &player, true)
}

func (r *Resolver) buildPick(v View, participant models.Participant, player *models.Player, auto bool) (models.Pick, error) {
	round, err := v.Order.Round(v.PickNumber)
	if err != nil {
		return models.Pick{}, err
	}
	pickInRound, err := v.Order.PickInRound(v.PickNumber)
	if err != nil {
		return models.Pick{}, err
	}
	return models.Pick{
		PickNumber:    v.PickNumber,
		Round:         round,
		PickInRound:   pickInRound,
		ParticipantID: participant.ID,
		Player:        player,
		PickedAt:      r.clock.Now(),
		Auto:          auto,
		Skipped:       player == nil,
	}, nil
}

func (r *Resolver) reject(reason events.RejectReason, participantID, playerID uuid.UUID, detail string) *events.Rejection {
	return &events.Rejection{
		Reason:        reason,
		ParticipantID: participantID.String(),
		PlayerID:      playerID.String(),
		Detail:        detail,
		RejectedAt:    r.clock.Now(),
	}
}
