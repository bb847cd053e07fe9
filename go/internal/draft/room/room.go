// Package room implements the draft room controller: a single-writer actor
// that owns all mutable state for one room. Every external intent and every
// clock event is serialized through one channel, so a manual pick and a
// timer expiry can never commit concurrently for the same room, and a
// partially applied transition is never observable.
package room

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/draftkit/draftroom/go/internal/draft/events"
	"github.com/draftkit/draftroom/go/internal/draft/queue"
	"github.com/draftkit/draftroom/go/internal/draft/resolver"
	"github.com/draftkit/draftroom/go/internal/draft/snake"
	"github.com/draftkit/draftroom/go/internal/draft/timer"
	"github.com/draftkit/draftroom/go/internal/models"
)

// ErrCorruptRoom marks a room whose state failed an internal consistency
// check. A corrupt room stops advancing and refuses all further commands
// rather than guessing a recovery.
var ErrCorruptRoom = errors.New("room state corrupt")

// ErrRoomClosed is returned for commands sent after the room's actor has
// stopped.
var ErrRoomClosed = errors.New("room closed")

// Publisher receives every domain event the room emits. Implementations must
// not block for long; publishing happens on the actor goroutine.
type Publisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}

// Config carries everything needed to form a room.
type Config struct {
	ID           uuid.UUID
	Settings     models.RoomSettings
	Participants []models.Participant
	Players      []models.Player // the undrafted pool available to this room

	// Strategy decides autopicks when the expiring participant's queue is
	// empty. Defaults to highest projected points.
	Strategy resolver.AutoPickStrategy

	Clock      clockwork.Clock // defaults to the real clock
	Publisher  Publisher       // optional
	OnSnapshot func(Snapshot)  // optional; called after every accepted transition
}

// Room is one independent draft session. All fields below cmdCh are owned by
// the actor goroutine exclusively.
type Room struct {
	id         uuid.UUID
	settings   models.RoomSettings
	order      snake.Order
	thresholds timer.Thresholds
	clock      clockwork.Clock
	publisher  Publisher
	onSnapshot func(Snapshot)

	cmdCh chan command
	done  chan struct{}

	participants []models.Participant // indexed by draft position
	playersByID  map[uuid.UUID]models.Player
	poolOrder    []uuid.UUID // stable iteration order for the pool

	queues    *queue.Manager
	res       *resolver.Resolver
	pickClock *timer.PickClock

	status            models.RoomStatus
	currentPickNumber int
	picks             []models.Pick
	drafted           map[uuid.UUID]bool
	startedAt         time.Time
	haltErr           error

	inGrace       bool
	graceTimer    clockwork.Timer
	graceDeadline time.Time
	gracePaused   time.Duration
}

// New validates the configuration and returns a room in the loading state.
// The room accepts commands once Run is started.
func New(cfg Config) (*Room, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("room settings: %w", err)
	}
	order, err := snake.NewOrder(cfg.Settings.TeamCount, cfg.Settings.Rounds)
	if err != nil {
		return nil, err
	}
	if len(cfg.Participants) != cfg.Settings.TeamCount {
		return nil, fmt.Errorf("room needs %d participants, got %d", cfg.Settings.TeamCount, len(cfg.Participants))
	}

	participants := append([]models.Participant(nil), cfg.Participants...)
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].DraftPosition < participants[j].DraftPosition
	})
	for i, p := range participants {
		if p.DraftPosition != i {
			return nil, fmt.Errorf("draft positions must cover 0..%d exactly; seat %d is %d", len(participants)-1, i, p.DraftPosition)
		}
	}

	id := cfg.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	strat := cfg.Strategy
	if strat == nil {
		strat = resolver.NewHighestProjectedStrategy()
	}

	playersByID := make(map[uuid.UUID]models.Player, len(cfg.Players))
	poolOrder := make([]uuid.UUID, 0, len(cfg.Players))
	for _, p := range cfg.Players {
		if _, dup := playersByID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %s in pool", p.ID)
		}
		playersByID[p.ID] = p
		poolOrder = append(poolOrder, p.ID)
	}

	queues := queue.NewManager(clock)
	r := &Room{
		id:       id,
		settings: cfg.Settings,
		order:    order,
		thresholds: timer.Thresholds{
			Warning:  time.Duration(cfg.Settings.WarningSec) * time.Second,
			Critical: time.Duration(cfg.Settings.CriticalSec) * time.Second,
		},
		clock:      clock,
		publisher:  cfg.Publisher,
		onSnapshot: cfg.OnSnapshot,

		cmdCh: make(chan command),
		done:  make(chan struct{}),

		participants: participants,
		playersByID:  playersByID,
		poolOrder:    poolOrder,

		queues:    queues,
		res:       resolver.New(clock, queues, strat),
		pickClock: timer.NewPickClock(clock),

		status:            models.RoomStatusLoading,
		currentPickNumber: 1,
		drafted:           make(map[uuid.UUID]bool),
	}
	return r, nil
}

// ID returns the room's identifier.
func (r *Room) ID() uuid.UUID {
	return r.id
}

// Participants returns the seating in draft order.
func (r *Room) Participants() []models.Participant {
	return append([]models.Participant(nil), r.participants...)
}

// Start begins the draft: waiting -> active, arming the clock for pick 1.
func (r *Room) Start(ctx context.Context) (Snapshot, error) {
	res, err := r.send(ctx, command{kind: cmdStart})
	return res.snap, err
}

// Pause freezes the room's clock: active -> paused.
func (r *Room) Pause(ctx context.Context) (Snapshot, error) {
	res, err := r.send(ctx, command{kind: cmdPause})
	return res.snap, err
}

// Resume unfreezes a paused room: paused -> active.
func (r *Room) Resume(ctx context.Context) (Snapshot, error) {
	res, err := r.send(ctx, command{kind: cmdResume})
	return res.snap, err
}

// ManualPick submits a participant's own selection for the current pick. A
// non-nil Rejection means the request was legal in form but refused; state
// is unchanged and the caller should refresh and retry.
func (r *Room) ManualPick(ctx context.Context, participantID, playerID uuid.UUID) (Snapshot, *events.Rejection, error) {
	res, err := r.send(ctx, command{kind: cmdManualPick, actorID: participantID, participantID: participantID, playerID: playerID})
	return res.snap, res.rejection, err
}

// QueueAdd appends a player to a participant's queue. actorID must match
// participantID; queues are private.
func (r *Room) QueueAdd(ctx context.Context, actorID, participantID, playerID uuid.UUID) (Snapshot, *events.Rejection, error) {
	res, err := r.send(ctx, command{kind: cmdQueueAdd, actorID: actorID, participantID: participantID, playerID: playerID})
	return res.snap, res.rejection, err
}

// QueueRemove removes a player from a participant's own queue.
func (r *Room) QueueRemove(ctx context.Context, actorID, participantID, playerID uuid.UUID) (Snapshot, *events.Rejection, error) {
	res, err := r.send(ctx, command{kind: cmdQueueRemove, actorID: actorID, participantID: participantID, playerID: playerID})
	return res.snap, res.rejection, err
}

// QueueReorder replaces the order of a participant's own queue with the
// given permutation of its current contents.
func (r *Room) QueueReorder(ctx context.Context, actorID, participantID uuid.UUID, orderedPlayerIDs []uuid.UUID) (Snapshot, *events.Rejection, error) {
	res, err := r.send(ctx, command{kind: cmdQueueReorder, actorID: actorID, participantID: participantID, orderIDs: orderedPlayerIDs})
	return res.snap, res.rejection, err
}

// Snapshot returns the current immutable view of the room.
func (r *Room) Snapshot(ctx context.Context) (Snapshot, error) {
	res, err := r.send(ctx, command{kind: cmdSnapshot})
	return res.snap, err
}

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdPause
	cmdResume
	cmdManualPick
	cmdQueueAdd
	cmdQueueRemove
	cmdQueueReorder
	cmdSnapshot
)

type command struct {
	kind          cmdKind
	actorID       uuid.UUID
	participantID uuid.UUID
	playerID      uuid.UUID
	orderIDs      []uuid.UUID
	reply         chan result
}

type result struct {
	snap      Snapshot
	rejection *events.Rejection
	err       error
}

func (r *Room) send(ctx context.Context, cmd command) (result, error) {
	cmd.reply = make(chan result, 1)
	select {
	case r.cmdCh <- cmd:
	case <-r.done:
		return result{}, ErrRoomClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		if res.err != nil {
			return res, res.err
		}
		return res, nil
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}
