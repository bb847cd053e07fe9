package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftkit/draftroom/go/internal/draft/events"
	"github.com/draftkit/draftroom/go/internal/models"
)

// capturePublisher records emitted envelopes for assertions.
type capturePublisher struct {
	mu   sync.Mutex
	envs []events.Envelope
}

func (p *capturePublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envs = append(p.envs, env)
	return nil
}

func (p *capturePublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, len(p.envs))
	for i, env := range p.envs {
		out[i] = env.Type
	}
	return out
}

func (p *capturePublisher) count(t events.EventType) int {
	n := 0
	for _, typ := range p.types() {
		if typ == t {
			n++
		}
	}
	return n
}

type testRoom struct {
	room  *Room
	clock *clockwork.FakeClock
	pub   *capturePublisher
	seats []models.Participant
	pool  []models.Player
	ctx   context.Context
}

func seatIDs(n int) []models.Participant {
	seats := make([]models.Participant, n)
	for i := range seats {
		seats[i] = models.Participant{
			ID:            uuid.New(),
			DisplayName:   "Team " + string(rune('A'+i)),
			DraftPosition: i,
		}
	}
	return seats
}

func pool(n int) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{
			ID:              uuid.New(),
			FullName:        "Player " + string(rune('A'+i)),
			Position:        models.PositionWR,
			Team:            "SF",
			ProjectedPoints: float64(300 - i*10),
			ADP:             float64(i + 1),
		}
	}
	return players
}

// newTestRoom builds a running room on a fake clock. The returned context is
// cancelled at test cleanup, stopping the actor.
func newTestRoom(t *testing.T, settings models.RoomSettings, players []models.Player) *testRoom {
	t.Helper()
	fake := clockwork.NewFakeClock()
	pub := &capturePublisher{}
	seats := seatIDs(settings.TeamCount)

	r, err := New(Config{
		Settings:     settings,
		Participants: seats,
		Players:      players,
		Clock:        fake,
		Publisher:    pub,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go r.Run(ctx)

	return &testRoom{room: r, clock: fake, pub: pub, seats: seats, pool: players, ctx: ctx}
}

func (tr *testRoom) waitFor(t *testing.T, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		s, err := tr.room.Snapshot(tr.ctx)
		if err != nil {
			return false
		}
		snap = s
		return cond(s)
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func smallSettings() models.RoomSettings {
	return models.RoomSettings{
		TeamCount:      2,
		Rounds:         2,
		TimePerPickSec: 30,
		GracePeriodSec: 0,
		WarningSec:     10,
		CriticalSec:    5,
	}
}

func TestStartArmsFirstPick(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))

	snap, err := tr.room.Snapshot(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusWaiting, snap.Status)

	snap, err = tr.room.Start(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusActive, snap.Status)
	assert.Equal(t, 1, snap.CurrentPickNumber)
	assert.Equal(t, 1, snap.Round)
	require.NotNil(t, snap.OnClock)
	assert.Equal(t, tr.seats[0].ID, snap.OnClock.ID)
	assert.Equal(t, 30, snap.RemainingSec)
	require.NotNil(t, snap.Deadline)

	// Starting twice is an error, not a silent restart.
	_, err = tr.room.Start(tr.ctx)
	assert.Error(t, err)
}

func TestManualPickAdvancesTurnAndRearmsClock(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	tr.clock.Advance(10 * time.Second)

	snap, rejection, err := tr.room.ManualPick(tr.ctx, tr.seats[0].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.Nil(t, rejection)

	assert.Equal(t, 2, snap.CurrentPickNumber)
	require.Len(t, snap.Picks, 1)
	assert.Equal(t, tr.pool[0].ID, snap.Picks[0].Player.ID)
	assert.False(t, snap.Picks[0].Auto)
	require.NotNil(t, snap.OnClock)
	assert.Equal(t, tr.seats[1].ID, snap.OnClock.ID, "snake order: seat 1 is on the clock")
	assert.Equal(t, 30, snap.RemainingSec, "clock re-armed for the next participant")
}

func TestManualPickRejectedNotYourTurn(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	snap, rejection, err := tr.room.ManualPick(tr.ctx, tr.seats[1].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonNotYourTurn, rejection.Reason)
	assert.Equal(t, 1, snap.CurrentPickNumber, "rejected pick changes nothing")
	assert.Empty(t, snap.Picks)
}

func TestManualPickRejectedWhenNotActive(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))

	_, rejection, err := tr.room.ManualPick(tr.ctx, tr.seats[0].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonRoomNotActive, rejection.Reason)
}

func TestManualPickRejectedPlayerAlreadyDrafted(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	_, rejection, err := tr.room.ManualPick(tr.ctx, tr.seats[0].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.Nil(t, rejection)

	// Seat 1 is on the clock and tries to take the same player.
	snap, rejection, err := tr.room.ManualPick(tr.ctx, tr.seats[1].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonPlayerDrafted, rejection.Reason)
	assert.Equal(t, 2, snap.CurrentPickNumber)
}

func TestPauseFreezesRemainingAcrossWallClockTime(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	tr.clock.Advance(18 * time.Second)

	snap, err := tr.room.Pause(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusPaused, snap.Status)
	assert.Equal(t, 12, snap.RemainingSec)

	// A long wall-clock wait while paused must not burn pick time.
	tr.clock.Advance(5 * time.Minute)
	snap, err = tr.room.Snapshot(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, snap.RemainingSec)
	assert.Equal(t, 1, snap.CurrentPickNumber, "no autopick while paused")

	snap, err = tr.room.Resume(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusActive, snap.Status)
	assert.Equal(t, 12, snap.RemainingSec, "resume continues, it does not reset")

	// Pausing a paused room or resuming an active one are usage errors.
	_, err = tr.room.Resume(tr.ctx)
	assert.Error(t, err)
}

func TestExpiryAutopicksFromQueueAfterPurge(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))
	playerX, playerY := tr.pool[0], tr.pool[1]

	// Seat 1 queues X then Y before the draft starts.
	_, rejection, err := tr.room.QueueAdd(tr.ctx, tr.seats[1].ID, tr.seats[1].ID, playerX.ID)
	require.NoError(t, err)
	require.Nil(t, rejection)
	snap, rejection, err := tr.room.QueueAdd(tr.ctx, tr.seats[1].ID, tr.seats[1].ID, playerY.ID)
	require.NoError(t, err)
	require.Nil(t, rejection)
	require.Len(t, snap.Queues[tr.seats[1].ID], 2)

	_, err = tr.room.Start(tr.ctx)
	require.NoError(t, err)

	// Seat 0 drafts X out from under seat 1's queue.
	snap, rejection, err = tr.room.ManualPick(tr.ctx, tr.seats[0].ID, playerX.ID)
	require.NoError(t, err)
	require.Nil(t, rejection)
	require.Len(t, snap.Queues[tr.seats[1].ID], 1, "purge removed X synchronously")

	// Seat 1 lets the clock run out; autopick must take Y, not X.
	tr.clock.Advance(30 * time.Second)
	snap = tr.waitFor(t, func(s Snapshot) bool { return s.CurrentPickNumber == 3 })

	require.Len(t, snap.Picks, 2)
	auto := snap.Picks[1]
	assert.True(t, auto.Auto)
	assert.Equal(t, tr.seats[1].ID, auto.ParticipantID)
	require.NotNil(t, auto.Player)
	assert.Equal(t, playerY.ID, auto.Player.ID)
	assert.Empty(t, snap.Queues[tr.seats[1].ID])
}

func TestExpiryWithEmptyQueueUsesDefaultStrategy(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	tr.clock.Advance(30 * time.Second)
	snap := tr.waitFor(t, func(s Snapshot) bool { return s.CurrentPickNumber == 2 })

	require.Len(t, snap.Picks, 1)
	require.NotNil(t, snap.Picks[0].Player)
	assert.Equal(t, tr.pool[0].ID, snap.Picks[0].Player.ID, "highest projected points wins")
	assert.True(t, snap.Picks[0].Auto)
}

func TestDraftCompletesAtLastPick(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	// Snake order for 2 teams, 2 rounds: seats 0, 1, 1, 0.
	order := []int{0, 1, 1, 0}
	var snap Snapshot
	for i, seat := range order {
		var rejection *events.Rejection
		snap, rejection, err = tr.room.ManualPick(tr.ctx, tr.seats[seat].ID, tr.pool[i].ID)
		require.NoError(t, err)
		require.Nil(t, rejection, "pick %d", i+1)
	}

	assert.Equal(t, models.RoomStatusComplete, snap.Status)
	assert.Equal(t, 5, snap.CurrentPickNumber)
	assert.Len(t, snap.Picks, 4)
	assert.Equal(t, 1, tr.pub.count(events.EventTypeRoomCompleted))

	// Pick five is never dispatched: further picks are rejected, and a long
	// wall-clock wait produces no autopick.
	_, rejection, err := tr.room.ManualPick(tr.ctx, tr.seats[0].ID, tr.pool[5].ID)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonRoomNotActive, rejection.Reason)

	tr.clock.Advance(10 * time.Minute)
	snap, err = tr.room.Snapshot(tr.ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Picks, 4)

	// Queue edits remain permitted after completion.
	_, rejection, err = tr.room.QueueAdd(tr.ctx, tr.seats[0].ID, tr.seats[0].ID, tr.pool[6].ID)
	require.NoError(t, err)
	assert.Nil(t, rejection)
}

func TestQueuePermissionAndStateRules(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))

	// Editing another participant's queue is a permission error.
	_, rejection, err := tr.room.QueueAdd(tr.ctx, tr.seats[0].ID, tr.seats[1].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonInvalidPermission, rejection.Reason)

	_, rejection, err = tr.room.QueueRemove(tr.ctx, tr.seats[0].ID, tr.seats[1].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonInvalidPermission, rejection.Reason)

	// Queue edits are allowed while waiting and while paused.
	snap, rejection, err := tr.room.QueueAdd(tr.ctx, tr.seats[0].ID, tr.seats[0].ID, tr.pool[2].ID)
	require.NoError(t, err)
	require.Nil(t, rejection)
	require.Len(t, snap.Queues[tr.seats[0].ID], 1)

	_, err = tr.room.Start(tr.ctx)
	require.NoError(t, err)
	_, err = tr.room.Pause(tr.ctx)
	require.NoError(t, err)

	snap, rejection, err = tr.room.QueueAdd(tr.ctx, tr.seats[0].ID, tr.seats[0].ID, tr.pool[3].ID)
	require.NoError(t, err)
	require.Nil(t, rejection)
	require.Len(t, snap.Queues[tr.seats[0].ID], 2)

	// Manual picks stay rejected while paused.
	_, rejection, err = tr.room.ManualPick(tr.ctx, tr.seats[0].ID, tr.pool[4].ID)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonRoomNotActive, rejection.Reason)

	// Queueing an already-drafted player is rejected.
	_, err = tr.room.Resume(tr.ctx)
	require.NoError(t, err)
	_, rejection, err = tr.room.ManualPick(tr.ctx, tr.seats[0].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.Nil(t, rejection)
	_, rejection, err = tr.room.QueueAdd(tr.ctx, tr.seats[1].ID, tr.seats[1].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonPlayerDrafted, rejection.Reason)
}

func TestGraceWindowManualPickStillWins(t *testing.T) {
	settings := smallSettings()
	settings.GracePeriodSec = 5
	tr := newTestRoom(t, settings, pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	// Run the clock out; the room enters the grace window instead of
	// autopicking immediately.
	tr.clock.Advance(30 * time.Second)
	snap := tr.waitFor(t, func(s Snapshot) bool {
		return s.RemainingSec == 0 && s.Deadline == nil
	})
	assert.Equal(t, 1, snap.CurrentPickNumber, "no commit inside the grace window")

	// A manual pick inside the window takes the slot.
	snap, rejection, err := tr.room.ManualPick(tr.ctx, tr.seats[0].ID, tr.pool[3].ID)
	require.NoError(t, err)
	require.Nil(t, rejection)
	assert.Equal(t, 2, snap.CurrentPickNumber)
	require.Len(t, snap.Picks, 1)
	assert.False(t, snap.Picks[0].Auto)

	// The stale grace expiry must not fire a second commit.
	tr.clock.Advance(5 * time.Second)
	snap, err = tr.room.Snapshot(tr.ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Picks, 1)
	assert.Equal(t, 2, snap.CurrentPickNumber)
}

func TestGraceWindowExpiryAutopicks(t *testing.T) {
	settings := smallSettings()
	settings.GracePeriodSec = 5
	tr := newTestRoom(t, settings, pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	tr.clock.Advance(30 * time.Second)
	tr.waitFor(t, func(s Snapshot) bool {
		return s.RemainingSec == 0 && s.Deadline == nil
	})

	tr.clock.Advance(5 * time.Second)
	snap := tr.waitFor(t, func(s Snapshot) bool { return s.CurrentPickNumber == 2 })
	require.Len(t, snap.Picks, 1)
	assert.True(t, snap.Picks[0].Auto)
}

func TestPauseDuringGraceFreezesWindow(t *testing.T) {
	settings := smallSettings()
	settings.GracePeriodSec = 5
	tr := newTestRoom(t, settings, pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	// Run the clock out and burn 2s of the 5s grace window.
	tr.clock.Advance(30 * time.Second)
	tr.waitFor(t, func(s Snapshot) bool {
		return s.RemainingSec == 0 && s.Deadline == nil
	})
	tr.clock.Advance(2 * time.Second)

	snap, err := tr.room.Pause(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusPaused, snap.Status)

	// The frozen window must not run down on wall-clock time.
	tr.clock.Advance(5 * time.Minute)
	snap, err = tr.room.Snapshot(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentPickNumber, "no autopick while paused")
	assert.Empty(t, snap.Picks)

	_, err = tr.room.Resume(tr.ctx)
	require.NoError(t, err)

	// 2s elapsed, 3s of grace remain; at 2s past resume nothing fires yet.
	tr.clock.Advance(2 * time.Second)
	snap, err = tr.room.Snapshot(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentPickNumber)

	// The remainder elapses and the deferred autopick commits.
	tr.clock.Advance(1 * time.Second)
	snap = tr.waitFor(t, func(s Snapshot) bool { return s.CurrentPickNumber == 2 })
	require.Len(t, snap.Picks, 1)
	assert.True(t, snap.Picks[0].Auto)
	assert.Equal(t, tr.seats[0].ID, snap.Picks[0].ParticipantID)
}

func TestSnapshotsAreImmutableCopies(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	snap, rejection, err := tr.room.ManualPick(tr.ctx, tr.seats[0].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.Nil(t, rejection)

	snap.Participants[0].DisplayName = "mutated"
	snap.Picks[0].PickNumber = 999

	fresh, err := tr.room.Snapshot(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Team A", fresh.Participants[0].DisplayName)
	assert.Equal(t, 1, fresh.Picks[0].PickNumber)
}

func TestEventStream(t *testing.T) {
	tr := newTestRoom(t, smallSettings(), pool(8))
	_, err := tr.room.Start(tr.ctx)
	require.NoError(t, err)

	_, rejection, err := tr.room.ManualPick(tr.ctx, tr.seats[0].ID, tr.pool[0].ID)
	require.NoError(t, err)
	require.Nil(t, rejection)

	types := tr.pub.types()
	assert.Equal(t, events.EventTypeRoomStarted, types[0])
	assert.Equal(t, events.EventTypePickStarted, types[1])
	assert.Equal(t, 1, tr.pub.count(events.EventTypePickMade))
	assert.Equal(t, 2, tr.pub.count(events.EventTypePickStarted), "each pick announces its clock")
}

// Corruption checks run synchronously against an unstarted actor so the test
// can poke at internal state without racing the goroutine.
func TestCorruptPickNumberHaltsRoom(t *testing.T) {
	seats := seatIDs(2)
	r, err := New(Config{
		Settings:     smallSettings(),
		Participants: seats,
		Players:      pool(8),
		Clock:        clockwork.NewFakeClock(),
	})
	require.NoError(t, err)

	r.status = models.RoomStatusActive
	r.currentPickNumber = 99 // outside [1, totalPicks+1]

	ctx := context.Background()
	res := r.handleCommand(ctx, command{kind: cmdManualPick, actorID: seats[0].ID, participantID: seats[0].ID, playerID: r.poolOrder[0]})
	require.ErrorIs(t, res.err, ErrCorruptRoom)

	// Once corrupt, every further command is refused; nothing clamps.
	res = r.handleCommand(ctx, command{kind: cmdStart})
	require.ErrorIs(t, res.err, ErrCorruptRoom)
	assert.Equal(t, 99, r.currentPickNumber)
}

func TestNewValidatesConfiguration(t *testing.T) {
	settings := smallSettings()

	_, err := New(Config{Settings: settings, Participants: seatIDs(3), Players: pool(4)})
	assert.Error(t, err, "participant count must match team count")

	bad := seatIDs(2)
	bad[1].DraftPosition = 5
	_, err = New(Config{Settings: settings, Participants: bad, Players: pool(4)})
	assert.Error(t, err, "draft positions must be contiguous")

	players := pool(4)
	players[2].ID = players[0].ID
	_, err = New(Config{Settings: settings, Participants: seatIDs(2), Players: players})
	assert.Error(t, err, "duplicate player ids in the pool")

	settings.TeamCount = 0
	_, err = New(Config{Settings: settings, Participants: nil, Players: nil})
	assert.Error(t, err)
}
