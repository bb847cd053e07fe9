package resolver

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftkit/draftroom/go/internal/draft/events"
	"github.com/draftkit/draftroom/go/internal/draft/queue"
	"github.com/draftkit/draftroom/go/internal/draft/snake"
	"github.com/draftkit/draftroom/go/internal/models"
)

type fixture struct {
	clock        *clockwork.FakeClock
	queues       *queue.Manager
	resolver     *Resolver
	participants []models.Participant
	order        snake.Order
}

func newFixture(t *testing.T, teamCount int, strat AutoPickStrategy) *fixture {
	t.Helper()
	order, err := snake.NewOrder(teamCount, 3)
	require.NoError(t, err)

	participants := make([]models.Participant, teamCount)
	for i := range participants {
		participants[i] = models.Participant{
			ID:            uuid.New(),
			DisplayName:   "Seat " + string(rune('A'+i)),
			DraftPosition: i,
		}
	}

	clock := clockwork.NewFakeClock()
	queues := queue.NewManager(clock)
	if strat == nil {
		strat = NewHighestProjectedStrategy()
	}
	return &fixture{
		clock:        clock,
		queues:       queues,
		resolver:     New(clock, queues, strat),
		participants: participants,
		order:        order,
	}
}

func (f *fixture) view(pickNumber int, drafted map[uuid.UUID]bool, available []models.Player) View {
	if drafted == nil {
		drafted = map[uuid.UUID]bool{}
	}
	return View{
		RoomID:       uuid.New(),
		Order:        f.order,
		PickNumber:   pickNumber,
		Participants: f.participants,
		Drafted:      drafted,
		Available:    available,
	}
}

func player(name string, projected, adp float64) models.Player {
	return models.Player{ID: uuid.New(), FullName: name, Position: models.PositionWR, ProjectedPoints: projected, ADP: adp}
}

func TestResolveManualCommitsForParticipantOnClock(t *testing.T) {
	f := newFixture(t, 4, nil)
	target := player("Target", 200, 5)

	pick, rejection, err := f.resolver.ResolveManual(f.view(1, nil, nil), f.participants[0].ID, target)
	require.NoError(t, err)
	require.Nil(t, rejection)

	assert.Equal(t, 1, pick.PickNumber)
	assert.Equal(t, 1, pick.Round)
	assert.Equal(t, 1, pick.PickInRound)
	assert.Equal(t, f.participants[0].ID, pick.ParticipantID)
	require.NotNil(t, pick.Player)
	assert.Equal(t, target.ID, pick.Player.ID)
	assert.False(t, pick.Auto)
	assert.False(t, pick.Skipped)
}

func TestResolveManualNotYourTurn(t *testing.T) {
	f := newFixture(t, 4, nil)

	// Pick 1 belongs to seat 0; seat 2 tries to jump it.
	_, rejection, err := f.resolver.ResolveManual(f.view(1, nil, nil), f.participants[2].ID, player("Target", 100, 20))
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonNotYourTurn, rejection.Reason)
}

func TestResolveManualPlayerAlreadyDrafted(t *testing.T) {
	f := newFixture(t, 4, nil)
	taken := player("Taken", 150, 10)
	drafted := map[uuid.UUID]bool{taken.ID: true}

	_, rejection, err := f.resolver.ResolveManual(f.view(1, drafted, nil), f.participants[0].ID, taken)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonPlayerDrafted, rejection.Reason)
}

func TestResolveManualSnakeSeat(t *testing.T) {
	f := newFixture(t, 4, nil)

	// Pick 5 snakes back to seat 3.
	_, rejection, err := f.resolver.ResolveManual(f.view(5, nil, nil), f.participants[3].ID, player("Target", 100, 30))
	require.NoError(t, err)
	assert.Nil(t, rejection)

	_, rejection, err = f.resolver.ResolveManual(f.view(5, nil, nil), f.participants[0].ID, player("Other", 90, 40))
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, events.ReasonNotYourTurn, rejection.Reason)
}

func TestResolveExpiredPrefersQueueHead(t *testing.T) {
	f := newFixture(t, 4, nil)
	queued := player("Queued", 50, 90)
	better := player("Better", 300, 1)

	f.queues.Enqueue(f.participants[0].ID, queued)

	pick, err := f.resolver.ResolveExpired(f.view(1, nil, []models.Player{better}))
	require.NoError(t, err)
	require.NotNil(t, pick.Player)
	assert.Equal(t, queued.ID, pick.Player.ID, "queue head beats the strategy")
	assert.True(t, pick.Auto)
	assert.Equal(t, 0, f.queues.Len(f.participants[0].ID))
}

func TestResolveExpiredAutopicksQueueAfterPurge(t *testing.T) {
	f := newFixture(t, 4, nil)
	x := player("Player X", 120, 15)
	y := player("Player Y", 110, 18)

	f.queues.Enqueue(f.participants[0].ID, x)
	f.queues.Enqueue(f.participants[0].ID, y)
	f.queues.PurgeDrafted(x.ID)

	pick, err := f.resolver.ResolveExpired(f.view(1, map[uuid.UUID]bool{x.ID: true}, nil))
	require.NoError(t, err)
	require.NotNil(t, pick.Player)
	assert.Equal(t, y.ID, pick.Player.ID, "autopick selects Y, not the drafted X")
}

func TestResolveExpiredEmptyQueueUsesStrategy(t *testing.T) {
	f := newFixture(t, 4, nil)
	low := player("Low", 80, 60)
	high := player("High", 210, 8)
	tiedWorseADP := player("Tied", 210, 9)

	pick, err := f.resolver.ResolveExpired(f.view(1, nil, []models.Player{low, tiedWorseADP, high}))
	require.NoError(t, err)
	require.NotNil(t, pick.Player)
	assert.Equal(t, high.ID, pick.Player.ID, "highest projected wins, ADP breaks ties")
	assert.True(t, pick.Auto)
}

func TestResolveExpiredSkipStrategy(t *testing.T) {
	f := newFixture(t, 4, &SkipStrategy{})

	pick, err := f.resolver.ResolveExpired(f.view(1, nil, []models.Player{player("Someone", 100, 10)}))
	require.NoError(t, err)
	assert.Nil(t, pick.Player)
	assert.True(t, pick.Skipped)
	assert.True(t, pick.Auto)
	assert.Equal(t, f.participants[0].ID, pick.ParticipantID, "a skipped turn still commits")
}

func TestViewOnClockRejectsInvalidPickNumber(t *testing.T) {
	f := newFixture(t, 4, nil)
	_, err := f.view(0, nil, nil).OnClock()
	assert.Error(t, err)
}
