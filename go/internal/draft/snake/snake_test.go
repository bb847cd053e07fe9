package snake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatSnakeOrder(t *testing.T) {
	order, err := NewOrder(12, 18)
	require.NoError(t, err)

	cases := []struct {
		name       string
		pickNumber int
		wantSeat   int
	}{
		{name: "first overall", pickNumber: 1, wantSeat: 0},
		{name: "end of round one", pickNumber: 12, wantSeat: 11},
		{name: "snake back", pickNumber: 13, wantSeat: 11},
		{name: "end of round two", pickNumber: 24, wantSeat: 0},
		{name: "round three forward again", pickNumber: 25, wantSeat: 0},
		{name: "last pick of draft", pickNumber: 216, wantSeat: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seat, err := order.Seat(tc.pickNumber)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSeat, seat)
		})
	}
}

func TestSeatInvalidInputErrors(t *testing.T) {
	order, err := NewOrder(10, 16)
	require.NoError(t, err)

	for _, pick := range []int{0, -1, -100} {
		_, err := order.Seat(pick)
		assert.Error(t, err, "pick %d must not resolve to a seat", pick)
	}

	_, err = NewOrder(0, 16)
	assert.Error(t, err)
	_, err = NewOrder(-3, 16)
	assert.Error(t, err)
	_, err = NewOrder(12, 0)
	assert.Error(t, err)
}

func TestRoundAndPickInRound(t *testing.T) {
	order, err := NewOrder(12, 18)
	require.NoError(t, err)

	round, err := order.Round(1)
	require.NoError(t, err)
	assert.Equal(t, 1, round)

	round, err = order.Round(12)
	require.NoError(t, err)
	assert.Equal(t, 1, round)

	round, err = order.Round(13)
	require.NoError(t, err)
	assert.Equal(t, 2, round)

	pir, err := order.PickInRound(13)
	require.NoError(t, err)
	assert.Equal(t, 1, pir)

	pir, err = order.PickInRound(24)
	require.NoError(t, err)
	assert.Equal(t, 12, pir)
}

// Each round must assign every seat exactly once, and consecutive rounds must
// be exact reversals of each other.
func TestRoundsArePermutationsAndReversals(t *testing.T) {
	for _, teamCount := range []int{1, 2, 3, 8, 10, 12} {
		order, err := NewOrder(teamCount, 18)
		require.NoError(t, err)

		var prev []int
		for round := 1; round <= order.Rounds; round++ {
			seats := make([]int, 0, teamCount)
			seen := make(map[int]bool, teamCount)
			for p := 1; p <= teamCount; p++ {
				pickNumber := (round-1)*teamCount + p
				seat, err := order.Seat(pickNumber)
				require.NoError(t, err)
				require.False(t, seen[seat], "teamCount=%d round=%d seat %d assigned twice", teamCount, round, seat)
				seen[seat] = true
				seats = append(seats, seat)
			}
			if prev != nil {
				for i := range seats {
					assert.Equal(t, prev[teamCount-1-i], seats[i],
						"teamCount=%d round=%d is not a reversal of round %d", teamCount, round, round-1)
				}
			}
			prev = seats
		}
	}
}

// PickNumber must invert Seat within each round.
func TestPickNumberRoundTrip(t *testing.T) {
	order, err := NewOrder(12, 18)
	require.NoError(t, err)

	for p := 1; p <= order.TotalPicks(); p++ {
		seat, err := order.Seat(p)
		require.NoError(t, err)
		round, err := order.Round(p)
		require.NoError(t, err)

		got, err := order.PickNumber(seat, round)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

// The closed-form seat schedule must agree with enumerating the full board.
func TestPicksForSeatMatchesEnumeration(t *testing.T) {
	order, err := NewOrder(10, 15)
	require.NoError(t, err)

	for seat := 0; seat < order.TeamCount; seat++ {
		want := make([]int, 0, order.Rounds)
		for p := 1; p <= order.TotalPicks(); p++ {
			s, err := order.Seat(p)
			require.NoError(t, err)
			if s == seat {
				want = append(want, p)
			}
		}

		got, err := order.PicksForSeat(seat)
		require.NoError(t, err)
		assert.Equal(t, want, got, "seat %d", seat)
	}
}

func TestSeatOnClock(t *testing.T) {
	order, err := NewOrder(12, 18)
	require.NoError(t, err)

	onClock, err := order.SeatOnClock(0, 1)
	require.NoError(t, err)
	assert.True(t, onClock)

	onClock, err = order.SeatOnClock(11, 1)
	require.NoError(t, err)
	assert.False(t, onClock)

	onClock, err = order.SeatOnClock(11, 13)
	require.NoError(t, err)
	assert.True(t, onClock)

	_, err = order.SeatOnClock(12, 1)
	assert.Error(t, err)
	_, err = order.SeatOnClock(0, 0)
	assert.Error(t, err)
}
