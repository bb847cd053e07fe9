// Package snake is the single source of truth for snake-draft turn
// arithmetic. Everything here is pure: callers pass the overall pick number
// and the team count, and get back where that pick lands.
package snake

import (
	"fmt"
)

// Order holds the fixed dimensions of one draft's turn order.
type Order struct {
	TeamCount int
	Rounds    int
}

// NewOrder validates the dimensions and returns an Order.
func NewOrder(teamCount, rounds int) (Order, error) {
	if teamCount < 1 {
		return Order{}, fmt.Errorf("team count must be >= 1, got %d", teamCount)
	}
	if rounds < 1 {
		return Order{}, fmt.Errorf("rounds must be >= 1, got %d", rounds)
	}
	return Order{TeamCount: teamCount, Rounds: rounds}, nil
}

// TotalPicks returns the number of picks in a complete draft.
func (o Order) TotalPicks() int {
	return o.TeamCount * o.Rounds
}

// checkPick rejects pick numbers the arithmetic is undefined for. Invalid
// input is a usage error and fails loudly; it never defaults to seat 0.
func (o Order) checkPick(pickNumber int) error {
	if pickNumber < 1 {
		return fmt.Errorf("pick number must be >= 1, got %d", pickNumber)
	}
	return nil
}

// Round returns the 1-indexed round a pick number falls in.
func (o Order) Round(pickNumber int) (int, error) {
	if err := o.checkPick(pickNumber); err != nil {
		return 0, err
	}
	return (pickNumber-1)/o.TeamCount + 1, nil
}

// PickInRound returns the 1-indexed position of a pick within its round,
// counted in pick order (not seat order).
func (o Order) PickInRound(pickNumber int) (int, error) {
	if err := o.checkPick(pickNumber); err != nil {
		return 0, err
	}
	return (pickNumber-1)%o.TeamCount + 1, nil
}

// Seat returns the 0-indexed draft position that owns a pick number. Odd
// rounds run forward through the seats; even rounds run in reverse.
func (o Order) Seat(pickNumber int) (int, error) {
	if err := o.checkPick(pickNumber); err != nil {
		return 0, err
	}
	round := (pickNumber - 1) / o.TeamCount
	pos := (pickNumber - 1) % o.TeamCount
	if round%2 == 1 {
		return o.TeamCount - 1 - pos, nil
	}
	return pos, nil
}

// SeatOnClock reports whether the given seat owns the given pick number.
func (o Order) SeatOnClock(seat, pickNumber int) (bool, error) {
	if seat < 0 || seat >= o.TeamCount {
		return false, fmt.Errorf("seat must be in [0, %d), got %d", o.TeamCount, seat)
	}
	got, err := o.Seat(pickNumber)
	if err != nil {
		return false, err
	}
	return got == seat, nil
}

// PicksForSeat returns every overall pick number owned by a seat, in order.
// The per-round pick is closed form: a seat picks at offset seat in forward
// rounds and at offset teamCount-1-seat in reverse rounds, so no enumeration
// of the full board is needed.
func (o Order) PicksForSeat(seat int) ([]int, error) {
	if seat < 0 || seat >= o.TeamCount {
		return nil, fmt.Errorf("seat must be in [0, %d), got %d", o.TeamCount, seat)
	}
	picks := make([]int, 0, o.Rounds)
	for round := 0; round < o.Rounds; round++ {
		base := round * o.TeamCount
		if round%2 == 1 {
			picks = append(picks, base+o.TeamCount-seat)
		} else {
			picks = append(picks, base+seat+1)
		}
	}
	return picks, nil
}

// PickNumber returns the overall pick number for a seat in a given 1-indexed
// round. It is the inverse of Seat restricted to that round.
func (o Order) PickNumber(seat, round int) (int, error) {
	if seat < 0 || seat >= o.TeamCount {
		return 0, fmt.Errorf("seat must be in [0, %d), got %d", o.TeamCount, seat)
	}
	if round < 1 || round > o.Rounds {
		return 0, fmt.Errorf("round must be in [1, %d], got %d", o.Rounds, round)
	}
	base := (round - 1) * o.TeamCount
	if (round-1)%2 == 1 {
		return base + o.TeamCount - seat, nil
	}
	return base + seat + 1, nil
}
