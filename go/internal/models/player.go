package models

import (
	"github.com/google/uuid"
)

// Position is an NFL fantasy-relevant player position.
type Position string

const (
	PositionQB Position = "QB"
	PositionRB Position = "RB"
	PositionWR Position = "WR"
	PositionTE Position = "TE"
)

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	switch p {
	case PositionQB, PositionRB, PositionWR, PositionTE:
		return true
	}
	return false
}

// Player represents an NFL player available to be drafted. Players are
// sourced from an external pool and are read-only inside the draft engine.
type Player struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Position        Position  `json:"position"`
	Team            string    `json:"team"`
	ADP             float64   `json:"adp"` // average draft position across public leagues
	ProjectedPoints float64   `json:"projected_points"`
	ByeWeek         int       `json:"bye_week"`
}
