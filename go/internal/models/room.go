package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoomStatus defines the lifecycle state of a draft room.
type RoomStatus string

const (
	RoomStatusLoading  RoomStatus = "LOADING"
	RoomStatusWaiting  RoomStatus = "WAITING"
	RoomStatusActive   RoomStatus = "ACTIVE"
	RoomStatusPaused   RoomStatus = "PAUSED"
	RoomStatusComplete RoomStatus = "COMPLETE"
)

// Participant is one seat in a draft room. Participants are created when the
// room is formed and never change afterwards.
type Participant struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	IsUser        bool      `json:"is_user"`
	DraftPosition int       `json:"draft_position"` // 0-indexed seat order
}

// QueueEntry wraps a player a participant has lined up for autopick.
type QueueEntry struct {
	Player   Player    `json:"player"`
	QueuedAt time.Time `json:"queued_at"`
}

// Pick is one committed selection. Picks are append-only; they are never
// edited or removed once made.
type Pick struct {
	PickNumber    int       `json:"pick_number"` // 1-indexed overall
	Round         int       `json:"round"`
	PickInRound   int       `json:"pick_in_round"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Player        *Player   `json:"player,omitempty"` // nil when the turn was skipped
	PickedAt      time.Time `json:"picked_at"`
	Auto          bool      `json:"auto"`
	Skipped       bool      `json:"skipped"`
}

// RoomSettings holds the per-room timing and sizing configuration supplied at
// room creation.
type RoomSettings struct {
	TeamCount      int `json:"team_count" yaml:"team_count"`
	Rounds         int `json:"rounds" yaml:"rounds"`
	TimePerPickSec int `json:"time_per_pick_sec" yaml:"time_per_pick_sec"`
	GracePeriodSec int `json:"grace_period_sec" yaml:"grace_period_sec"`
	WarningSec     int `json:"warning_sec" yaml:"warning_sec"`
	CriticalSec    int `json:"critical_sec" yaml:"critical_sec"`
}

// DefaultRoomSettings returns the standard 12-team, 18-round configuration.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		TeamCount:      12,
		Rounds:         18,
		TimePerPickSec: 30,
		GracePeriodSec: 5,
		WarningSec:     10,
		CriticalSec:    5,
	}
}

// FastRoomSettings returns the accelerated configuration used for test rooms.
// Urgency thresholds are scaled down at construction so the tiers still mean
// something at 3-second picks.
func FastRoomSettings() RoomSettings {
	return RoomSettings{
		TeamCount:      12,
		Rounds:         18,
		TimePerPickSec: 3,
		GracePeriodSec: 1,
		WarningSec:     2,
		CriticalSec:    1,
	}
}

// TotalPicks returns the pick budget for a full draft with these settings.
func (s RoomSettings) TotalPicks() int {
	return s.TeamCount * s.Rounds
}

// Validate checks the settings for values the engine cannot run with.
func (s RoomSettings) Validate() error {
	if s.TeamCount < 1 {
		return fmt.Errorf("team_count must be >= 1, got %d", s.TeamCount)
	}
	if s.Rounds < 1 {
		return fmt.Errorf("rounds must be >= 1, got %d", s.Rounds)
	}
	if s.TimePerPickSec < 1 {
		return fmt.Errorf("time_per_pick_sec must be >= 1, got %d", s.TimePerPickSec)
	}
	if s.GracePeriodSec < 0 {
		return fmt.Errorf("grace_period_sec must be >= 0, got %d", s.GracePeriodSec)
	}
	if s.CriticalSec > s.WarningSec {
		return fmt.Errorf("critical_sec (%d) must not exceed warning_sec (%d)", s.CriticalSec, s.WarningSec)
	}
	return nil
}
