package events

import (
	"time"
)

// RoomStartedPayload is emitted once when a room leaves the waiting state.
type RoomStartedPayload struct {
	RoomID     string    `json:"room_id"`
	StartedAt  time.Time `json:"started_at"`
	TeamCount  int       `json:"team_count"`
	Rounds     int       `json:"rounds"`
	TotalPicks int       `json:"total_picks"`
}

// PickStartedPayload is emitted each time a new pick clock is armed.
type PickStartedPayload struct {
	PickNumber     int       `json:"pick_number"`
	Round          int       `json:"round"`
	PickInRound    int       `json:"pick_in_round"`
	ParticipantID  string    `json:"participant_id"`
	StartedAt      time.Time `json:"started_at"`
	Deadline       time.Time `json:"deadline"`
	TimePerPickSec int       `json:"time_per_pick_sec"`
}

// PickMadePayload is emitted after every committed pick, manual or auto.
type PickMadePayload struct {
	PickNumber    int       `json:"pick_number"`
	Round         int       `json:"round"`
	PickInRound   int       `json:"pick_in_round"`
	ParticipantID string    `json:"participant_id"`
	PlayerID      string    `json:"player_id,omitempty"`
	PlayerName    string    `json:"player_name,omitempty"`
	Auto          bool      `json:"auto"`
	Skipped       bool      `json:"skipped"`
	MadeAt        time.Time `json:"made_at"`
}

// TimerTickPayload carries the periodic countdown update while a room is
// active.
type TimerTickPayload struct {
	PickNumber       int       `json:"pick_number"`
	ParticipantID    string    `json:"participant_id"`
	TimeRemainingSec int       `json:"time_remaining_sec"`
	Urgency          string    `json:"urgency"`
	TickedAt         time.Time `json:"ticked_at"`
}

// RoomPausedPayload is emitted when a room freezes its clock.
type RoomPausedPayload struct {
	RoomID           string    `json:"room_id"`
	PausedAt         time.Time `json:"paused_at"`
	TimeRemainingSec int       `json:"time_remaining_sec"`
}

// RoomResumedPayload is emitted when a paused room unfreezes.
type RoomResumedPayload struct {
	RoomID           string    `json:"room_id"`
	ResumedAt        time.Time `json:"resumed_at"`
	TimeRemainingSec int       `json:"time_remaining_sec"`
}

// RoomCompletedPayload is emitted exactly once, when the last pick commits.
type RoomCompletedPayload struct {
	RoomID      string    `json:"room_id"`
	CompletedAt time.Time `json:"completed_at"`
	TotalPicks  int       `json:"total_picks"`
	Duration    string    `json:"duration"`
}
