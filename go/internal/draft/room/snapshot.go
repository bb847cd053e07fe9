package room

import (
	"time"

	"github.com/google/uuid"

	"github.com/draftkit/draftroom/go/internal/draft/timer"
	"github.com/draftkit/draftroom/go/internal/models"
)

// Snapshot is the immutable view of a room published to the presentation
// layer after every accepted transition. Everything in it is copied; holding
// or mutating a snapshot has no effect on the live room.
type Snapshot struct {
	RoomID            uuid.UUID                        `json:"room_id"`
	Status            models.RoomStatus                `json:"status"`
	CurrentPickNumber int                              `json:"current_pick_number"`
	Round             int                              `json:"round"`
	PickInRound       int                              `json:"pick_in_round"`
	OnClock           *models.Participant              `json:"on_clock,omitempty"`
	Participants      []models.Participant             `json:"participants"`
	Picks             []models.Pick                    `json:"picks"`
	Queues            map[uuid.UUID][]models.QueueEntry `json:"queues"`
	RemainingSec      int                              `json:"remaining_sec"`
	Urgency           timer.Urgency                    `json:"urgency"`
	Deadline          *time.Time                       `json:"deadline,omitempty"`
	Settings          models.RoomSettings              `json:"settings"`
	TakenAt           time.Time                        `json:"taken_at"`
}

// snapshot builds a deep copy of the current room state. Called only from
// the actor goroutine.
func (r *Room) snapshot() Snapshot {
	snap := Snapshot{
		RoomID:            r.id,
		Status:            r.status,
		CurrentPickNumber: r.currentPickNumber,
		Participants:      append([]models.Participant(nil), r.participants...),
		Picks:             append([]models.Pick(nil), r.picks...),
		Queues:            r.queues.All(),
		Settings:          r.settings,
		TakenAt:           r.clock.Now(),
	}

	if r.status == models.RoomStatusActive || r.status == models.RoomStatusPaused {
		if round, err := r.order.Round(r.currentPickNumber); err == nil {
			snap.Round = round
		}
		if pir, err := r.order.PickInRound(r.currentPickNumber); err == nil {
			snap.PickInRound = pir
		}
		if seat, err := r.order.Seat(r.currentPickNumber); err == nil && seat < len(r.participants) {
			onClock := r.participants[seat]
			snap.OnClock = &onClock
		}
		remaining := r.remaining()
		snap.RemainingSec = int(remaining / time.Second)
		snap.Urgency = r.thresholds.Classify(remaining)
		if deadline, ok := r.pickClock.Deadline(); ok && !r.inGrace {
			d := deadline
			snap.Deadline = &d
		}
	}

	return snap
}
