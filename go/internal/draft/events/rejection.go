package events

import "time"

// RejectReason names why a structurally valid action was refused. The caller
// is expected to refresh its view and retry; the engine never substitutes a
// different action on the caller's behalf.
type RejectReason string

const (
	ReasonNotYourTurn       RejectReason = "not-your-turn"
	ReasonPlayerDrafted     RejectReason = "player-already-drafted"
	ReasonInvalidPermission RejectReason = "invalid-permission"
	ReasonRoomNotActive     RejectReason = "room-not-active"
)

// Rejection is the typed refusal returned (and published) for every rejected
// action. State is unchanged whenever one is produced.
type Rejection struct {
	Reason        RejectReason `json:"reason"`
	ParticipantID string       `json:"participant_id,omitempty"`
	PlayerID      string       `json:"player_id,omitempty"`
	Detail        string       `json:"detail,omitempty"`
	RejectedAt    time.Time    `json:"rejected_at"`
}

// Error makes Rejection usable as an error value at package boundaries.
func (r *Rejection) Error() string {
	if r.Detail != "" {
		return string(r.Reason) + ": " + r.Detail
	}
	return string(r.Reason)
}
