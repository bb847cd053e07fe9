package gateway

import (
	"github.com/google/uuid"

	"github.com/draftkit/draftroom/go/internal/draft/events"
	"github.com/draftkit/draftroom/go/internal/draft/room"
)

// Intent actions a client may send over the socket.
const (
	ActionStart        = "start"
	ActionPause        = "pause"
	ActionResume       = "resume"
	ActionPick         = "pick"
	ActionQueueAdd     = "queue_add"
	ActionQueueRemove  = "queue_remove"
	ActionQueueReorder = "queue_reorder"
	ActionSync         = "sync"
)

// ClientIntent is the inbound message format. ParticipantID defaults to the
// connection's own participant; queue edits may target another participant's
// queue, which the room rejects unless the actor owns it.
type ClientIntent struct {
	Action           string      `json:"action"`
	ParticipantID    *uuid.UUID  `json:"participant_id,omitempty"`
	PlayerID         *uuid.UUID  `json:"player_id,omitempty"`
	OrderedPlayerIDs []uuid.UUID `json:"ordered_player_ids,omitempty"`
}

// Server message kinds.
const (
	messageKindEvent    = "event"
	messageKindSnapshot = "snapshot"
	messageKindRejected = "rejected"
	messageKindError    = "error"
)

type serverMessage struct {
	Kind      string            `json:"kind"`
	Event     *events.Envelope  `json:"event,omitempty"`
	Snapshot  *room.Snapshot    `json:"snapshot,omitempty"`
	Rejection *events.Rejection `json:"rejection,omitempty"`
	Error     string            `json:"error,omitempty"`
}
