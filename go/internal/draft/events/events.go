// Package events defines the domain events a draft room emits and the JSON
// envelope they travel in, shared by the room actor, the NATS publisher, and
// the WebSocket gateway.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of room event inside an envelope.
type EventType string

const (
	EventTypeRoomStarted    EventType = "RoomStarted"
	EventTypeRoomPaused     EventType = "RoomPaused"
	EventTypeRoomResumed    EventType = "RoomResumed"
	EventTypeRoomCompleted  EventType = "RoomCompleted"
	EventTypePickStarted    EventType = "PickStarted"
	EventTypePickMade       EventType = "PickMade"
	EventTypeTimerTick      EventType = "TimerTick"
	EventTypeActionRejected EventType = "ActionRejected"
)

// EnvelopeVersion is bumped when the wire shape of Envelope changes.
const EnvelopeVersion = "1"

// Envelope is the wire form of every room event.
type Envelope struct {
	ID        string          `json:"id"`
	Version   string          `json:"version"`
	RoomID    string          `json:"room_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEnvelope wraps a payload for publication.
func NewEnvelope(roomID uuid.UUID, eventType EventType, at time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:        uuid.New().String(),
		Version:   EnvelopeVersion,
		RoomID:    roomID.String(),
		Type:      eventType,
		Timestamp: at,
		Data:      data,
	}, nil
}
