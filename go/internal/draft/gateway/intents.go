package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/draft/events"
	"github.com/draftkit/draftroom/go/internal/draft/room"
	"github.com/draftkit/draftroom/go/internal/draft/rooms"
)

// handleIntent parses one inbound client message and routes it into the room
// actor. Accepted actions ripple back to every socket through the room's
// event path; rejections and errors go back to the sender only.
func (m *Manager) handleIntent(ctx context.Context, conn *Connection, raw []byte) {
	var intent ClientIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		m.replyError(conn, "malformed message")
		return
	}

	rm, err := m.registry.Room(conn.RoomID)
	if err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			m.replyError(conn, "room no longer exists")
			return
		}
		m.replyError(conn, err.Error())
		return
	}

	// Queue edits may target another participant's queue; everything else
	// acts as the connection's participant.
	target := conn.ParticipantID
	if intent.ParticipantID != nil {
		target = *intent.ParticipantID
	}

	var rejection *events.Rejection

	switch intent.Action {
	case ActionStart:
		_, err = rm.Start(ctx)

	case ActionPause:
		_, err = rm.Pause(ctx)

	case ActionResume:
		_, err = rm.Resume(ctx)

	case ActionPick:
		if intent.PlayerID == nil {
			m.replyError(conn, "pick requires player_id")
			return
		}
		_, rejection, err = rm.ManualPick(ctx, conn.ParticipantID, *intent.PlayerID)

	case ActionQueueAdd:
		if intent.PlayerID == nil {
			m.replyError(conn, "queue_add requires player_id")
			return
		}
		_, rejection, err = rm.QueueAdd(ctx, conn.ParticipantID, target, *intent.PlayerID)

	case ActionQueueRemove:
		if intent.PlayerID == nil {
			m.replyError(conn, "queue_remove requires player_id")
			return
		}
		_, rejection, err = rm.QueueRemove(ctx, conn.ParticipantID, target, *intent.PlayerID)

	case ActionQueueReorder:
		_, rejection, err = rm.QueueReorder(ctx, conn.ParticipantID, target, intent.OrderedPlayerIDs)

	case ActionSync:
		var snap room.Snapshot
		snap, err = rm.Snapshot(ctx)
		if err == nil {
			m.replySnapshot(conn, snap)
			return
		}

	default:
		m.replyError(conn, "unknown action: "+intent.Action)
		return
	}

	if err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", conn.ID).
			Str("action", intent.Action).
			Msg("intent failed")
		m.replyError(conn, err.Error())
		return
	}
	if rejection != nil {
		m.replyRejection(conn, rejection)
	}
}

func (m *Manager) replyError(conn *Connection, msg string) {
	m.reply(conn, serverMessage{Kind: messageKindError, Error: msg})
}

func (m *Manager) replyRejection(conn *Connection, rej *events.Rejection) {
	m.reply(conn, serverMessage{Kind: messageKindRejected, Rejection: rej})
}

func (m *Manager) replySnapshot(conn *Connection, snap room.Snapshot) {
	m.reply(conn, serverMessage{Kind: messageKindSnapshot, Snapshot: &snap})
}

func (m *Manager) reply(conn *Connection, msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal reply")
		return
	}
	if !conn.trySend(data) {
		log.Warn().Str("connection_id", conn.ID).Msg("reply dropped, connection closed or buffer full")
	}
}
