// Package queue holds each participant's private ordered list of players
// they want autopicked. Queues are consulted head-first when a pick clock
// expires and are purged synchronously whenever any pick commits, so a queue
// never references an already-drafted player.
package queue

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/draftkit/draftroom/go/internal/models"
)

// Manager owns every participant queue in one room. It is not safe for
// concurrent use; the room actor is its only caller.
type Manager struct {
	clock  clockwork.Clock
	queues map[uuid.UUID][]models.QueueEntry
}

// NewManager returns an empty queue set.
func NewManager(clock clockwork.Clock) *Manager {
	return &Manager{
		clock:  clock,
		queues: make(map[uuid.UUID][]models.QueueEntry),
	}
}

// Enqueue appends a player to a participant's queue. Enqueueing a player who
// is already queued is a no-op, not an error; double-clicks and retried
// messages must not reorder or duplicate anything. The caller is responsible
// for ensuring the player is not already drafted.
func (m *Manager) Enqueue(participantID uuid.UUID, player models.Player) {
	for _, entry := range m.queues[participantID] {
		if entry.Player.ID == player.ID {
			return
		}
	}
	m.queues[participantID] = append(m.queues[participantID], models.QueueEntry{
		Player:   player,
		QueuedAt: m.clock.Now(),
	})
}

// DequeueFirst pops and returns the head of a participant's queue. The
// second return is false when the queue is empty.
func (m *Manager) DequeueFirst(participantID uuid.UUID) (models.QueueEntry, bool) {
	q := m.queues[participantID]
	if len(q) == 0 {
		return models.QueueEntry{}, false
	}
	head := q[0]
	m.queues[participantID] = q[1:]
	return head, true
}

// Remove deletes a single player from a participant's queue. Removing a
// player who is not queued is a no-op.
func (m *Manager) Remove(participantID, playerID uuid.UUID) {
	q := m.queues[participantID]
	for i, entry := range q {
		if entry.Player.ID == playerID {
			m.queues[participantID] = append(q[:i:i], q[i+1:]...)
			return
		}
	}
}

// Reorder rearranges a participant's queue to match orderedPlayerIDs, which
// must be an exact permutation of the current queue contents.
func (m *Manager) Reorder(participantID uuid.UUID, orderedPlayerIDs []uuid.UUID) error {
	q := m.queues[participantID]
	if len(orderedPlayerIDs) != len(q) {
		return fmt.Errorf("reorder lists %d players, queue has %d", len(orderedPlayerIDs), len(q))
	}

	byID := make(map[uuid.UUID]models.QueueEntry, len(q))
	for _, entry := range q {
		byID[entry.Player.ID] = entry
	}

	reordered := make([]models.QueueEntry, 0, len(q))
	for _, id := range orderedPlayerIDs {
		entry, ok := byID[id]
		if !ok {
			return fmt.Errorf("player %s is not in the queue", id)
		}
		delete(byID, id)
		reordered = append(reordered, entry)
	}
	m.queues[participantID] = reordered
	return nil
}

// PurgeDrafted removes the drafted player from every participant's queue and
// returns how many entries were dropped. It runs as part of pick commitment
// on the room actor, so no queue can hand out a taken player afterwards.
func (m *Manager) PurgeDrafted(playerID uuid.UUID) int {
	purged := 0
	for participantID, q := range m.queues {
		kept := q[:0]
		for _, entry := range q {
			if entry.Player.ID == playerID {
				purged++
				continue
			}
			kept = append(kept, entry)
		}
		m.queues[participantID] = kept
	}
	return purged
}

// Entries returns a copy of a participant's queue in order.
func (m *Manager) Entries(participantID uuid.UUID) []models.QueueEntry {
	q := m.queues[participantID]
	out := make([]models.QueueEntry, len(q))
	copy(out, q)
	return out
}

// Len returns the length of a participant's queue.
func (m *Manager) Len(participantID uuid.UUID) int {
	return len(m.queues[participantID])
}

// All returns a copy of every non-empty queue, keyed by participant.
func (m *Manager) All() map[uuid.UUID][]models.QueueEntry {
	out := make(map[uuid.UUID][]models.QueueEntry, len(m.queues))
	for participantID, q := range m.queues {
		if len(q) == 0 {
			continue
		}
		cp := make([]models.QueueEntry, len(q))
		copy(cp, q)
		out[participantID] = cp
	}
	return out
}
