package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/draft/rooms"
)

// Handler terminates WebSocket upgrade requests for draft rooms.
type Handler struct {
	manager *Manager
}

// NewHandler creates an HTTP handler backed by the given gateway manager.
func NewHandler(m *Manager) *Handler {
	return &Handler{manager: m}
}

// HandleRoomConnection upgrades /ws?room_id=...&participant_id=... to a
// WebSocket bound to that room. The participant must be seated in the room.
func (h *Handler) HandleRoomConnection(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.URL.Query().Get("room_id"))
	if err != nil {
		http.Error(w, "room_id is required", http.StatusBadRequest)
		return
	}
	participantID, err := uuid.Parse(r.URL.Query().Get("participant_id"))
	if err != nil {
		http.Error(w, "participant_id is required", http.StatusBadRequest)
		return
	}

	rm, err := h.manager.registry.Room(roomID)
	if err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	seated := false
	for _, p := range rm.Participants() {
		if p.ID == participantID {
			seated = true
			break
		}
	}
	if !seated {
		http.Error(w, "participant is not seated in this room", http.StatusForbidden)
		return
	}

	conn, err := h.manager.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to upgrade WebSocket connection")
		return
	}

	connection := &Connection{
		ID:            uuid.New().String(),
		ParticipantID: participantID,
		RoomID:        roomID,
		conn:          conn,
		send:          make(chan []byte, 256),
		manager:       h.manager,
		connectedAt:   time.Now(),
	}
	h.manager.register(connection)

	// The request context dies when this handler returns, so intents run
	// against the background context instead.
	go connection.writePump()
	go connection.readPump(context.Background())

	// New sockets get the current state immediately so late joiners and
	// reconnects render without waiting for the next event.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if snap, err := rm.Snapshot(ctx); err == nil {
		h.manager.replySnapshot(connection, snap)
	}

	log.Info().
		Str("connection_id", connection.ID).
		Str("participant_id", participantID.String()).
		Str("room_id", roomID.String()).
		Msg("WebSocket connection established")
}

// HandleStats reports pool sizes for a room.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.URL.Query().Get("room_id"))
	if err != nil {
		http.Error(w, "room_id is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"connections":` + strconv.Itoa(h.manager.ConnectionCount(roomID)) + `}`))
}

// RegisterRoutes attaches the gateway endpoints to an HTTP mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleRoomConnection)
	mux.HandleFunc("/ws/stats", h.HandleStats)
}
