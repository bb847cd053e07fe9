package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/draft/gateway"
	"github.com/draftkit/draftroom/go/internal/draft/rooms"
	"github.com/draftkit/draftroom/go/internal/models"
	"github.com/draftkit/draftroom/go/internal/playerpool"
)

// roomsAPI exposes room lifecycle over HTTP. Draft play itself happens over
// the WebSocket gateway; this surface only creates, inspects, and closes
// rooms.
type roomsAPI struct {
	registry *rooms.Registry
	players  playerpool.Pool
	manager  *gateway.Manager

	// baseCtx bounds room-actor lifetimes. Actors must outlive the request
	// that created them, so this is the process context, never r.Context().
	baseCtx context.Context
}

type createRoomRequest struct {
	Settings     *models.RoomSettings `json:"settings,omitempty"`
	FastMode     bool                 `json:"fast_mode"`
	Participants []struct {
		DisplayName string `json:"display_name"`
		IsUser      bool   `json:"is_user"`
	} `json:"participants"`
}

type createRoomResponse struct {
	RoomID       string               `json:"room_id"`
	Participants []models.Participant `json:"participants"`
}

func (a *roomsAPI) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	participants := make([]models.Participant, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = models.Participant{
			ID:            uuid.New(),
			DisplayName:   p.DisplayName,
			IsUser:        p.IsUser,
			DraftPosition: i,
		}
	}

	players, err := a.players.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load player pool")
		http.Error(w, "player pool unavailable", http.StatusServiceUnavailable)
		return
	}

	rm, err := a.registry.CreateRoom(a.baseCtx, rooms.CreateRoomRequest{
		Settings:     req.Settings,
		FastMode:     req.FastMode,
		Participants: participants,
		Players:      players,
		OnSnapshot:   a.manager.BroadcastSnapshot,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createRoomResponse{
		RoomID:       rm.ID().String(),
		Participants: rm.Participants(),
	})
}

func (a *roomsAPI) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}

	rm, err := a.registry.Room(id)
	if err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snap, err := rm.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (a *roomsAPI) handleCloseRoom(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}

	if err := a.registry.CloseRoom(id); err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *roomsAPI) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /rooms", a.handleCreateRoom)
	mux.HandleFunc("GET /rooms/{id}", a.handleGetRoom)
	mux.HandleFunc("DELETE /rooms/{id}", a.handleCloseRoom)
}
