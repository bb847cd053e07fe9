// Package gateway exposes draft rooms over WebSocket. Each connection is
// bound to one room and one participant; outbound traffic carries the room's
// event stream plus full state snapshots, inbound traffic carries client
// intents routed into the room actor.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/draft/events"
	"github.com/draftkit/draftroom/go/internal/draft/room"
	"github.com/draftkit/draftroom/go/internal/draft/rooms"
)

// Manager owns the WebSocket connection pools, one pool per room.
type Manager struct {
	registry *rooms.Registry

	mu    sync.RWMutex
	pools map[uuid.UUID]map[*Connection]bool

	upgrader    websocket.Upgrader
	config      ConnectionConfig
	broadcastCh chan broadcast
}

// Connection is one client socket bound to a room participant.
type Connection struct {
	ID            string
	ParticipantID uuid.UUID
	RoomID        uuid.UUID

	conn    *websocket.Conn
	send    chan []byte
	manager *Manager

	// mu guards closed; send is only closed while it is held, so no
	// goroutine can write to send after the close.
	mu     sync.Mutex
	closed bool

	connectedAt time.Time
}

// trySend queues a payload for the write pump without blocking. It reports
// false when the connection is closed or its buffer is full.
func (c *Connection) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// ConnectionConfig holds socket tuning for the gateway.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns the socket tuning used unless overridden.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

type broadcast struct {
	roomID  uuid.UUID
	payload []byte
}

// NewManager creates a gateway manager serving rooms from the given registry.
func NewManager(registry *rooms.Registry, config ConnectionConfig) *Manager {
	return &Manager{
		registry: registry,
		pools:    make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcast, 1000),
	}
}

// Run processes broadcast messages until the context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	log.Info().Msg("gateway manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("gateway manager shutting down")
			return
		case msg := <-m.broadcastCh:
			m.deliver(msg)
		}
	}
}

// Publish fans a room event out to every socket in that room's pool.
// Implements room.Publisher, so the manager can sit alongside the NATS
// publisher in the room's event path.
func (m *Manager) Publish(_ context.Context, env events.Envelope) error {
	roomID, err := uuid.Parse(env.RoomID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(serverMessage{Kind: messageKindEvent, Event: &env})
	if err != nil {
		return err
	}

	m.enqueue(roomID, data)
	return nil
}

// BroadcastSnapshot fans a full room snapshot out to the room's pool. Wired
// as the registry's per-room snapshot callback.
func (m *Manager) BroadcastSnapshot(snap room.Snapshot) {
	data, err := json.Marshal(serverMessage{Kind: messageKindSnapshot, Snapshot: &snap})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal snapshot for broadcast")
		return
	}

	m.enqueue(snap.RoomID, data)
}

func (m *Manager) enqueue(roomID uuid.UUID, payload []byte) {
	select {
	case m.broadcastCh <- broadcast{roomID: roomID, payload: payload}:
	default:
		log.Warn().Str("room_id", roomID.String()).Msg("broadcast channel full, dropping message")
	}
}

func (m *Manager) deliver(msg broadcast) {
	m.mu.RLock()
	pool, ok := m.pools[msg.roomID]
	if !ok {
		m.mu.RUnlock()
		return
	}
	targets := make([]*Connection, 0, len(pool))
	for conn := range pool {
		targets = append(targets, conn)
	}
	m.mu.RUnlock()

	for _, conn := range targets {
		if !conn.trySend(msg.payload) {
			// Slow or dead consumer, drop the socket rather than the room.
			log.Warn().
				Str("connection_id", conn.ID).
				Str("room_id", msg.roomID.String()).
				Msg("connection cannot keep up, closing connection")
			m.unregister(conn)
			conn.conn.Close()
		}
	}
}

func (m *Manager) register(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pools[conn.RoomID] == nil {
		m.pools[conn.RoomID] = make(map[*Connection]bool)
	}
	m.pools[conn.RoomID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("room_id", conn.RoomID.String()).
		Int("pool_size", len(m.pools[conn.RoomID])).
		Msg("connection registered")
}

func (m *Manager) unregister(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pool, ok := m.pools[conn.RoomID]
	if !ok {
		return
	}
	if _, ok := pool[conn]; !ok {
		return
	}
	delete(pool, conn)
	conn.mu.Lock()
	if !conn.closed {
		conn.closed = true
		close(conn.send)
	}
	conn.mu.Unlock()
	if len(pool) == 0 {
		delete(m.pools, conn.RoomID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("participant_id", conn.ParticipantID.String()).
		Str("room_id", conn.RoomID.String()).
		Msg("connection unregistered")
}

// ConnectionCount reports how many sockets are attached to a room.
func (m *Manager) ConnectionCount(roomID uuid.UUID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pools[roomID])
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.manager.unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) readPump(ctx context.Context) {
	defer func() {
		c.manager.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.manager.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.manager.handleIntent(ctx, c, message)
		c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	}
}
