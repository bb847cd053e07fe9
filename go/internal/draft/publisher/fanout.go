package publisher

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/draft/events"
	"github.com/draftkit/draftroom/go/internal/draft/room"
)

// Fanout forwards each envelope to every attached publisher. It lets the
// broker publisher and the WebSocket gateway share one event path. Sinks may
// be attached after construction, before rooms start emitting.
type Fanout struct {
	mu    sync.RWMutex
	sinks []room.Publisher
}

func NewFanout(sinks ...room.Publisher) *Fanout {
	return &Fanout{sinks: sinks}
}

// Add attaches another sink.
func (f *Fanout) Add(p room.Publisher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, p)
}

// Publish delivers the envelope to every sink. A failing sink is logged and
// skipped so one slow consumer cannot stall the others.
func (f *Fanout) Publish(ctx context.Context, env events.Envelope) error {
	f.mu.RLock()
	sinks := make([]room.Publisher, len(f.sinks))
	copy(sinks, f.sinks)
	f.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Publish(ctx, env); err != nil {
			log.Error().Err(err).Str("event_id", env.ID).Msg("event sink failed")
		}
	}
	return nil
}

var _ room.Publisher = (*Fanout)(nil)
