// Package publisher pushes room events onto NATS JetStream so downstream
// consumers (notifiers, stat trackers, replay tooling) see the same stream
// the WebSocket gateway does.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/draft/events"
)

const (
	streamName    = "DRAFT_EVENTS"
	subjectPrefix = "draft.rooms"

	maxReconnects = 10
	reconnectWait = 2 * time.Second
)

// NATSPublisher publishes room event envelopes to JetStream.
type NATSPublisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect dials NATS with the reconnect handling the engine needs to ride
// out broker restarts, and ensures the event stream exists.
func Connect(ctx context.Context, natsURL string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", streamName, err)
	}

	return &NATSPublisher{nc: nc, js: js}, nil
}

// Publish sends one envelope to draft.rooms.<roomID>.<eventType>.
func (p *NATSPublisher) Publish(ctx context.Context, env events.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	subject := subjectFor(env)
	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(env.ID)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	log.Debug().Str("subject", subject).Str("event_id", env.ID).Msg("event published")
	return nil
}

func subjectFor(env events.Envelope) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, env.RoomID, env.Type)
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
