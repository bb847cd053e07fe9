package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/dbconfig"
	"github.com/draftkit/draftroom/go/internal/draft/gateway"
	"github.com/draftkit/draftroom/go/internal/draft/publisher"
	"github.com/draftkit/draftroom/go/internal/draft/rooms"
	"github.com/draftkit/draftroom/go/internal/playerpool"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	natsURL := getEnv("NATS_URL", nats.DefaultURL)
	defaultsPath := getEnv("ROOM_DEFAULTS_PATH", "")

	defaults, err := loadRoomDefaults(defaultsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid room defaults")
	}

	dbCfg := dbconfig.NewConfigFromEnv()
	db, err := pgxpool.New(context.Background(), dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	players := playerpool.NewRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	natsPub, err := publisher.Connect(ctx, natsURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	defer natsPub.Close()

	// Rooms publish through the fanout; the gateway sink is attached once
	// the manager exists.
	fan := publisher.NewFanout(natsPub)
	registry := rooms.NewRegistry(clockwork.NewRealClock(), fan, defaults)
	defer registry.Close()

	manager := gateway.NewManager(registry, gateway.DefaultConnectionConfig())
	fan.Add(manager)
	go manager.Run(ctx)

	api := &roomsAPI{registry: registry, players: players, manager: manager, baseCtx: ctx}
	server := setupServer(gateway.NewHandler(manager), api)

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("nats_url", natsURL).
			Str("database", dbCfg.Database).
			Int("default_team_count", defaults.TeamCount).
			Msg("draft room server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	registry.Close()
	cancel()
	log.Info().Msg("draft room server shutdown complete")
}
