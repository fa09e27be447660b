package main

import (
	"context"
	"os"

	"github.com/akinloluwami/openpanel/internal/config"
	"github.com/akinloluwami/openpanel/internal/fingerprint"
	"github.com/akinloluwami/openpanel/internal/geo"
	"github.com/akinloluwami/openpanel/internal/httpserver"
	"github.com/akinloluwami/openpanel/internal/logging"
	"github.com/akinloluwami/openpanel/internal/queue"
	"github.com/akinloluwami/openpanel/internal/session"
	"github.com/akinloluwami/openpanel/internal/store"
	"github.com/akinloluwami/openpanel/internal/ua"
	"github.com/akinloluwami/openpanel/internal/worker"
)

// main boots the service: config → logging → DB → schema → salt rotation →
// queue + consumer → tracker → HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init(logging.Config{Level: "info", Format: "json", Output: os.Stderr})
		log := logging.Logger()
		log.Fatal().Err(err).Msg("load config")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
	log := logging.Logger()

	clientKeys, err := cfg.ClientKeys()
	if err != nil {
		log.Fatal().Err(err).Msg("parse client keys")
	}

	// Connect to durable storage (Postgres) using a connection pool.
	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer db.Close()

	// Ensure required tables/indexes exist so `docker compose up --build` is enough.
	if err := db.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	// Device-ID salts rotate on a schedule; two generations stay live so a
	// fingerprint survives one rotation without splitting the session.
	rotator, err := fingerprint.NewRotator(context.Background(), db, logging.With("rotator"))
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap salts")
	}
	if err := rotator.Start(cfg.SaltRotation); err != nil {
		log.Fatal().Err(err).Msg("start salt rotation")
	}
	defer rotator.Stop()

	// Delayed-job queue with an in-process consumer. Fired jobs land in
	// Postgres via the worker processor.
	processor := worker.NewProcessor(db, logging.With("worker"))
	q := queue.NewMemory(processor.Process)
	defer q.Close()

	tracker := session.NewTracker(
		q,
		db,
		geo.NewClient(cfg.GeoURL),
		ua.TokenParser{},
		rotator,
		session.Config{
			Timeout:     cfg.SessionTimeout,
			EndWindow:   cfg.SessionEndWindow(),
			StartOffset: cfg.SessionStartOffset,
		},
		logging.With("tracker"),
	)

	router := httpserver.NewRouter(clientKeys, db, tracker, logging.With("http"))

	log.Info().Str("addr", cfg.HTTPAddr).Msg("server started")
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
