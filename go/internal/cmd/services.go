package main

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blindclock/go/internal/blinds"
	"github.com/mcdev12/blindclock/go/internal/clock"
	"github.com/mcdev12/blindclock/go/internal/events"
	"github.com/mcdev12/blindclock/go/internal/store"
	"github.com/mcdev12/blindclock/go/internal/tournament"
)

type Services struct {
	Tournaments *tournament.Service
}

// setupPublisher publishes to JetStream when NATS_URL is set and to the log
// otherwise. The returned func closes the connection.
func setupPublisher() (events.Publisher, func() error, error) {
	natsURL := getEnv("NATS_URL", "")
	if natsURL == "" {
		log.Info().Msg("NATS_URL not set, domain events go to the log")
		return events.NewLogPublisher(), func() error { return nil }, nil
	}

	cfg := events.DefaultJetStreamConfig()
	cfg.URL = natsURL
	if natsURL == "default" {
		cfg.URL = nats.DefaultURL
	}
	publisher, err := events.NewJetStreamPublisher(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	log.Info().Str("nats_url", cfg.URL).Str("stream", cfg.StreamName).Msg("publishing domain events to JetStream")
	return publisher, publisher.Close, nil
}

func setupServices(gateway store.Gateway, presets *blinds.Registry, publisher events.Publisher, config *Config) (*Services, *tournament.App, error) {
	// Wire up dependency injection chain
	// Gateway → App (engines) → Service
	app, err := tournament.NewApp(gateway, presets, clockwork.NewRealClock(), config.Engine.CacheSize,
		clock.WithPublisher(publisher),
		clock.WithTickInterval(time.Duration(config.Engine.TickIntervalMS)*time.Millisecond),
		clock.WithPersistEvery(config.Engine.PersistEvery),
	)
	if err != nil {
		return nil, nil, err
	}

	return &Services{
		Tournaments: tournament.NewService(app),
	}, app, nil
}
