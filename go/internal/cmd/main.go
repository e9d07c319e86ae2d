package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	setupLogging()

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	presets, err := setupPresets(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up presets")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, closeGateway, err := setupGateway(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	publisher, closePublisher, err := setupPublisher()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up event publisher")
	}

	services, app, err := setupServices(gateway, presets, publisher, config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up services")
	}

	server := setupServer(services)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Int("tick_interval_ms", config.Engine.TickIntervalMS).
			Int("engine_cache_size", config.Engine.CacheSize).
			Msg("tournament clock server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// stops every clock and writes its final state
	app.Close()

	if err := closePublisher(); err != nil {
		log.Error().Err(err).Msg("failed to close event publisher")
	}
	if err := closeGateway(); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}
	log.Info().Msg("tournament clock shutdown complete")
}
