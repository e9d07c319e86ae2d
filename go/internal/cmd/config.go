package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/blindclock/go/internal/blinds"
	"github.com/mcdev12/blindclock/go/internal/clock"
	"github.com/mcdev12/blindclock/go/internal/tournament"
)

type Config struct {
	// Presets overrides built-in presets by key or adds new ones.
	Presets map[string]blinds.Override `yaml:"presets"`
	Engine  EngineConfig               `yaml:"engine"`
}

type EngineConfig struct {
	TickIntervalMS int `yaml:"tick_interval_ms"`
	PersistEvery   int `yaml:"persist_every"`
	CacheSize      int `yaml:"cache_size"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// loadConfig reads the YAML config at path. A missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	config := &Config{
		Engine: EngineConfig{
			TickIntervalMS: int(clock.DefaultTickInterval / time.Millisecond),
			PersistEvery:   clock.DefaultPersistEvery,
			CacheSize:      tournament.DefaultCacheSize,
		},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", path).Msg("no config file, using defaults")
		return applyEnv(config), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return applyEnv(config), nil
}

// applyEnv lets environment variables win over the file.
func applyEnv(config *Config) *Config {
	config.Engine.TickIntervalMS = getEnvAsInt("TICK_INTERVAL_MS", config.Engine.TickIntervalMS)
	config.Engine.CacheSize = getEnvAsInt("ENGINE_CACHE_SIZE", config.Engine.CacheSize)
	return config
}

func setupPresets(config *Config) (*blinds.Registry, error) {
	presets := blinds.NewRegistry()
	if err := presets.Apply(config.Presets); err != nil {
		return nil, fmt.Errorf("failed to apply preset overrides: %w", err)
	}
	for _, p := range presets.List() {
		log.Debug().
			Str("preset", p.Key).
			Int("levels", len(p.Structure.Levels)).
			Msg("blind preset available")
	}
	return presets, nil
}

func setupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	level, err := zerolog.ParseLevel(strings.ToLower(getEnv("LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
