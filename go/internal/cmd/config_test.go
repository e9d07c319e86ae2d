package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/blindclock/go/internal/blinds"
	"github.com/mcdev12/blindclock/go/internal/clock"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 200, config.Engine.TickIntervalMS)
	assert.Equal(t, clock.DefaultPersistEvery, config.Engine.PersistEvery)
	assert.Empty(t, config.Presets)
}

func TestLoadConfigWithPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  tick_interval_ms: 500
presets:
  fast:
    level_duration: 480
  deepstack:
    name: Deep Stack
    level_count: 12
  home:
    levels:
      - {small_blind: 5, big_blind: 10, duration: 900}
      - {small_blind: 10, big_blind: 20, ante: 2, duration: 900}
`), 0o600))
	t.Setenv("ENGINE_CACHE_SIZE", "8")

	config, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 500, config.Engine.TickIntervalMS)
	assert.Equal(t, 8, config.Engine.CacheSize)
	assert.Equal(t, clock.DefaultPersistEvery, config.Engine.PersistEvery)

	presets, err := setupPresets(config)
	require.NoError(t, err)

	fast, err := presets.Get(blinds.KeyFast)
	require.NoError(t, err)
	assert.Equal(t, 480, fast.Structure.Levels[0].Duration)

	deep, err := presets.Get("deepstack")
	require.NoError(t, err)
	assert.Equal(t, "Deep Stack", deep.Name)
	assert.Len(t, deep.Structure.Levels, 12)

	home, err := presets.Get("home")
	require.NoError(t, err)
	require.Len(t, home.Structure.Levels, 2)
	assert.Equal(t, int64(2), home.Structure.Levels[1].Ante)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets: [unclosed"), 0o600))

	_, err := loadConfig(path)
	assert.Error(t, err)
}
