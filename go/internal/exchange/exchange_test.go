package exchange

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/blindclock/go/internal/models"
)

var now = time.Date(2026, 6, 5, 18, 30, 0, 0, time.UTC)

func sample(t *testing.T) *models.Tournament {
	t.Helper()
	tour, err := models.NewTournament("Friday Night #3", []string{"Ann", "Ben", "Cat"}, models.BlindStructure{
		Type: "fast",
		Levels: []models.BlindLevel{
			{SmallBlind: 25, BigBlind: 50, Duration: 600},
			{SmallBlind: 50, BigBlind: 100, Duration: 600},
			{SmallBlind: 400, BigBlind: 800, Ante: 100, Duration: 600},
		},
	}, []models.Break{{AfterLevel: 2, Duration: 900}}, now.Add(-time.Hour))
	require.NoError(t, err)
	return tour
}

func TestConfigRoundTrip(t *testing.T) {
	orig := sample(t)
	busted := now
	pos := 3
	orig.Players[2].BustedAt = &busted
	orig.Players[2].Position = &pos
	orig.CurrentLevelIndex = 2

	data, err := ExportConfig(orig, now)
	require.NoError(t, err)

	imported, err := ImportConfig(data, now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, orig.BlindStructure, imported.BlindStructure)
	assert.Equal(t, orig.Breaks, imported.Breaks)
	assert.Equal(t, orig.Name, imported.Name)
	assert.NotEqual(t, orig.ID, imported.ID)
	assert.Equal(t, 0, imported.CurrentLevelIndex)
	assert.Equal(t, 600, imported.TimeRemaining)
	assert.Equal(t, models.StatusPaused, imported.Status)

	require.Len(t, imported.Players, 3)
	for i, p := range imported.Players {
		assert.Equal(t, orig.Players[i].Name, p.Name)
		assert.NotEqual(t, orig.Players[i].ID, p.ID)
		assert.Nil(t, p.BustedAt)
		assert.Nil(t, p.Position)
	}
}

func TestExportConfigShape(t *testing.T) {
	data, err := ExportConfig(sample(t), now)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "1.0", doc["version"])
	assert.Equal(t, float64(now.UnixMilli()), doc["exportedAt"])
	assert.Equal(t, []any{"Ann", "Ben", "Cat"}, doc["players"])
	assert.Contains(t, doc, "blindStructure")
	assert.Contains(t, doc, "breaks")
}

func TestImportConfigDefaults(t *testing.T) {
	tour, err := ImportConfig([]byte(`{"blindStructure":{"levels":[{"smallBlind":10,"bigBlind":20,"ante":0,"duration":300}]}}`), now)
	require.NoError(t, err)

	assert.Equal(t, "Imported Tournament", tour.Name)
	assert.Empty(t, tour.Players)
	assert.NotNil(t, tour.Breaks)
	assert.Empty(t, tour.Breaks)
	assert.Equal(t, models.StructureTypeCustom, tour.BlindStructure.Type)
	assert.Equal(t, 300, tour.TimeRemaining)
}

func TestImportConfigAcceptsPlayerObjects(t *testing.T) {
	tour, err := ImportConfig([]byte(`{
		"name": "Mixed",
		"blindStructure": {"type": "turbo", "levels": [{"smallBlind":10,"bigBlind":20,"ante":0,"duration":300}]},
		"players": ["Ann", {"id": "player-1", "name": "Ben"}]
	}`), now)
	require.NoError(t, err)
	require.Len(t, tour.Players, 2)
	assert.Equal(t, "Ann", tour.Players[0].Name)
	assert.Equal(t, "Ben", tour.Players[1].Name)
}

func TestImportConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"not json":          `{`,
		"no structure":      `{"name":"x","players":["a"]}`,
		"no levels":         `{"blindStructure":{"type":"custom"}}`,
		"empty levels":      `{"blindStructure":{"levels":[]}}`,
		"zero duration":     `{"blindStructure":{"levels":[{"smallBlind":1,"bigBlind":2,"duration":0}]}}`,
		"structure is null": `{"blindStructure":null}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ImportConfig([]byte(doc), now)
			assert.ErrorIs(t, err, ErrInvalidImport)
		})
	}
}

func TestBackupRoundTrip(t *testing.T) {
	orig := sample(t)
	busted := now.Add(-10 * time.Minute)
	pos := 3
	orig.Players[2].BustedAt = &busted
	orig.Players[2].Position = &pos
	orig.Status = models.StatusRunning
	orig.CurrentLevelIndex = 1
	orig.TimeRemaining = 321
	orig.LastTickAt = now

	data, err := ExportBackup(orig)
	require.NoError(t, err)

	restored, err := ImportBackup(data)
	require.NoError(t, err)
	assert.Equal(t, orig, restored)
}

func TestImportLegacyBackup(t *testing.T) {
	doc := `{
		"id": "5f0c8f8e-1b7e-4a57-8d4f-2f4b7f0d9a11",
		"name": "Home Game",
		"status": "paused",
		"createdAt": 1767225600000,
		"players": [
			{"id": "player-1767225600000-abc123xyz", "name": "Ann", "bustedAt": 1767229200000, "position": 2},
			{"id": "7d1f3e0a-0b4c-4e2a-9a55-0c7e1f3b2a10", "name": "Ben", "bustedAt": null, "position": null},
			"Cat"
		],
		"blindStructure": {"type": "medium", "levels": [{"smallBlind":25,"bigBlind":50,"ante":0,"duration":900}]},
		"breaks": [],
		"currentLevelIndex": 0,
		"timeRemaining": 512,
		"lastTickAt": 1767229300000
	}`

	tour, err := ImportBackup([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "5f0c8f8e-1b7e-4a57-8d4f-2f4b7f0d9a11", tour.ID.String())
	assert.Equal(t, time.UnixMilli(1767225600000).UTC(), tour.CreatedAt)
	assert.Equal(t, 512, tour.TimeRemaining)
	require.Len(t, tour.Players, 3)

	ann := tour.Players[0]
	require.NotNil(t, ann.BustedAt)
	assert.Equal(t, time.UnixMilli(1767229200000).UTC(), *ann.BustedAt)
	assert.Equal(t, 2, *ann.Position)

	// legacy ids map to the same uuid every time
	again, err := ImportBackup([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, ann.ID, again.Players[0].ID)

	assert.Equal(t, "7d1f3e0a-0b4c-4e2a-9a55-0c7e1f3b2a10", tour.Players[1].ID.String())
	assert.True(t, tour.Players[1].IsActive())
	assert.Equal(t, "Cat", tour.Players[2].Name)
}

func TestImportBackupInvalid(t *testing.T) {
	tests := map[string]string{
		"not json":     `[]`,
		"no id":        `{"blindStructure":{"levels":[{"smallBlind":1,"bigBlind":2,"duration":60}]}}`,
		"no structure": `{"id":"abc"}`,
		"bad time":     `{"id":"abc","createdAt":"yesterday","blindStructure":{"levels":[{"smallBlind":1,"bigBlind":2,"duration":60}]}}`,
		"nameless":     `{"id":"abc","players":[{"id":"p"}],"blindStructure":{"levels":[{"smallBlind":1,"bigBlind":2,"duration":60}]}}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ImportBackup([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidImport)
		})
	}
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "friday-night--3-config.json", ConfigFileName("Friday Night #3"))
	assert.Equal(t, "home-game-full-backup.json", BackupFileName("Home Game"))
}
