package exchange

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mcdev12/blindclock/go/internal/models"
)

// Version is written into every configuration export.
const Version = "1.0"

const defaultImportName = "Imported Tournament"

// Config is the shareable tournament setup: structure, breaks and player
// names, without any clock or elimination state.
type Config struct {
	Name           string                `json:"name"`
	BlindStructure models.BlindStructure `json:"blindStructure"`
	Breaks         []models.Break        `json:"breaks"`
	Players        []string              `json:"players"`
	ExportedAt     int64                 `json:"exportedAt"` // unix ms
	Version        string                `json:"version"`
}

// NewConfig captures the setup of t.
func NewConfig(t *models.Tournament, now time.Time) Config {
	names := make([]string, len(t.Players))
	for i, p := range t.Players {
		names[i] = p.Name
	}
	levels := make([]models.BlindLevel, len(t.BlindStructure.Levels))
	copy(levels, t.BlindStructure.Levels)
	breaks := make([]models.Break, len(t.Breaks))
	copy(breaks, t.Breaks)

	return Config{
		Name:           t.Name,
		BlindStructure: models.BlindStructure{Type: t.BlindStructure.Type, Levels: levels},
		Breaks:         breaks,
		Players:        names,
		ExportedAt:     now.UnixMilli(),
		Version:        Version,
	}
}

// ExportConfig renders the configuration document of t.
func ExportConfig(t *models.Tournament, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(NewConfig(t, now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// configDocument accepts what older exports wrote: players as bare names or
// as player objects, and optional sections left out entirely.
type configDocument struct {
	Name           string          `json:"name"`
	BlindStructure *structureDoc   `json:"blindStructure"`
	Breaks         []models.Break  `json:"breaks"`
	Players        []playerEntry   `json:"players"`
	ExportedAt     json.RawMessage `json:"exportedAt"`
	Version        string          `json:"version"`
}

type structureDoc struct {
	Type   string              `json:"type"`
	Levels []models.BlindLevel `json:"levels"`
}

// ParseConfig decodes and validates a configuration document. Absent players
// and breaks default to empty and a blank name to "Imported Tournament".
func ParseConfig(data []byte) (Config, error) {
	var doc configDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse config file: %v", ErrInvalidImport, err)
	}
	if doc.BlindStructure == nil || doc.BlindStructure.Levels == nil {
		return Config{}, fmt.Errorf("%w: missing blind structure", ErrInvalidImport)
	}

	structure := models.BlindStructure{Type: doc.BlindStructure.Type, Levels: doc.BlindStructure.Levels}
	if structure.Type == "" {
		structure.Type = models.StructureTypeCustom
	}
	if err := structure.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	cfg := Config{
		Name:           strings.TrimSpace(doc.Name),
		BlindStructure: structure,
		Breaks:         doc.Breaks,
		Players:        make([]string, 0, len(doc.Players)),
		Version:        doc.Version,
	}
	if cfg.Name == "" {
		cfg.Name = defaultImportName
	}
	if cfg.Breaks == nil {
		cfg.Breaks = []models.Break{}
	}
	for _, p := range doc.Players {
		cfg.Players = append(cfg.Players, p.Name)
	}
	if at, ok, err := decodeTime(doc.ExportedAt); err == nil && ok {
		cfg.ExportedAt = at.UnixMilli()
	}
	return cfg, nil
}

// ImportConfig builds a fresh paused tournament from a configuration document.
// Players get new ids and no elimination state.
func ImportConfig(data []byte, now time.Time) (*models.Tournament, error) {
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	t, err := models.NewTournament(cfg.Name, cfg.Players, cfg.BlindStructure, cfg.Breaks, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return t, nil
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

func slug(name string) string {
	return strings.ToLower(nonAlnum.ReplaceAllString(name, "-"))
}

// ConfigFileName is the download name of a configuration export.
func ConfigFileName(name string) string {
	return slug(name) + "-config.json"
}

// BackupFileName is the download name of a full backup.
func BackupFileName(name string) string {
	return slug(name) + "-full-backup.json"
}
