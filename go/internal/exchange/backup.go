package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/blindclock/go/internal/models"
)

// legacyNamespace derives stable uuids for ids that are not uuids, such as the
// "player-<ms>-<rand>" ids written by the browser app.
var legacyNamespace = uuid.MustParse("3c1f8f0e-6a57-4d39-9a0e-5b8e6f7c2d41")

// ExportBackup renders the complete record, including clock and elimination state.
func ExportBackup(t *models.Tournament) ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	return data, nil
}

type backupDocument struct {
	ID                json.RawMessage `json:"id"`
	Name              string          `json:"name"`
	Status            models.Status   `json:"status"`
	CreatedAt         json.RawMessage `json:"createdAt"`
	Players           []playerEntry   `json:"players"`
	BlindStructure    *structureDoc   `json:"blindStructure"`
	Breaks            []models.Break  `json:"breaks"`
	CurrentLevelIndex int             `json:"currentLevelIndex"`
	TimeRemaining     int             `json:"timeRemaining"`
	LastTickAt        json.RawMessage `json:"lastTickAt"`
}

// playerEntry is either a bare name or a player object.
type playerEntry struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	BustedAt json.RawMessage `json:"bustedAt"`
	Position *int            `json:"position"`
}

func (p *playerEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &p.Name)
	}
	type plain playerEntry
	return json.Unmarshal(data, (*plain)(p))
}

// ImportBackup restores a record exactly as exported. The document must carry
// an id and a blind structure with levels. Timestamps may be RFC 3339 strings
// or unix milliseconds.
func ImportBackup(data []byte) (*models.Tournament, error) {
	var doc backupDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse tournament file: %v", ErrInvalidImport, err)
	}

	id, ok := decodeID(doc.ID)
	if !ok {
		return nil, fmt.Errorf("%w: missing tournament id", ErrInvalidImport)
	}
	if doc.BlindStructure == nil || len(doc.BlindStructure.Levels) == 0 {
		return nil, fmt.Errorf("%w: missing blind structure", ErrInvalidImport)
	}
	structure := models.BlindStructure{Type: doc.BlindStructure.Type, Levels: doc.BlindStructure.Levels}
	if structure.Type == "" {
		structure.Type = models.StructureTypeCustom
	}
	if err := structure.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	createdAt, err := requireTime(doc.CreatedAt, "createdAt")
	if err != nil {
		return nil, err
	}
	lastTickAt, err := requireTime(doc.LastTickAt, "lastTickAt")
	if err != nil {
		return nil, err
	}

	t := &models.Tournament{
		ID:                id,
		Name:              doc.Name,
		Status:            doc.Status,
		CreatedAt:         createdAt,
		Players:           make([]models.Player, 0, len(doc.Players)),
		BlindStructure:    structure,
		Breaks:            doc.Breaks,
		CurrentLevelIndex: doc.CurrentLevelIndex,
		TimeRemaining:     doc.TimeRemaining,
		LastTickAt:        lastTickAt,
	}
	if t.Status == "" {
		t.Status = models.StatusPaused
	}
	if t.Breaks == nil {
		t.Breaks = []models.Break{}
	}

	for i, entry := range doc.Players {
		p, err := entry.player()
		if err != nil {
			return nil, fmt.Errorf("%w: player %d: %v", ErrInvalidImport, i+1, err)
		}
		t.Players = append(t.Players, p)
	}
	return t, nil
}

func (p playerEntry) player() (models.Player, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return models.Player{}, fmt.Errorf("missing name")
	}

	out := models.NewPlayer(name)
	if id, ok := decodeID(p.ID); ok {
		out.ID = id
	}
	bustedAt, ok, err := decodeTime(p.BustedAt)
	if err != nil {
		return models.Player{}, fmt.Errorf("bustedAt: %v", err)
	}
	if ok {
		out.BustedAt = &bustedAt
	}
	if p.Position != nil {
		pos := *p.Position
		out.Position = &pos
	}
	return out, nil
}

// decodeID accepts a uuid string, or derives a stable uuid from any other
// non-empty string or number.
func decodeID(raw json.RawMessage) (uuid.UUID, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return uuid.Nil, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, false
	}
	if id, err := uuid.Parse(s); err == nil {
		return id, true
	}
	return uuid.NewSHA1(legacyNamespace, []byte(s)), true
}

// decodeTime reports ok=false for absent or null values.
func decodeTime(raw json.RawMessage) (time.Time, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false, nil
	}
	if raw[0] == '"' {
		var t time.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err != nil {
		var f float64
		if ferr := json.Unmarshal(raw, &f); ferr != nil {
			return time.Time{}, false, err
		}
		ms = int64(f)
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

func requireTime(raw json.RawMessage, field string) (time.Time, error) {
	t, ok, err := decodeTime(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrInvalidImport, field, err)
	}
	if !ok {
		return time.Time{}, nil
	}
	return t, nil
}
