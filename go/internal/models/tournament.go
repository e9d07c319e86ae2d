package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status defines the clock status of a tournament.
type Status string

const (
	StatusPaused   Status = "paused"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
)

// DefaultLevelDuration is used for the first level when a structure carries no duration.
const DefaultLevelDuration = 900

// ErrInvalidStructure is returned when a blind structure has no usable levels.
var ErrInvalidStructure = errors.New("invalid blind structure")

// Tournament is the unit of persistence: blind structure, roster and clock state.
type Tournament struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	Status            Status         `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
	Players           []Player       `json:"players"`
	BlindStructure    BlindStructure `json:"blindStructure"`
	Breaks            []Break        `json:"breaks"`
	CurrentLevelIndex int            `json:"currentLevelIndex"`
	TimeRemaining     int            `json:"timeRemaining"` // seconds
	LastTickAt        time.Time      `json:"lastTickAt"`
}

// NewTournament builds a paused tournament from bare player names.
// Names are trimmed and blanks dropped; every player gets a fresh id.
func NewTournament(name string, playerNames []string, structure BlindStructure, breaks []Break, now time.Time) (*Tournament, error) {
	if err := structure.Validate(); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Tournament %s", now.Format("2006-01-02"))
	}

	players := make([]Player, 0, len(playerNames))
	for _, n := range playerNames {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		players = append(players, NewPlayer(n))
	}

	structType := structure.Type
	if structType == "" {
		structType = StructureTypeCustom
	}
	levels := make([]BlindLevel, len(structure.Levels))
	copy(levels, structure.Levels)

	bs := make([]Break, len(breaks))
	copy(bs, breaks)

	t := &Tournament{
		ID:             uuid.New(),
		Name:           name,
		Status:         StatusPaused,
		CreatedAt:      now,
		Players:        players,
		BlindStructure: BlindStructure{Type: structType, Levels: levels},
		Breaks:         bs,
		LastTickAt:     now,
	}
	t.TimeRemaining = t.BlindStructure.FirstDuration()
	return t, nil
}

// Clone returns a deep copy so mutations can be committed all-or-nothing.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.Players = make([]Player, len(t.Players))
	for i, p := range t.Players {
		c.Players[i] = p.clone()
	}
	c.BlindStructure.Levels = make([]BlindLevel, len(t.BlindStructure.Levels))
	copy(c.BlindStructure.Levels, t.BlindStructure.Levels)
	c.Breaks = make([]Break, len(t.Breaks))
	copy(c.Breaks, t.Breaks)
	return &c
}

// CurrentLevel returns the active blind level.
func (t *Tournament) CurrentLevel() (BlindLevel, bool) {
	return t.BlindStructure.Level(t.CurrentLevelIndex)
}

// ActivePlayers returns the players that have not been eliminated.
func (t *Tournament) ActivePlayers() []Player {
	active := make([]Player, 0, len(t.Players))
	for _, p := range t.Players {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}

// ActiveCount returns how many players are still in.
func (t *Tournament) ActiveCount() int {
	n := 0
	for _, p := range t.Players {
		if p.IsActive() {
			n++
		}
	}
	return n
}

// PlayerIndex returns the roster index for id, or -1.
func (t *Tournament) PlayerIndex(id uuid.UUID) int {
	for i, p := range t.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// IsRunning reports whether the clock is counting down.
func (t *Tournament) IsRunning() bool { return t.Status == StatusRunning }

// IsFinished reports whether the tournament has ended.
func (t *Tournament) IsFinished() bool { return t.Status == StatusFinished }
