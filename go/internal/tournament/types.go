package tournament

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/mcdev12/blindclock/go/internal/blinds"
	"github.com/mcdev12/blindclock/go/internal/models"
)

// Command names accepted by the Command procedure.
const (
	CommandStart        = "start"
	CommandPause        = "pause"
	CommandReset        = "reset"
	CommandEnd          = "end"
	CommandAdvance      = "advance"
	CommandPrevious     = "previous"
	CommandSetLevel     = "set_level"
	CommandAddTime      = "add_time"
	CommandSubtractTime = "subtract_time"
	CommandBust         = "bust"
	CommandUnbust       = "unbust"
	CommandAddPlayer    = "add_player"
	CommandRemovePlayer = "remove_player"
	CommandRenamePlayer = "rename_player"
)

// Command is one engine operation addressed to a tournament.
type Command struct {
	Name       string
	Seconds    int
	LevelIndex int
	PlayerID   uuid.UUID
	PlayerName string
}

type CreateTournamentRequest struct {
	Name    string `json:"name"`
	Players []string `json:"players"`
	// Preset is a preset key. Ignored when Levels is set.
	Preset string              `json:"preset"`
	Levels []models.BlindLevel `json:"levels"`
	Breaks []models.Break      `json:"breaks"`
}

type GetTournamentRequest struct {
	TournamentID string `json:"tournamentId"`
}

type DeleteTournamentRequest struct {
	TournamentID string `json:"tournamentId"`
}

type DeleteTournamentResponse struct{}

type ListTournamentsRequest struct{}

type ListTournamentsResponse struct {
	Tournaments []TournamentView `json:"tournaments"`
}

type ListPresetsRequest struct{}

type ListPresetsResponse struct {
	Presets []blinds.Preset `json:"presets"`
}

type ExportRequest struct {
	TournamentID string `json:"tournamentId"`
}

type ExportResponse struct {
	FileName string          `json:"fileName"`
	Document json.RawMessage `json:"document"`
}

type ImportRequest struct {
	Document json.RawMessage `json:"document"`
}

type CommandRequest struct {
	TournamentID string `json:"tournamentId"`
	Command      string `json:"command"`
	Seconds      int    `json:"seconds"`
	LevelIndex   int    `json:"levelIndex"`
	PlayerID     string `json:"playerId"`
	Name         string `json:"name"`
}

type TournamentResponse struct {
	Tournament TournamentView `json:"tournament"`
}

type CommandResponse struct {
	Tournament TournamentView `json:"tournament"`
	Changed    bool           `json:"changed"`
}

// TournamentView is a record plus the derived values a clock display needs.
type TournamentView struct {
	*models.Tournament

	CurrentLevel       *models.BlindLevel `json:"currentLevel,omitempty"`
	NextLevel          *models.BlindLevel `json:"nextLevel,omitempty"`
	BreakAfterCurrent  *models.Break      `json:"breakAfterCurrent,omitempty"`
	Clock              string             `json:"clock"`
	Blinds             string             `json:"blinds"`
	Progress           float64            `json:"progress"`
	ActivePlayers      int                `json:"activePlayers"`
	EstimatedTotalTime string             `json:"estimatedTotalTime"`
	Leaderboard        []models.Player    `json:"leaderboard"`
}

func newView(t *models.Tournament) TournamentView {
	v := TournamentView{
		Tournament:         t,
		Clock:              models.FormatClock(t.TimeRemaining),
		Progress:           models.Progress(t.CurrentLevelIndex, t.TimeRemaining, t.BlindStructure.Levels),
		ActivePlayers:      t.ActiveCount(),
		EstimatedTotalTime: models.FormatDuration(models.EstimateTotalTime(t.BlindStructure.Levels, t.Breaks)),
		Leaderboard:        models.Leaderboard(t.Players),
	}
	if l, ok := t.CurrentLevel(); ok {
		v.CurrentLevel = &l
		v.Blinds = models.FormatBlinds(l)
	}
	if l, ok := t.BlindStructure.Level(t.CurrentLevelIndex + 1); ok {
		v.NextLevel = &l
	}
	if b, ok := models.BreakAfterLevel(t.CurrentLevelIndex, t.Breaks); ok {
		v.BreakAfterCurrent = &b
	}
	return v
}
