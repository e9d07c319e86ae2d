package events

import (
	"time"
)

// Event types published by the clock engine.
const (
	EventTypeTournamentStarted  = "TournamentStarted"
	EventTypeTournamentPaused   = "TournamentPaused"
	EventTypeTournamentReset    = "TournamentReset"
	EventTypeTournamentFinished = "TournamentFinished"
	EventTypeLevelChanged       = "LevelChanged"
	EventTypeTimeAdjusted       = "TimeAdjusted"
	EventTypePlayerBusted       = "PlayerBusted"
	EventTypePlayerRestored     = "PlayerRestored"
	EventTypePlayerAdded        = "PlayerAdded"
	EventTypePlayerRemoved      = "PlayerRemoved"
	EventTypePlayerRenamed      = "PlayerRenamed"
)

// ClockPayload is the payload for start, pause and reset events
type ClockPayload struct {
	TournamentID  string    `json:"tournament_id"`
	LevelIndex    int       `json:"level_index"`
	TimeRemaining int       `json:"time_remaining"`
	At            time.Time `json:"at"`
}

// TournamentFinishedPayload is the payload for a TournamentFinished event
type TournamentFinishedPayload struct {
	TournamentID string    `json:"tournament_id"`
	FinishedAt   time.Time `json:"finished_at"`
	Reason       string    `json:"reason"` // "manual", "last_player", "clock"
	WinnerIDs    []string  `json:"winner_ids"`
}

// LevelChangedPayload is the payload for a LevelChanged event
type LevelChangedPayload struct {
	TournamentID  string    `json:"tournament_id"`
	FromLevel     int       `json:"from_level"`
	ToLevel       int       `json:"to_level"`
	SmallBlind    int64     `json:"small_blind"`
	BigBlind      int64     `json:"big_blind"`
	Ante          int64     `json:"ante"`
	Automatic     bool      `json:"automatic"`
	BreakDuration int       `json:"break_duration,omitempty"`
	ChangedAt     time.Time `json:"changed_at"`
}

// TimeAdjustedPayload is the payload for a TimeAdjusted event
type TimeAdjustedPayload struct {
	TournamentID  string    `json:"tournament_id"`
	DeltaSeconds  int       `json:"delta_seconds"`
	TimeRemaining int       `json:"time_remaining"`
	AdjustedAt    time.Time `json:"adjusted_at"`
}

// PlayerPayload is the payload for player lifecycle events
type PlayerPayload struct {
	TournamentID string    `json:"tournament_id"`
	PlayerID     string    `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	Position     *int      `json:"position,omitempty"`
	At           time.Time `json:"at"`
}
