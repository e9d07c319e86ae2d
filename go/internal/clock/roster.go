package clock

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/blindclock/go/internal/models"
)

// bustResult describes an elimination.
type bustResult struct {
	player   models.Player
	survivor *models.Player
}

// bustPlayer eliminates an active player. The player takes the position equal
// to the number of active players counting themselves. If a single player is
// left they are ranked first and the tournament finishes.
func bustPlayer(t *models.Tournament, id uuid.UUID, now time.Time) (bustResult, bool) {
	i := t.PlayerIndex(id)
	if i < 0 || !t.Players[i].IsActive() {
		return bustResult{}, false
	}

	position := t.ActiveCount()
	bustedAt := now
	t.Players[i].BustedAt = &bustedAt
	t.Players[i].Position = &position

	res := bustResult{player: t.Players[i]}
	if t.ActiveCount() == 1 {
		for j := range t.Players {
			if t.Players[j].IsActive() {
				first := 1
				t.Players[j].Position = &first
				survivor := t.Players[j]
				res.survivor = &survivor
				break
			}
		}
		t.Status = models.StatusFinished
	}
	return res, true
}

// unbustPlayer restores an eliminated player. Other positions are left as they
// are, so ranks can be non-contiguous afterwards. A finished tournament goes
// back to paused.
func unbustPlayer(t *models.Tournament, id uuid.UUID) (models.Player, bool) {
	i := t.PlayerIndex(id)
	if i < 0 || t.Players[i].IsActive() {
		return models.Player{}, false
	}

	t.Players[i].BustedAt = nil
	t.Players[i].Position = nil
	if t.IsFinished() {
		t.Status = models.StatusPaused
	}
	return t.Players[i], true
}

func addPlayer(t *models.Tournament, name string) (models.Player, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, false
	}
	p := models.NewPlayer(name)
	t.Players = append(t.Players, p)
	return p, true
}

func removePlayer(t *models.Tournament, id uuid.UUID) (models.Player, bool) {
	i := t.PlayerIndex(id)
	if i < 0 {
		return models.Player{}, false
	}
	p := t.Players[i]
	t.Players = append(t.Players[:i], t.Players[i+1:]...)
	return p, true
}

// renamePlayer returns the previous name.
func renamePlayer(t *models.Tournament, id uuid.UUID, name string) (string, bool) {
	name = strings.TrimSpace(name)
	i := t.PlayerIndex(id)
	if i < 0 || name == "" || t.Players[i].Name == name {
		return "", false
	}
	old := t.Players[i].Name
	t.Players[i].Name = name
	return old, true
}

// rankRemaining ties every active player for first and returns their ids.
func rankRemaining(t *models.Tournament) []uuid.UUID {
	var winners []uuid.UUID
	for i := range t.Players {
		if t.Players[i].IsActive() {
			first := 1
			t.Players[i].Position = &first
			winners = append(winners, t.Players[i].ID)
		}
	}
	return winners
}

// clearEliminations returns every player to the active, unranked state.
func clearEliminations(t *models.Tournament) {
	for i := range t.Players {
		t.Players[i].BustedAt = nil
		t.Players[i].Position = nil
	}
}
