package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Player is a tournament entrant. A nil BustedAt means the player is still active.
type Player struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	BustedAt *time.Time `json:"bustedAt"`
	Position *int       `json:"position"`
}

// NewPlayer creates an active, unranked player.
func NewPlayer(name string) Player {
	return Player{
		ID:   uuid.New(),
		Name: name,
	}
}

// IsActive reports whether the player is still in the tournament.
func (p Player) IsActive() bool {
	return p.BustedAt == nil
}

func (p Player) clone() Player {
	c := p
	if p.BustedAt != nil {
		b := *p.BustedAt
		c.BustedAt = &b
	}
	if p.Position != nil {
		pos := *p.Position
		c.Position = &pos
	}
	return c
}

// Leaderboard orders players for display: active players by name, then
// eliminated players with the most recent elimination first.
func Leaderboard(players []Player) []Player {
	var active, busted []Player
	for _, p := range players {
		if p.IsActive() {
			active = append(active, p)
		} else {
			busted = append(busted, p)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return strings.ToLower(active[i].Name) < strings.ToLower(active[j].Name)
	})
	sort.SliceStable(busted, func(i, j int) bool {
		return busted[i].BustedAt.After(*busted[j].BustedAt)
	})

	return append(active, busted...)
}
