package clock

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/blindclock/go/internal/events"
	"github.com/mcdev12/blindclock/go/internal/models"
)

// Start runs the clock from the current remaining time. Only a paused
// tournament can be started.
func (e *Engine) Start(ctx context.Context) (*models.Tournament, bool) {
	return e.apply(ctx, "start", func(m *mutation) bool {
		if m.next.Status != models.StatusPaused {
			return false
		}
		m.next.Status = models.StatusRunning
		m.reanchor(m.next.TimeRemaining)
		m.emit(events.EventTypeTournamentStarted, m.clockPayload())
		return true
	})
}

// Pause stops a running clock at its reconciled remaining time.
// Pausing a tournament that is not running does nothing.
func (e *Engine) Pause(ctx context.Context) (*models.Tournament, bool) {
	return e.apply(ctx, "pause", func(m *mutation) bool {
		if !m.next.IsRunning() {
			return false
		}
		m.next.Status = models.StatusPaused
		m.emit(events.EventTypeTournamentPaused, m.clockPayload())
		return true
	})
}

// Reset restarts the tournament from the first level with every player back in.
func (e *Engine) Reset(ctx context.Context) (*models.Tournament, bool) {
	return e.apply(ctx, "reset", func(m *mutation) bool {
		m.next.Status = models.StatusPaused
		m.next.CurrentLevelIndex = 0
		m.reanchor(m.next.BlindStructure.FirstDuration())
		clearEliminations(m.next)
		m.emit(events.EventTypeTournamentReset, m.clockPayload())
		return true
	})
}

// EndTournament finishes a running or paused tournament. Every player still
// in ties for first.
func (e *Engine) EndTournament(ctx context.Context) (*models.Tournament, bool) {
	return e.apply(ctx, "end", func(m *mutation) bool {
		if m.next.IsFinished() {
			return false
		}
		winners := rankRemaining(m.next)
		m.next.Status = models.StatusFinished
		m.finished(m.now, "manual", winners)
		return true
	})
}

// AdvanceLevel moves to the next level with its full duration.
func (e *Engine) AdvanceLevel(ctx context.Context) (*models.Tournament, bool) {
	return e.gotoLevel(ctx, "advance_level", func(current int) int { return current + 1 })
}

// PreviousLevel moves back one level with its full duration.
func (e *Engine) PreviousLevel(ctx context.Context) (*models.Tournament, bool) {
	return e.gotoLevel(ctx, "previous_level", func(current int) int { return current - 1 })
}

// SetLevel jumps to the level at index. Out-of-range indices are ignored.
func (e *Engine) SetLevel(ctx context.Context, index int) (*models.Tournament, bool) {
	return e.gotoLevel(ctx, "set_level", func(int) int { return index })
}

func (e *Engine) gotoLevel(ctx context.Context, op string, target func(current int) int) (*models.Tournament, bool) {
	return e.apply(ctx, op, func(m *mutation) bool {
		from := m.next.CurrentLevelIndex
		to := target(from)
		level, ok := m.next.BlindStructure.Level(to)
		if !ok {
			return false
		}
		m.next.CurrentLevelIndex = to
		m.reanchor(level.Duration)
		m.levelChanged(from, to, m.now, false)
		return true
	})
}

// AddTime adds seconds to the current level. A negative value subtracts.
func (e *Engine) AddTime(ctx context.Context, seconds int) (*models.Tournament, bool) {
	return e.adjustTime(ctx, "add_time", seconds)
}

// SubtractTime removes seconds from the current level, stopping at zero.
func (e *Engine) SubtractTime(ctx context.Context, seconds int) (*models.Tournament, bool) {
	return e.adjustTime(ctx, "subtract_time", -seconds)
}

func (e *Engine) adjustTime(ctx context.Context, op string, delta int) (*models.Tournament, bool) {
	return e.apply(ctx, op, func(m *mutation) bool {
		before := m.next.TimeRemaining
		after := before + delta
		if after < 0 {
			after = 0
		}
		if after == before {
			return false
		}
		m.reanchor(after)
		m.emit(events.EventTypeTimeAdjusted, events.TimeAdjustedPayload{
			TournamentID:  m.next.ID.String(),
			DeltaSeconds:  after - before,
			TimeRemaining: after,
			AdjustedAt:    m.now,
		})
		return true
	})
}

// BustPlayer eliminates an active player. Busting the second-to-last player
// finishes the tournament with the survivor ranked first.
func (e *Engine) BustPlayer(ctx context.Context, id uuid.UUID) (*models.Tournament, bool) {
	return e.apply(ctx, "bust_player", func(m *mutation) bool {
		res, ok := bustPlayer(m.next, id, m.now)
		if !ok {
			return false
		}
		m.player(events.EventTypePlayerBusted, res.player)
		if res.survivor != nil {
			m.finished(m.now, "last_player", []uuid.UUID{res.survivor.ID})
		}
		return true
	})
}

// UnBustPlayer restores an eliminated player. A finished tournament goes back to paused.
func (e *Engine) UnBustPlayer(ctx context.Context, id uuid.UUID) (*models.Tournament, bool) {
	return e.apply(ctx, "unbust_player", func(m *mutation) bool {
		p, ok := unbustPlayer(m.next, id)
		if !ok {
			return false
		}
		m.player(events.EventTypePlayerRestored, p)
		return true
	})
}

// AddPlayer appends an active player. Blank names are ignored.
func (e *Engine) AddPlayer(ctx context.Context, name string) (*models.Tournament, bool) {
	return e.apply(ctx, "add_player", func(m *mutation) bool {
		p, ok := addPlayer(m.next, name)
		if !ok {
			return false
		}
		m.player(events.EventTypePlayerAdded, p)
		return true
	})
}

func (e *Engine) RemovePlayer(ctx context.Context, id uuid.UUID) (*models.Tournament, bool) {
	return e.apply(ctx, "remove_player", func(m *mutation) bool {
		p, ok := removePlayer(m.next, id)
		if !ok {
			return false
		}
		m.player(events.EventTypePlayerRemoved, p)
		return true
	})
}

func (e *Engine) RenamePlayer(ctx context.Context, id uuid.UUID, name string) (*models.Tournament, bool) {
	return e.apply(ctx, "rename_player", func(m *mutation) bool {
		if _, ok := renamePlayer(m.next, id, name); !ok {
			return false
		}
		m.player(events.EventTypePlayerRenamed, m.next.Players[m.next.PlayerIndex(id)])
		return true
	})
}
