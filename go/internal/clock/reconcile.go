package clock

import (
	"time"

	"github.com/mcdev12/blindclock/go/internal/models"
)

// epoch is the drift anchor of a running level: the instant the countdown was
// last known exactly, and the seconds left at that instant.
type epoch struct {
	at        time.Time
	remaining int
}

// rollover describes a level boundary crossed during reconciliation.
type rollover struct {
	from, to int
	at       time.Time
}

// outcome summarises what a reconciliation did to the record.
type outcome struct {
	rollovers  []rollover
	finished   bool
	finishedAt time.Time
}

func (o outcome) crossedLevel() bool { return len(o.rollovers) > 0 || o.finished }

// reconcile brings a running record up to now from its anchor. Remaining time
// is always derived from the anchor, never decremented. When the level expires
// the next level is anchored at the exact expiry instant, so a gap spanning
// several levels walks forward through all of them. Running out of levels
// finishes the tournament with zero time on the last level.
//
// Records that are not running are left untouched.
func reconcile(t *models.Tournament, anchor epoch, now time.Time) (epoch, outcome) {
	var out outcome
	if !t.IsRunning() {
		return anchor, out
	}

	for {
		elapsed := int(now.Sub(anchor.at) / time.Second)
		if elapsed < 0 {
			elapsed = 0
		}

		remaining := anchor.remaining - elapsed
		if remaining > 0 {
			t.TimeRemaining = remaining
			t.LastTickAt = anchor.at.Add(time.Duration(elapsed) * time.Second)
			return anchor, out
		}

		expiredAt := anchor.at.Add(time.Duration(anchor.remaining) * time.Second)
		next := t.CurrentLevelIndex + 1
		level, ok := t.BlindStructure.Level(next)
		if !ok {
			t.Status = models.StatusFinished
			t.TimeRemaining = 0
			t.LastTickAt = expiredAt
			out.finished = true
			out.finishedAt = expiredAt
			return epoch{at: expiredAt}, out
		}

		out.rollovers = append(out.rollovers, rollover{from: t.CurrentLevelIndex, to: next, at: expiredAt})
		t.CurrentLevelIndex = next
		t.TimeRemaining = level.Duration
		t.LastTickAt = expiredAt
		anchor = epoch{at: expiredAt, remaining: level.Duration}
	}
}
