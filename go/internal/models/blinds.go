package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Structure types carried for export fidelity.
const (
	StructureTypeCustom = "custom"
)

// BlindLevel is one stage of the tournament. Duration is in seconds.
type BlindLevel struct {
	SmallBlind int64 `json:"smallBlind" yaml:"small_blind"`
	BigBlind   int64 `json:"bigBlind" yaml:"big_blind"`
	Ante       int64 `json:"ante" yaml:"ante"`
	Duration   int   `json:"duration" yaml:"duration"`
}

// BlindStructure is the ordered list of levels.
type BlindStructure struct {
	Type   string       `json:"type"`
	Levels []BlindLevel `json:"levels"`
}

// Break is a pause scheduled after a 1-based level number.
type Break struct {
	AfterLevel int `json:"afterLevel"`
	Duration   int `json:"duration"`
}

// Validate checks the structure has at least one level and sane values.
func (s BlindStructure) Validate() error {
	if len(s.Levels) == 0 {
		return fmt.Errorf("%w: no levels", ErrInvalidStructure)
	}
	for i, l := range s.Levels {
		if l.Duration <= 0 {
			return fmt.Errorf("%w: level %d has non-positive duration %d", ErrInvalidStructure, i+1, l.Duration)
		}
		if l.SmallBlind < 0 || l.BigBlind < 0 || l.Ante < 0 {
			return fmt.Errorf("%w: level %d has negative blinds", ErrInvalidStructure, i+1)
		}
	}
	return nil
}

// Len returns the number of levels.
func (s BlindStructure) Len() int { return len(s.Levels) }

// Level returns the level at a 0-based index.
func (s BlindStructure) Level(i int) (BlindLevel, bool) {
	if i < 0 || i >= len(s.Levels) {
		return BlindLevel{}, false
	}
	return s.Levels[i], true
}

// HasNext reports whether a level exists after index i.
func (s BlindStructure) HasNext(i int) bool {
	return i+1 < len(s.Levels)
}

// HasPrevious reports whether a level exists before index i.
func (s BlindStructure) HasPrevious(i int) bool {
	return i-1 >= 0 && i-1 < len(s.Levels)
}

// FirstDuration is the clock value for a freshly reset tournament.
func (s BlindStructure) FirstDuration() int {
	if l, ok := s.Level(0); ok && l.Duration > 0 {
		return l.Duration
	}
	return DefaultLevelDuration
}

// BreakAfterLevel finds the break scheduled right after the level at levelIndex (0-based).
// Breaks are matched on AfterLevel == levelIndex+1; the first match wins.
func BreakAfterLevel(levelIndex int, breaks []Break) (Break, bool) {
	for _, b := range breaks {
		if b.AfterLevel == levelIndex+1 {
			return b, true
		}
	}
	return Break{}, false
}

// EstimateTotalTime sums level and break durations. Display only.
func EstimateTotalTime(levels []BlindLevel, breaks []Break) int {
	total := 0
	for _, l := range levels {
		total += l.Duration
	}
	for _, b := range breaks {
		total += b.Duration
	}
	return total
}

// Progress returns overall completion in percent, clamped to [0, 100].
func Progress(currentLevel, timeRemaining int, levels []BlindLevel) float64 {
	if len(levels) == 0 {
		return 0
	}
	levelProgress := 0.0
	if currentLevel >= 0 && currentLevel < len(levels) && levels[currentLevel].Duration > 0 {
		d := float64(levels[currentLevel].Duration)
		levelProgress = (d - float64(timeRemaining)) / d
	}
	p := (float64(currentLevel) + levelProgress) / float64(len(levels)) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// FormatClock renders seconds as MM:SS, or H:MM:SS past an hour.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatDuration renders seconds as "1h 30m".
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || h == 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	return strings.Join(parts, " ")
}

// FormatBlinds renders "SB/BB" with an ante suffix when one is set.
func FormatBlinds(l BlindLevel) string {
	s := fmt.Sprintf("%s/%s", formatChips(l.SmallBlind), formatChips(l.BigBlind))
	if l.Ante > 0 {
		s += fmt.Sprintf(" (Ante: %s)", formatChips(l.Ante))
	}
	return s
}

func formatChips(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
