package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoLevels() BlindStructure {
	return BlindStructure{
		Type: "custom",
		Levels: []BlindLevel{
			{SmallBlind: 25, BigBlind: 50, Duration: 600},
			{SmallBlind: 50, BigBlind: 100, Duration: 600},
		},
	}
}

func TestBlindStructureLookup(t *testing.T) {
	s := twoLevels()

	l, ok := s.Level(1)
	require.True(t, ok)
	assert.Equal(t, int64(100), l.BigBlind)

	_, ok = s.Level(2)
	assert.False(t, ok)
	_, ok = s.Level(-1)
	assert.False(t, ok)

	assert.True(t, s.HasNext(0))
	assert.False(t, s.HasNext(1))
	assert.False(t, s.HasPrevious(0))
	assert.True(t, s.HasPrevious(1))
}

func TestBlindStructureValidate(t *testing.T) {
	assert.NoError(t, twoLevels().Validate())

	err := BlindStructure{}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidStructure))

	bad := twoLevels()
	bad.Levels[1].Duration = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidStructure)
}

func TestBreakAfterLevel(t *testing.T) {
	breaks := []Break{{AfterLevel: 4, Duration: 600}, {AfterLevel: 8, Duration: 300}}

	b, ok := BreakAfterLevel(3, breaks)
	require.True(t, ok)
	assert.Equal(t, 600, b.Duration)

	_, ok = BreakAfterLevel(4, breaks)
	assert.False(t, ok)

	// duplicate afterLevel: first one wins
	dup := append(breaks, Break{AfterLevel: 4, Duration: 1200})
	b, ok = BreakAfterLevel(3, dup)
	require.True(t, ok)
	assert.Equal(t, 600, b.Duration)
}

func TestEstimateTotalTime(t *testing.T) {
	s := twoLevels()
	assert.Equal(t, 1200, EstimateTotalTime(s.Levels, nil))
	assert.Equal(t, 1500, EstimateTotalTime(s.Levels, []Break{{AfterLevel: 1, Duration: 300}}))
}

func TestProgress(t *testing.T) {
	s := twoLevels()
	assert.InDelta(t, 0.0, Progress(0, 600, s.Levels), 0.001)
	assert.InDelta(t, 25.0, Progress(0, 300, s.Levels), 0.001)
	assert.InDelta(t, 100.0, Progress(1, 0, s.Levels), 0.001)
	assert.Equal(t, 0.0, Progress(0, 0, nil))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "10:00", FormatClock(600))
	assert.Equal(t, "00:00", FormatClock(-3))
	assert.Equal(t, "1:01:05", FormatClock(3665))

	assert.Equal(t, "0m", FormatDuration(0))
	assert.Equal(t, "2h", FormatDuration(7200))
	assert.Equal(t, "1h 30m", FormatDuration(5400))

	assert.Equal(t, "25/50", FormatBlinds(BlindLevel{SmallBlind: 25, BigBlind: 50}))
	assert.Equal(t, "1,000/2,000 (Ante: 300)", FormatBlinds(BlindLevel{SmallBlind: 1000, BigBlind: 2000, Ante: 300}))
	assert.Equal(t, "50,000/100,000", FormatBlinds(BlindLevel{SmallBlind: 50000, BigBlind: 100000}))
}

func TestNewTournament(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	tour, err := NewTournament("  ", []string{"Alice", " ", "Bob "}, BlindStructure{Levels: twoLevels().Levels}, nil, now)
	require.NoError(t, err)

	assert.Equal(t, "Tournament 2026-03-14", tour.Name)
	assert.Equal(t, StatusPaused, tour.Status)
	assert.Equal(t, StructureTypeCustom, tour.BlindStructure.Type)
	assert.Equal(t, 600, tour.TimeRemaining)
	assert.Equal(t, 0, tour.CurrentLevelIndex)
	assert.Equal(t, now, tour.LastTickAt)
	require.Len(t, tour.Players, 2)
	assert.Equal(t, "Bob", tour.Players[1].Name)
	for _, p := range tour.Players {
		assert.True(t, p.IsActive())
		assert.Nil(t, p.Position)
	}
	assert.NotEqual(t, tour.Players[0].ID, tour.Players[1].ID)
	assert.NotNil(t, tour.Breaks)

	_, err = NewTournament("x", nil, BlindStructure{}, nil, now)
	assert.ErrorIs(t, err, ErrInvalidStructure)
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	tour, err := NewTournament("Friday", []string{"A"}, twoLevels(), []Break{{AfterLevel: 1, Duration: 60}}, now)
	require.NoError(t, err)

	pos := 1
	tour.Players[0].Position = &pos
	tour.Players[0].BustedAt = &now

	c := tour.Clone()
	*c.Players[0].Position = 7
	c.Players[0].Name = "Z"
	c.BlindStructure.Levels[0].Duration = 1
	c.Breaks[0].Duration = 2

	assert.Equal(t, 1, *tour.Players[0].Position)
	assert.Equal(t, "A", tour.Players[0].Name)
	assert.Equal(t, 600, tour.BlindStructure.Levels[0].Duration)
	assert.Equal(t, 60, tour.Breaks[0].Duration)
}
