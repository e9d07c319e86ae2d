package blinds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/blindclock/go/internal/models"
)

func TestBuiltinPresets(t *testing.T) {
	r := NewRegistry()

	list := r.List()
	require.Len(t, list, 4)
	assert.Equal(t, []string{KeySlow, KeyMedium, KeyFast, KeyTurbo},
		[]string{list[0].Key, list[1].Key, list[2].Key, list[3].Key})

	medium, err := r.Get(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, KeyMedium, medium.Structure.Type)
	require.Len(t, medium.Structure.Levels, 20)
	assert.Equal(t, 900, medium.Structure.Levels[0].Duration)
	assert.Equal(t, models.BlindLevel{SmallBlind: 400, BigBlind: 800, Ante: 100, Duration: 900}, medium.Structure.Levels[7])

	turbo, err := r.Get(KeyTurbo)
	require.NoError(t, err)
	assert.Equal(t, 300, turbo.Structure.Levels[19].Duration)
	assert.Equal(t, "Fast-paced action", turbo.Description)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	p, err := r.Get(KeySlow)
	require.NoError(t, err)
	p.Structure.Levels[0].Duration = 1

	again, err := r.Get(KeySlow)
	require.NoError(t, err)
	assert.Equal(t, 1200, again.Structure.Levels[0].Duration)
}

func TestStandardLevelsBounds(t *testing.T) {
	assert.Len(t, StandardLevels(0, 60), 26)
	assert.Len(t, StandardLevels(100, 60), 26)
	levels := StandardLevels(26, 60)
	assert.Equal(t, int64(100000), levels[25].BigBlind)
}

func TestCustomDefaults(t *testing.T) {
	s := Custom([]models.BlindLevel{
		{SmallBlind: 10, BigBlind: 20},
		{SmallBlind: 20, BigBlind: 40, Ante: -5, Duration: 120},
	})
	assert.Equal(t, KeyCustom, s.Type)
	assert.Equal(t, 600, s.Levels[0].Duration)
	assert.Equal(t, int64(0), s.Levels[1].Ante)
	assert.Equal(t, 120, s.Levels[1].Duration)
	assert.NoError(t, s.Validate())
}

func TestApplyOverrides(t *testing.T) {
	r := NewRegistry()
	err := r.Apply(map[string]Override{
		KeyFast: {LevelDuration: 480},
		"deep": {
			Name:       "Deep stack",
			LevelCount: 12,
		},
		"weekly": {
			Levels: []models.BlindLevel{{SmallBlind: 100, BigBlind: 200, Duration: 1800}},
		},
	})
	require.NoError(t, err)

	fast, err := r.Get(KeyFast)
	require.NoError(t, err)
	assert.Len(t, fast.Structure.Levels, 20)
	assert.Equal(t, 480, fast.Structure.Levels[3].Duration)
	assert.Equal(t, "Quicker game, more action", fast.Description)

	deep, err := r.Get("deep")
	require.NoError(t, err)
	assert.Equal(t, "Deep stack", deep.Name)
	assert.Len(t, deep.Structure.Levels, 12)
	assert.Equal(t, "deep", deep.Structure.Type)

	weekly, err := r.Get("weekly")
	require.NoError(t, err)
	assert.Equal(t, 1800, weekly.Structure.FirstDuration())

	assert.Len(t, r.List(), 6)
}

func TestRegisterRejects(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Preset{}))
	assert.Error(t, r.Register(Preset{Key: KeyCustom, Structure: Custom([]models.BlindLevel{{BigBlind: 2}})}))
	assert.Error(t, r.Register(Preset{Key: KeySlow, Structure: Custom([]models.BlindLevel{{BigBlind: 2}})}))
	assert.ErrorIs(t, r.Register(Preset{Key: "empty"}), models.ErrInvalidStructure)
}
