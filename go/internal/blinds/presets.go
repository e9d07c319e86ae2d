package blinds

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mcdev12/blindclock/go/internal/models"
)

// Preset keys.
const (
	KeySlow   = "slow"
	KeyMedium = "medium"
	KeyFast   = "fast"
	KeyTurbo  = "turbo"
	KeyCustom = models.StructureTypeCustom

	// DefaultKey is the preset used when a request names none.
	DefaultKey = KeyMedium
)

const (
	presetLevelCount      = 20
	customDefaultDuration = 600
)

// ErrUnknownPreset is returned when a preset key is not registered.
var ErrUnknownPreset = errors.New("unknown blind preset")

// standardLevels is the shared progression all presets are cut from.
var standardLevels = [...]models.BlindLevel{
	{SmallBlind: 25, BigBlind: 50},
	{SmallBlind: 50, BigBlind: 100},
	{SmallBlind: 75, BigBlind: 150},
	{SmallBlind: 100, BigBlind: 200},
	{SmallBlind: 150, BigBlind: 300},
	{SmallBlind: 200, BigBlind: 400},
	{SmallBlind: 300, BigBlind: 600},
	{SmallBlind: 400, BigBlind: 800, Ante: 100},
	{SmallBlind: 500, BigBlind: 1000, Ante: 100},
	{SmallBlind: 600, BigBlind: 1200, Ante: 200},
	{SmallBlind: 800, BigBlind: 1600, Ante: 200},
	{SmallBlind: 1000, BigBlind: 2000, Ante: 300},
	{SmallBlind: 1500, BigBlind: 3000, Ante: 400},
	{SmallBlind: 2000, BigBlind: 4000, Ante: 500},
	{SmallBlind: 2500, BigBlind: 5000, Ante: 500},
	{SmallBlind: 3000, BigBlind: 6000, Ante: 1000},
	{SmallBlind: 4000, BigBlind: 8000, Ante: 1000},
	{SmallBlind: 5000, BigBlind: 10000, Ante: 1000},
	{SmallBlind: 6000, BigBlind: 12000, Ante: 2000},
	{SmallBlind: 8000, BigBlind: 16000, Ante: 2000},
	{SmallBlind: 10000, BigBlind: 20000, Ante: 3000},
	{SmallBlind: 15000, BigBlind: 30000, Ante: 4000},
	{SmallBlind: 20000, BigBlind: 40000, Ante: 5000},
	{SmallBlind: 30000, BigBlind: 60000, Ante: 10000},
	{SmallBlind: 40000, BigBlind: 80000, Ante: 10000},
	{SmallBlind: 50000, BigBlind: 100000, Ante: 10000},
}

// Preset is a named blind structure offered when creating a tournament.
type Preset struct {
	Key         string                `json:"key"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Structure   models.BlindStructure `json:"blindStructure"`
}

// Override replaces parts of a preset from the config file. Zero fields keep the built-in value.
type Override struct {
	Name          string              `yaml:"name"`
	Description   string              `yaml:"description"`
	LevelDuration int                 `yaml:"level_duration"`
	LevelCount    int                 `yaml:"level_count"`
	Levels        []models.BlindLevel `yaml:"levels"`
}

// StandardLevels returns a copy of the standard progression with every level set to duration.
func StandardLevels(count, duration int) []models.BlindLevel {
	if count <= 0 || count > len(standardLevels) {
		count = len(standardLevels)
	}
	levels := make([]models.BlindLevel, count)
	for i := 0; i < count; i++ {
		levels[i] = standardLevels[i]
		levels[i].Duration = duration
	}
	return levels
}

// Custom builds a custom structure, defaulting missing durations to ten minutes.
// Negative antes are treated as no ante.
func Custom(levels []models.BlindLevel) models.BlindStructure {
	out := make([]models.BlindLevel, len(levels))
	for i, l := range levels {
		if l.Ante < 0 {
			l.Ante = 0
		}
		if l.Duration <= 0 {
			l.Duration = customDefaultDuration
		}
		out[i] = l
	}
	return models.BlindStructure{Type: KeyCustom, Levels: out}
}

func builtin() []Preset {
	mk := func(key, name, desc string, minutes int) Preset {
		return Preset{
			Key:         key,
			Name:        name,
			Description: desc,
			Structure: models.BlindStructure{
				Type:   key,
				Levels: StandardLevels(presetLevelCount, minutes*60),
			},
		}
	}
	return []Preset{
		mk(KeySlow, "Slow (20 min levels)", "Relaxed pace for casual home games", 20),
		mk(KeyMedium, "Medium (15 min levels)", "Standard tournament pace", 15),
		mk(KeyFast, "Fast (10 min levels)", "Quicker game, more action", 10),
		mk(KeyTurbo, "Turbo (5 min levels)", "Fast-paced action", 5),
	}
}

// Registry holds the presets available to the service.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
	order   []string
}

// NewRegistry returns a registry seeded with the built-in presets.
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]Preset)}
	for _, p := range builtin() {
		r.presets[p.Key] = p
		r.order = append(r.order, p.Key)
	}
	return r
}

// Register adds a preset under a new key.
func (r *Registry) Register(p Preset) error {
	if p.Key == "" {
		return fmt.Errorf("preset key cannot be empty")
	}
	if p.Key == KeyCustom {
		return fmt.Errorf("preset key %q is reserved", p.Key)
	}
	if err := p.Structure.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", p.Key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.presets[p.Key]; exists {
		return fmt.Errorf("preset already registered for key %q", p.Key)
	}
	p.Structure.Type = p.Key
	r.presets[p.Key] = p
	r.order = append(r.order, p.Key)
	return nil
}

// Get returns a copy of the preset registered under key.
func (r *Registry) Get(key string) (Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[key]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}
	return copyPreset(p), nil
}

// List returns all presets in registration order.
func (r *Registry) List() []Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Preset, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, copyPreset(r.presets[k]))
	}
	return out
}

// Apply merges config-file overrides. Unknown keys register new presets built
// from the standard progression unless explicit levels are given.
func (r *Registry) Apply(overrides map[string]Override) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ov := overrides[key]

		r.mu.RLock()
		p, exists := r.presets[key]
		r.mu.RUnlock()

		if !exists {
			p = Preset{Key: key, Name: key}
			p.Structure = models.BlindStructure{Type: key, Levels: StandardLevels(presetLevelCount, customDefaultDuration)}
		}
		p = merge(p, ov)

		if !exists {
			if err := r.Register(p); err != nil {
				return err
			}
			continue
		}
		if err := p.Structure.Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", key, err)
		}
		r.mu.Lock()
		r.presets[key] = p
		r.mu.Unlock()
	}
	return nil
}

func merge(p Preset, ov Override) Preset {
	if ov.Name != "" {
		p.Name = ov.Name
	}
	if ov.Description != "" {
		p.Description = ov.Description
	}

	switch {
	case len(ov.Levels) > 0:
		p.Structure.Levels = Custom(ov.Levels).Levels
	case ov.LevelDuration > 0 || ov.LevelCount > 0:
		count := ov.LevelCount
		if count <= 0 {
			count = len(p.Structure.Levels)
		}
		duration := ov.LevelDuration
		if duration <= 0 {
			duration = p.Structure.FirstDuration()
		}
		p.Structure.Levels = StandardLevels(count, duration)
	}
	return p
}

func copyPreset(p Preset) Preset {
	levels := make([]models.BlindLevel, len(p.Structure.Levels))
	copy(levels, p.Structure.Levels)
	p.Structure.Levels = levels
	return p
}
