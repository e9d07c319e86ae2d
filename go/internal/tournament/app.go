package tournament

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blindclock/go/internal/blinds"
	"github.com/mcdev12/blindclock/go/internal/clock"
	"github.com/mcdev12/blindclock/go/internal/exchange"
	"github.com/mcdev12/blindclock/go/internal/models"
	"github.com/mcdev12/blindclock/go/internal/store"
)

// ErrInvalidRequest is returned for malformed commands and arguments.
var ErrInvalidRequest = errors.New("invalid request")

const DefaultCacheSize = 64

// App handles tournament business logic. It keeps one clock engine per
// recently used tournament; evicted engines are unloaded and reloaded from
// the gateway on next use.
type App struct {
	gateway    store.Gateway
	presets    *blinds.Registry
	clock      clock.Clock
	engineOpts []clock.Option

	mu      sync.Mutex
	engines *lru.Cache
}

// NewApp creates a new tournament App. clk is shared by every engine.
func NewApp(gateway store.Gateway, presets *blinds.Registry, clk clock.Clock, cacheSize int, opts ...clock.Option) (*App, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	engines, err := lru.NewWithEvict(cacheSize, func(key, value interface{}) {
		value.(*clock.Engine).Unload(context.Background())
		log.Debug().Str("tournament_id", key.(uuid.UUID).String()).Msg("engine evicted")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine cache: %w", err)
	}

	return &App{
		gateway:    gateway,
		presets:    presets,
		clock:      clk,
		engineOpts: append([]clock.Option{clock.WithClock(clk)}, opts...),
		engines:    engines,
	}, nil
}

// engine returns the cached engine for id, loading it on a miss.
func (a *App) engine(ctx context.Context, id uuid.UUID) (*clock.Engine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if v, ok := a.engines.Get(id); ok {
		return v.(*clock.Engine), nil
	}

	e := clock.NewEngine(a.gateway, a.engineOpts...)
	if _, err := e.Load(ctx, id); err != nil {
		return nil, err
	}
	a.engines.Add(id, e)
	return e, nil
}

// attach governs t with a fresh engine, replacing any cached one.
func (a *App) attach(ctx context.Context, t *models.Tournament) *models.Tournament {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.engines.Remove(t.ID)
	e := clock.NewEngine(a.gateway, a.engineOpts...)
	snap := e.Attach(ctx, t)
	a.engines.Add(t.ID, e)
	return snap
}

func (a *App) resolveStructure(req CreateTournamentRequest) (models.BlindStructure, error) {
	if len(req.Levels) > 0 {
		return blinds.Custom(req.Levels), nil
	}
	key := req.Preset
	if key == "" {
		key = blinds.DefaultKey
	}
	p, err := a.presets.Get(key)
	if err != nil {
		return models.BlindStructure{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return p.Structure, nil
}

// CreateTournament creates a paused tournament from a preset or custom levels.
func (a *App) CreateTournament(ctx context.Context, req CreateTournamentRequest) (*models.Tournament, error) {
	structure, err := a.resolveStructure(req)
	if err != nil {
		return nil, err
	}
	for _, b := range req.Breaks {
		if b.AfterLevel <= 0 || b.Duration <= 0 {
			return nil, fmt.Errorf("%w: break after level %d must have positive level and duration", ErrInvalidRequest, b.AfterLevel)
		}
	}

	t, err := models.NewTournament(req.Name, req.Players, structure, req.Breaks, a.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := a.gateway.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save tournament: %w", err)
	}

	log.Info().
		Str("tournament_id", t.ID.String()).
		Str("name", t.Name).
		Str("structure", t.BlindStructure.Type).
		Int("players", len(t.Players)).
		Msg("created tournament")
	return a.attach(ctx, t), nil
}

// GetTournament returns the current state of a tournament.
func (a *App) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	e, err := a.engine(ctx, id)
	if err != nil {
		return nil, err
	}
	t, ok := e.Snapshot()
	if !ok {
		return nil, fmt.Errorf("tournament %s: %w", id, store.ErrNotFound)
	}
	return t, nil
}

// ListTournaments returns every stored tournament, oldest first. Tournaments
// with a live engine are reported as of now.
func (a *App) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	all, err := a.gateway.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i, t := range all {
		if v, ok := a.engines.Peek(t.ID); ok {
			if snap, ok := v.(*clock.Engine).Snapshot(); ok {
				all[i] = snap
			}
		}
	}
	return all, nil
}

// DeleteTournament stops and removes a tournament.
func (a *App) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	if _, err := a.gateway.LoadByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}

	a.mu.Lock()
	a.engines.Remove(id)
	a.mu.Unlock()

	if err := a.gateway.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	log.Info().Str("tournament_id", id.String()).Msg("deleted tournament")
	return nil
}

// Presets lists the blind presets on offer.
func (a *App) Presets() []blinds.Preset {
	return a.presets.List()
}

// ExportConfig renders the configuration document and its file name.
func (a *App) ExportConfig(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	t, err := a.GetTournament(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := exchange.ExportConfig(t, a.clock.Now())
	if err != nil {
		return nil, "", err
	}
	return data, exchange.ConfigFileName(t.Name), nil
}

// ExportBackup renders the full-state backup and its file name.
func (a *App) ExportBackup(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	t, err := a.GetTournament(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := exchange.ExportBackup(t)
	if err != nil {
		return nil, "", err
	}
	return data, exchange.BackupFileName(t.Name), nil
}

// ImportConfig creates a new tournament from a configuration document.
func (a *App) ImportConfig(ctx context.Context, data []byte) (*models.Tournament, error) {
	t, err := exchange.ImportConfig(data, a.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := a.gateway.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save tournament: %w", err)
	}
	log.Info().Str("tournament_id", t.ID.String()).Str("name", t.Name).Msg("imported tournament config")
	return a.attach(ctx, t), nil
}

// ImportBackup restores a tournament exactly as backed up, replacing any
// tournament with the same id. A running backup resumes with the time that
// passed since it was written.
func (a *App) ImportBackup(ctx context.Context, data []byte) (*models.Tournament, error) {
	t, err := exchange.ImportBackup(data)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.engines.Remove(t.ID)
	a.mu.Unlock()

	if err := a.gateway.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save tournament: %w", err)
	}
	log.Info().Str("tournament_id", t.ID.String()).Str("name", t.Name).Msg("restored tournament backup")
	return a.attach(ctx, t), nil
}

// Execute runs a command against a tournament. The bool reports whether the
// record changed; commands that do not apply are not errors.
func (a *App) Execute(ctx context.Context, id uuid.UUID, cmd Command) (*models.Tournament, bool, error) {
	e, err := a.engine(ctx, id)
	if err != nil {
		return nil, false, err
	}

	var (
		t       *models.Tournament
		changed bool
	)
	switch cmd.Name {
	case CommandStart:
		t, changed = e.Start(ctx)
	case CommandPause:
		t, changed = e.Pause(ctx)
	case CommandReset:
		t, changed = e.Reset(ctx)
	case CommandEnd:
		t, changed = e.EndTournament(ctx)
	case CommandAdvance:
		t, changed = e.AdvanceLevel(ctx)
	case CommandPrevious:
		t, changed = e.PreviousLevel(ctx)
	case CommandSetLevel:
		t, changed = e.SetLevel(ctx, cmd.LevelIndex)
	case CommandAddTime:
		t, changed = e.AddTime(ctx, cmd.Seconds)
	case CommandSubtractTime:
		t, changed = e.SubtractTime(ctx, cmd.Seconds)
	case CommandBust:
		t, changed = e.BustPlayer(ctx, cmd.PlayerID)
	case CommandUnbust:
		t, changed = e.UnBustPlayer(ctx, cmd.PlayerID)
	case CommandAddPlayer:
		t, changed = e.AddPlayer(ctx, cmd.PlayerName)
	case CommandRemovePlayer:
		t, changed = e.RemovePlayer(ctx, cmd.PlayerID)
	case CommandRenamePlayer:
		t, changed = e.RenamePlayer(ctx, cmd.PlayerID, cmd.PlayerName)
	default:
		return nil, false, fmt.Errorf("%w: unknown command %q", ErrInvalidRequest, cmd.Name)
	}

	if t == nil {
		// evicted between lookup and command
		return nil, false, fmt.Errorf("tournament %s: %w", id, store.ErrNotFound)
	}
	return t, changed, nil
}

// Close unloads every engine, writing each record one last time.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engines.Purge()
}
