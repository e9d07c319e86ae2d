package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blindclock/go/internal/events"
	"github.com/mcdev12/blindclock/go/internal/models"
	"github.com/mcdev12/blindclock/go/internal/store"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) clockwork.Ticker
}

const (
	DefaultTickInterval = 200 * time.Millisecond
	DefaultPersistEvery = 5
)

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithTickInterval sets how often the driver reconciles a running clock.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

// WithPersistEvery sets the tick write cadence: a tick alone is persisted when
// the remaining seconds are a multiple of n.
func WithPersistEvery(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.persistEvery = n
		}
	}
}

// Engine owns the mutation path of a single tournament record. It derives
// remaining time from a wall-clock anchor, drives level rollovers through a
// periodic driver while running, and persists every committed change through
// the gateway.
//
// Every command works on a clone of the record and commits it whole, so a
// failed or rejected command never leaves a partial update behind. Commands
// are silent no-ops when nothing is loaded or the target does not exist; the
// returned bool reports whether anything changed.
type Engine struct {
	gateway      store.Gateway
	clock        Clock
	publisher    events.Publisher
	tickInterval time.Duration
	persistEvery int

	mu         sync.Mutex
	record     *models.Tournament
	anchor     epoch
	driver     *driver
	generation uint64
}

func NewEngine(gateway store.Gateway, opts ...Option) *Engine {
	e := &Engine{
		gateway:      gateway,
		clock:        clockwork.NewRealClock(),
		publisher:    events.Nop{},
		tickInterval: DefaultTickInterval,
		persistEvery: DefaultPersistEvery,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// mutation is the working state of one command.
type mutation struct {
	next   *models.Tournament
	anchor epoch
	now    time.Time
	events []events.Event
}

// reanchor sets the remaining time and restarts the countdown from now.
func (m *mutation) reanchor(remaining int) {
	if remaining < 0 {
		remaining = 0
	}
	m.next.TimeRemaining = remaining
	m.next.LastTickAt = m.now
	m.anchor = epoch{at: m.now, remaining: remaining}
}

func (m *mutation) emit(eventType string, payload any) {
	ev, err := events.New(m.next.ID, eventType, payload, m.now)
	if err != nil {
		log.Error().Err(err).
			Str("tournament_id", m.next.ID.String()).
			Str("event_type", eventType).
			Msg("failed to build event")
		return
	}
	m.events = append(m.events, ev)
}

func (m *mutation) clockPayload() events.ClockPayload {
	return events.ClockPayload{
		TournamentID:  m.next.ID.String(),
		LevelIndex:    m.next.CurrentLevelIndex,
		TimeRemaining: m.next.TimeRemaining,
		At:            m.now,
	}
}

func (m *mutation) levelChanged(from, to int, at time.Time, automatic bool) {
	level, _ := m.next.BlindStructure.Level(to)
	p := events.LevelChangedPayload{
		TournamentID: m.next.ID.String(),
		FromLevel:    from,
		ToLevel:      to,
		SmallBlind:   level.SmallBlind,
		BigBlind:     level.BigBlind,
		Ante:         level.Ante,
		Automatic:    automatic,
		ChangedAt:    at,
	}
	if automatic {
		if b, ok := models.BreakAfterLevel(from, m.next.Breaks); ok {
			p.BreakDuration = b.Duration
		}
	}
	m.emit(events.EventTypeLevelChanged, p)
}

func (m *mutation) finished(at time.Time, reason string, winners []uuid.UUID) {
	ids := make([]string, len(winners))
	for i, id := range winners {
		ids[i] = id.String()
	}
	m.emit(events.EventTypeTournamentFinished, events.TournamentFinishedPayload{
		TournamentID: m.next.ID.String(),
		FinishedAt:   at,
		Reason:       reason,
		WinnerIDs:    ids,
	})
}

func (m *mutation) player(eventType string, p models.Player) {
	m.emit(eventType, events.PlayerPayload{
		TournamentID: m.next.ID.String(),
		PlayerID:     p.ID.String(),
		PlayerName:   p.Name,
		Position:     p.Position,
		At:           m.now,
	})
}

// noteOutcome records the side effects of a reconciliation.
func noteOutcome(m *mutation, out outcome) {
	for _, r := range out.rollovers {
		level, _ := m.next.BlindStructure.Level(r.to)
		log.Info().
			Str("tournament_id", m.next.ID.String()).
			Int("level_index", r.to).
			Str("blinds", models.FormatBlinds(level)).
			Msg("level expired, advancing")

		m.levelChanged(r.from, r.to, r.at, true)
	}
	if out.finished {
		log.Info().
			Str("tournament_id", m.next.ID.String()).
			Int("level_index", m.next.CurrentLevelIndex).
			Msg("final level expired, tournament finished")
		m.finished(out.finishedAt, "clock", nil)
	}
}

// Load reads a record from the gateway and attaches it.
func (e *Engine) Load(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := e.gateway.LoadByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}
	return e.Attach(ctx, t), nil
}

// Attach makes t the governed record, replacing any previous one. A running
// record is reconciled against the time that passed since it was last
// written, walking through any levels that expired meanwhile, and its driver
// is started.
func (e *Engine) Attach(ctx context.Context, t *models.Tournament) *models.Tournament {
	rec := t.Clone()
	normalize(rec)

	e.mu.Lock()
	old := e.detachDriver()

	now := e.clock.Now()
	anchorAt := rec.LastTickAt
	if anchorAt.IsZero() {
		anchorAt = now
	}
	anchor := epoch{at: anchorAt, remaining: rec.TimeRemaining}

	m := &mutation{next: rec, anchor: anchor, now: now}
	var out outcome
	m.anchor, out = reconcile(m.next, m.anchor, now)
	noteOutcome(m, out)

	e.record = m.next
	e.anchor = m.anchor
	if e.record.IsRunning() {
		e.startDriverLocked()
	}

	snap := e.record.Clone()
	if out.crossedLevel() || snap.TimeRemaining != t.TimeRemaining {
		e.save(ctx, "load", snap)
	}
	evs := m.events
	e.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	e.publish(ctx, evs)

	log.Debug().
		Str("tournament_id", snap.ID.String()).
		Str("status", string(snap.Status)).
		Int("level_index", snap.CurrentLevelIndex).
		Int("time_remaining", snap.TimeRemaining).
		Msg("tournament attached")
	return snap
}

// normalize clamps a record read from storage back inside its invariants.
func normalize(t *models.Tournament) {
	if n := t.BlindStructure.Len(); t.CurrentLevelIndex >= n {
		t.CurrentLevelIndex = n - 1
	}
	if t.CurrentLevelIndex < 0 {
		t.CurrentLevelIndex = 0
	}
	if t.TimeRemaining < 0 {
		t.TimeRemaining = 0
	}
	switch t.Status {
	case models.StatusPaused, models.StatusRunning, models.StatusFinished:
	default:
		t.Status = models.StatusPaused
	}
	if t.Breaks == nil {
		t.Breaks = []models.Break{}
	}
	if t.Players == nil {
		t.Players = []models.Player{}
	}
}

// Unload writes the current record once more, stops the driver and forgets the record.
func (e *Engine) Unload(ctx context.Context) {
	e.mu.Lock()
	if e.record == nil {
		e.mu.Unlock()
		return
	}
	id := e.record.ID
	e.save(ctx, "unload", e.record.Clone())
	d := e.detachDriver()
	e.record = nil
	e.anchor = epoch{}
	e.mu.Unlock()

	if d != nil {
		d.Stop()
	}
	log.Debug().Str("tournament_id", id.String()).Msg("tournament unloaded")
}

// Snapshot returns the record as of now without committing anything.
func (e *Engine) Snapshot() (*models.Tournament, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.record == nil {
		return nil, false
	}
	view := e.record.Clone()
	reconcile(view, e.anchor, e.clock.Now())
	return view, true
}

// ID returns the id of the governed record.
func (e *Engine) ID() (uuid.UUID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.record == nil {
		return uuid.Nil, false
	}
	return e.record.ID, true
}

// Tick reconciles a running record with the wall clock. It is what the driver
// calls; callers may invoke it directly to force a refresh.
func (e *Engine) Tick(ctx context.Context) (*models.Tournament, bool) {
	return e.tick(ctx, 0)
}

// tick with a non-zero generation only acts for the driver of that generation.
func (e *Engine) tick(ctx context.Context, generation uint64) (*models.Tournament, bool) {
	e.mu.Lock()
	if e.record == nil {
		e.mu.Unlock()
		return nil, false
	}
	if generation != 0 && (e.driver == nil || e.driver.generation != generation) {
		e.mu.Unlock()
		return nil, false
	}

	prev := e.record
	if !prev.IsRunning() {
		snap := prev.Clone()
		e.mu.Unlock()
		return snap, false
	}

	m := &mutation{next: prev.Clone(), anchor: e.anchor, now: e.clock.Now()}
	var out outcome
	m.anchor, out = reconcile(m.next, m.anchor, m.now)
	if m.next.TimeRemaining == prev.TimeRemaining && !out.crossedLevel() {
		snap := prev.Clone()
		e.mu.Unlock()
		return snap, false
	}
	noteOutcome(m, out)

	stop := e.commit(m)
	snap := e.record.Clone()
	if out.crossedLevel() || snap.TimeRemaining%e.persistEvery == 0 {
		e.save(ctx, "tick", snap)
	}
	evs := m.events
	e.mu.Unlock()

	if stop != nil {
		if generation != 0 {
			// running on the driver goroutine itself; it exits once tick returns
			stop.cancel()
		} else {
			stop.Stop()
		}
	}
	e.publish(ctx, evs)

	log.Debug().
		Str("tournament_id", snap.ID.String()).
		Int("level_index", snap.CurrentLevelIndex).
		Int("time_remaining", snap.TimeRemaining).
		Msg("tick")
	return snap, true
}

func (e *Engine) tickFromDriver(generation uint64) {
	e.tick(context.Background(), generation)
}

// apply runs a command. The record is reconciled first, so every command sees
// the true remaining time. A command that changes nothing still commits what
// reconciliation found, under the tick write cadence.
func (e *Engine) apply(ctx context.Context, op string, fn func(m *mutation) bool) (*models.Tournament, bool) {
	e.mu.Lock()
	if e.record == nil {
		e.mu.Unlock()
		return nil, false
	}

	prev := e.record
	m := &mutation{next: prev.Clone(), anchor: e.anchor, now: e.clock.Now()}
	var out outcome
	m.anchor, out = reconcile(m.next, m.anchor, m.now)
	noteOutcome(m, out)

	changed := fn(m)
	if changed && !m.next.IsRunning() {
		m.next.LastTickAt = m.now
	}
	reconciled := out.crossedLevel() || m.next.TimeRemaining != prev.TimeRemaining
	if !changed && !reconciled {
		snap := prev.Clone()
		e.mu.Unlock()
		return snap, false
	}

	stop := e.commit(m)
	snap := e.record.Clone()
	if changed || out.crossedLevel() || snap.TimeRemaining%e.persistEvery == 0 {
		e.save(ctx, op, snap)
	}
	evs := m.events
	e.mu.Unlock()

	if stop != nil {
		stop.Stop()
	}
	e.publish(ctx, evs)

	if changed {
		log.Info().
			Str("tournament_id", snap.ID.String()).
			Str("op", op).
			Str("status", string(snap.Status)).
			Int("level_index", snap.CurrentLevelIndex).
			Int("time_remaining", snap.TimeRemaining).
			Msg("tournament updated")
	}
	return snap, changed
}

// commit swaps in the mutated record. When the record leaves running, the
// detached driver is returned and must be stopped after the lock is released.
func (e *Engine) commit(m *mutation) *driver {
	wasRunning := e.record.IsRunning()
	e.record = m.next
	e.anchor = m.anchor

	switch {
	case wasRunning && !e.record.IsRunning():
		return e.detachDriver()
	case !wasRunning && e.record.IsRunning():
		e.startDriverLocked()
	}
	return nil
}

func (e *Engine) startDriverLocked() {
	e.generation++
	e.driver = startDriver(e.clock, e.tickInterval, e.generation, e.tickFromDriver)
}

// detachDriver invalidates the current driver generation and hands the driver back to the caller.
func (e *Engine) detachDriver() *driver {
	d := e.driver
	e.driver = nil
	e.generation++
	return d
}

// save makes a single attempt. Failures leave the in-memory record authoritative.
func (e *Engine) save(ctx context.Context, op string, t *models.Tournament) {
	if err := e.gateway.Save(ctx, t); err != nil {
		log.Error().Err(err).
			Str("tournament_id", t.ID.String()).
			Str("op", op).
			Msg("failed to persist tournament")
	}
}

func (e *Engine) publish(ctx context.Context, evs []events.Event) {
	for _, ev := range evs {
		if err := e.publisher.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).
				Str("tournament_id", ev.TournamentID.String()).
				Str("event_type", ev.EventType).
				Msg("failed to publish event")
		}
	}
}
