package pgstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/mcdev12/blindclock/go/internal/models"
	"github.com/mcdev12/blindclock/go/internal/sqlutil"
	"github.com/mcdev12/blindclock/go/internal/store"
)

//go:embed schema.sql
var Schema string

// Store is a store.Gateway backed by a Postgres tournaments table.
type Store struct {
	db      *sql.DB
	queries *Queries
}

func New(db *sql.DB) *Store {
	return &Store{db: db, queries: NewQueries(db)}
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(db), nil
}

// Migrate creates the tournaments table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadAll(ctx context.Context) ([]*models.Tournament, error) {
	rows, err := s.queries.ListTournaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	out := make([]*models.Tournament, 0, len(rows))
	for _, r := range rows {
		t, err := rowToModel(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	store.SortByCreated(out)
	return out, nil
}

func (s *Store) LoadByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return load(ctx, s.queries.GetTournament, id)
}

func load(ctx context.Context, get func(context.Context, uuid.UUID) (tournamentRow, error), id uuid.UUID) (*models.Tournament, error) {
	r, err := get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tournament %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}
	return rowToModel(r)
}

func (s *Store) SaveAll(ctx context.Context, tournaments []*models.Tournament) error {
	return sqlutil.Run(ctx, s.db, nil, NewQueriesTx, func(q *Queries) error {
		if err := q.DeleteAllTournaments(ctx); err != nil {
			return fmt.Errorf("failed to clear tournaments: %w", err)
		}
		for _, t := range tournaments {
			if err := save(ctx, q, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Upsert(ctx context.Context, id uuid.UUID, mutate func(*models.Tournament)) (*models.Tournament, error) {
	var result *models.Tournament
	err := sqlutil.Run(ctx, s.db, nil, NewQueriesTx, func(q *Queries) error {
		t, err := load(ctx, q.GetTournamentForUpdate, id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			t = &models.Tournament{ID: id}
		case err != nil:
			return err
		}

		mutate(t)
		t.ID = id
		if err := save(ctx, q, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result.Clone(), nil
}

func (s *Store) Save(ctx context.Context, t *models.Tournament) error {
	return save(ctx, s.queries, t)
}

func save(ctx context.Context, q *Queries, t *models.Tournament) error {
	r, err := modelToRow(t)
	if err != nil {
		return err
	}
	if err := q.UpsertTournament(ctx, r); err != nil {
		return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := s.queries.DeleteTournament(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return nil
}

// NewQueriesTx binds queries to a transaction for sqlutil.Run.
func NewQueriesTx(tx *sql.Tx) *Queries {
	return NewQueries(tx)
}

func modelToRow(t *models.Tournament) (tournamentRow, error) {
	players, err := json.Marshal(t.Players)
	if err != nil {
		return tournamentRow{}, fmt.Errorf("failed to encode players: %w", err)
	}
	structure, err := json.Marshal(t.BlindStructure)
	if err != nil {
		return tournamentRow{}, fmt.Errorf("failed to encode blind structure: %w", err)
	}
	breaks, err := sqlutil.ToNullRawMessage(t.Breaks)
	if err != nil {
		return tournamentRow{}, fmt.Errorf("failed to encode breaks: %w", err)
	}

	return tournamentRow{
		ID:                t.ID,
		Name:              t.Name,
		Status:            string(t.Status),
		CreatedAt:         t.CreatedAt,
		Players:           players,
		BlindStructure:    structure,
		Breaks:            breaks,
		CurrentLevelIndex: int32(t.CurrentLevelIndex),
		TimeRemaining:     int32(t.TimeRemaining),
		LastTickAt:        sqlutil.ToSqlTime(t.LastTickAt),
	}, nil
}

func rowToModel(r tournamentRow) (*models.Tournament, error) {
	t := &models.Tournament{
		ID:                r.ID,
		Name:              r.Name,
		Status:            models.Status(r.Status),
		CreatedAt:         r.CreatedAt.UTC(),
		CurrentLevelIndex: int(r.CurrentLevelIndex),
		TimeRemaining:     int(r.TimeRemaining),
		LastTickAt:        sqlutil.FromSqlTime(r.LastTickAt),
	}
	if err := json.Unmarshal(r.Players, &t.Players); err != nil {
		return nil, fmt.Errorf("failed to decode players of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(r.BlindStructure, &t.BlindStructure); err != nil {
		return nil, fmt.Errorf("failed to decode blind structure of %s: %w", r.ID, err)
	}
	if err := sqlutil.FromNullRawMessage(r.Breaks, &t.Breaks); err != nil {
		return nil, fmt.Errorf("failed to decode breaks of %s: %w", r.ID, err)
	}
	return t, nil
}
