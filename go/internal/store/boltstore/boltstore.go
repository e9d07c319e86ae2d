package boltstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/json"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/mcdev12/blindclock/go/internal/models"
	"github.com/mcdev12/blindclock/go/internal/store"
)

// row is the stored form of a tournament. Records are keyed by id in a single bucket.
type row struct {
	ID        string `storm:"id"`
	CreatedAt time.Time
	Record    models.Tournament
}

// Store is a store.Gateway backed by an embedded bolt file.
type Store struct {
	db *storm.DB
}

// Open opens or creates the database file at path.
func Open(path string) (*Store, error) {
	db, err := storm.Open(path,
		storm.Codec(json.Codec),
		storm.BoltOptions(0o600, &bolt.Options{Timeout: time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to open bolt store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func toRow(t *models.Tournament) *row {
	return &row{ID: t.ID.String(), CreatedAt: t.CreatedAt, Record: *t.Clone()}
}

func (s *Store) LoadAll(ctx context.Context) ([]*models.Tournament, error) {
	var rows []row
	if err := s.db.All(&rows); err != nil && !errors.Is(err, storm.ErrNotFound) {
		return nil, fmt.Errorf("failed to load tournaments: %w", err)
	}

	out := make([]*models.Tournament, 0, len(rows))
	for i := range rows {
		rec := rows[i].Record
		out = append(out, &rec)
	}
	store.SortByCreated(out)
	return out, nil
}

func (s *Store) LoadByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return loadOne(s.db, id)
}

func loadOne(n storm.Node, id uuid.UUID) (*models.Tournament, error) {
	var r row
	if err := n.One("ID", id.String(), &r); err != nil {
		if errors.Is(err, storm.ErrNotFound) {
			return nil, fmt.Errorf("tournament %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}
	return &r.Record, nil
}

func (s *Store) SaveAll(ctx context.Context, tournaments []*models.Tournament) error {
	tx, err := s.db.Begin(true)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing []row
	if err := tx.All(&existing); err != nil && !errors.Is(err, storm.ErrNotFound) {
		return fmt.Errorf("failed to read tournaments: %w", err)
	}
	for i := range existing {
		if err := tx.DeleteStruct(&existing[i]); err != nil {
			return fmt.Errorf("failed to delete tournament %s: %w", existing[i].ID, err)
		}
	}
	for _, t := range tournaments {
		if err := tx.Save(toRow(t)); err != nil {
			return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Upsert(ctx context.Context, id uuid.UUID, mutate func(*models.Tournament)) (*models.Tournament, error) {
	tx, err := s.db.Begin(true)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := loadOne(tx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		t = &models.Tournament{ID: id}
	case err != nil:
		return nil, err
	}

	mutate(t)
	t.ID = id
	if err := tx.Save(toRow(t)); err != nil {
		return nil, fmt.Errorf("failed to save tournament %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tournament %s: %w", id, err)
	}
	return t.Clone(), nil
}

func (s *Store) Save(ctx context.Context, t *models.Tournament) error {
	if err := s.db.Save(toRow(t)); err != nil {
		return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, id uuid.UUID) error {
	err := s.db.DeleteStruct(&row{ID: id.String()})
	if err != nil && !errors.Is(err, storm.ErrNotFound) {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return nil
}
