package store

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/mcdev12/blindclock/go/internal/models"
)

// ErrNotFound is returned when no tournament is stored under an id.
var ErrNotFound = errors.New("tournament not found")

// Gateway persists tournament records. Every implementation must round-trip the
// full record, including player positions and the tick anchor.
type Gateway interface {
	// LoadAll returns every stored tournament, oldest first.
	LoadAll(ctx context.Context) ([]*models.Tournament, error)
	// LoadByID returns ErrNotFound when the id is unknown.
	LoadByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	// SaveAll replaces the full stored set.
	SaveAll(ctx context.Context, tournaments []*models.Tournament) error
	// Upsert applies mutate to the stored record, or to a fresh record carrying id
	// when none exists, and writes the result back.
	Upsert(ctx context.Context, id uuid.UUID, mutate func(*models.Tournament)) (*models.Tournament, error)
	// Save writes one whole record.
	Save(ctx context.Context, t *models.Tournament) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// SortByCreated orders records oldest first, breaking ties on id.
func SortByCreated(ts []*models.Tournament) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].ID.String() < ts[j].ID.String()
		}
		return ts[i].CreatedAt.Before(ts[j].CreatedAt)
	})
}
