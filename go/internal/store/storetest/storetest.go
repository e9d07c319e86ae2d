// Package storetest holds the behaviour every store.Gateway must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/blindclock/go/internal/models"
	"github.com/mcdev12/blindclock/go/internal/store"
)

// Sample builds a record with a busted player, a ranked player and a break,
// so a round-trip exercises every optional field.
func Sample(t *testing.T, name string, createdAt time.Time) *models.Tournament {
	t.Helper()

	structure := models.BlindStructure{
		Type: "medium",
		Levels: []models.BlindLevel{
			{SmallBlind: 25, BigBlind: 50, Duration: 900},
			{SmallBlind: 50, BigBlind: 100, Duration: 900},
			{SmallBlind: 400, BigBlind: 800, Ante: 100, Duration: 900},
		},
	}
	tour, err := models.NewTournament(name, []string{"Ann", "Ben", "Cat"}, structure,
		[]models.Break{{AfterLevel: 2, Duration: 600}}, createdAt)
	require.NoError(t, err)

	busted := createdAt.Add(42 * time.Minute)
	pos := 3
	tour.Players[2].BustedAt = &busted
	tour.Players[2].Position = &pos
	tour.Status = models.StatusRunning
	tour.CurrentLevelIndex = 1
	tour.TimeRemaining = 431
	tour.LastTickAt = createdAt.Add(50 * time.Minute)
	return tour
}

// Run exercises the Gateway contract against a fresh gateway from newGateway.
func Run(t *testing.T, newGateway func(t *testing.T) store.Gateway) {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)

	t.Run("round trip", func(t *testing.T) {
		g := newGateway(t)
		want := Sample(t, "Friday Night", base)

		require.NoError(t, g.Save(ctx, want))
		got, err := g.LoadByID(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing", func(t *testing.T) {
		g := newGateway(t)
		_, err := g.LoadByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("load all ordered by creation", func(t *testing.T) {
		g := newGateway(t)
		later := Sample(t, "Later", base.Add(time.Hour))
		earlier := Sample(t, "Earlier", base)
		require.NoError(t, g.Save(ctx, later))
		require.NoError(t, g.Save(ctx, earlier))

		all, err := g.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Earlier", all[0].Name)
		assert.Equal(t, "Later", all[1].Name)
	})

	t.Run("save all replaces set", func(t *testing.T) {
		g := newGateway(t)
		old := Sample(t, "Old", base)
		require.NoError(t, g.Save(ctx, old))

		a := Sample(t, "A", base.Add(time.Minute))
		b := Sample(t, "B", base.Add(2*time.Minute))
		require.NoError(t, g.SaveAll(ctx, []*models.Tournament{a, b}))

		all, err := g.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, a.ID, all[0].ID)
		assert.Equal(t, b.ID, all[1].ID)

		_, err = g.LoadByID(ctx, old.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("upsert", func(t *testing.T) {
		g := newGateway(t)
		rec := Sample(t, "Upsert", base)
		require.NoError(t, g.Save(ctx, rec))

		got, err := g.Upsert(ctx, rec.ID, func(r *models.Tournament) {
			r.Name = "Renamed"
			r.TimeRemaining = 10
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)

		loaded, err := g.LoadByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", loaded.Name)
		assert.Equal(t, 10, loaded.TimeRemaining)
		assert.Len(t, loaded.Players, 3)

		fresh := uuid.New()
		created, err := g.Upsert(ctx, fresh, func(r *models.Tournament) {
			r.Name = "Fresh"
		})
		require.NoError(t, err)
		assert.Equal(t, fresh, created.ID)

		loaded, err = g.LoadByID(ctx, fresh)
		require.NoError(t, err)
		assert.Equal(t, "Fresh", loaded.Name)
	})

	t.Run("delete", func(t *testing.T) {
		g := newGateway(t)
		rec := Sample(t, "Gone", base)
		require.NoError(t, g.Save(ctx, rec))
		require.NoError(t, g.DeleteByID(ctx, rec.ID))

		_, err := g.LoadByID(ctx, rec.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		// deleting twice is not an error
		assert.NoError(t, g.DeleteByID(ctx, rec.ID))
	})
}
