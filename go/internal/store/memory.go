package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mcdev12/blindclock/go/internal/models"
)

// Memory keeps encoded records in a map. Records are stored as JSON so callers
// never share memory with the store.
type Memory struct {
	mu          sync.RWMutex
	tournaments map[uuid.UUID][]byte
}

func NewMemory() *Memory {
	return &Memory{
		tournaments: make(map[uuid.UUID][]byte),
	}
}

func (m *Memory) LoadAll(ctx context.Context) ([]*models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Tournament, 0, len(m.tournaments))
	for id := range m.tournaments {
		t, err := m.load(id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	SortByCreated(out)
	return out, nil
}

func (m *Memory) LoadByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.load(id)
}

func (m *Memory) load(id uuid.UUID) (*models.Tournament, error) {
	data, ok := m.tournaments[id]
	if !ok {
		return nil, ErrNotFound
	}
	var t models.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %s: %w", id, err)
	}
	return &t, nil
}

func (m *Memory) SaveAll(ctx context.Context, tournaments []*models.Tournament) error {
	next := make(map[uuid.UUID][]byte, len(tournaments))
	for _, t := range tournaments {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
		}
		next[t.ID] = data
	}

	m.mu.Lock()
	m.tournaments = next
	m.mu.Unlock()
	return nil
}

func (m *Memory) Upsert(ctx context.Context, id uuid.UUID, mutate func(*models.Tournament)) (*models.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.load(id)
	if err == ErrNotFound {
		t = &models.Tournament{ID: id}
	} else if err != nil {
		return nil, err
	}

	mutate(t)
	t.ID = id
	if err := m.save(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (m *Memory) Save(ctx context.Context, t *models.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(t)
}

func (m *Memory) save(t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	m.tournaments[t.ID] = data
	return nil
}

func (m *Memory) DeleteByID(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tournaments, id)
	return nil
}
