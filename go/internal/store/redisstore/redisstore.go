package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/mcdev12/blindclock/go/internal/models"
	"github.com/mcdev12/blindclock/go/internal/store"
)

const (
	DefaultPrefix = "blindclock"

	maxUpsertRetries = 10
)

// Store keeps one JSON value per tournament under <prefix>:tournament:<id>
// and the set of known ids under <prefix>:tournaments.
type Store struct {
	rdclient *redis.Client
	prefix   string
}

// New wraps an existing client. An empty prefix uses DefaultPrefix.
func New(rdclient *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdclient: rdclient, prefix: prefix}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr, password string, db int) (*Store, error) {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdclient.Ping(ctx).Err(); err != nil {
		rdclient.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return New(rdclient, ""), nil
}

func (s *Store) Close() error {
	return s.rdclient.Close()
}

func (s *Store) key(id uuid.UUID) string {
	return fmt.Sprintf("%s:tournament:%s", s.prefix, id)
}

func (s *Store) indexKey() string {
	return s.prefix + ":tournaments"
}

func (s *Store) LoadAll(ctx context.Context) ([]*models.Tournament, error) {
	ids, err := s.rdclient.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament ids: %w", err)
	}
	if len(ids) == 0 {
		return []*models.Tournament{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("bad tournament id %q in index: %w", raw, err)
		}
		keys = append(keys, s.key(id))
	}
	values, err := s.rdclient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tournaments: %w", err)
	}

	out := make([]*models.Tournament, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// indexed but gone
			continue
		}
		t, err := decode([]byte(str))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", keys[i], err)
		}
		out = append(out, t)
	}
	store.SortByCreated(out)
	return out, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) LoadByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return s.get(ctx, s.rdclient, id)
}

func (s *Store) get(ctx context.Context, c getter, id uuid.UUID) (*models.Tournament, error) {
	data, err := c.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("tournament %s: %w", id, store.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}
	return decode(data)
}

func (s *Store) SaveAll(ctx context.Context, tournaments []*models.Tournament) error {
	encoded := make(map[uuid.UUID][]byte, len(tournaments))
	for _, t := range tournaments {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
		}
		encoded[t.ID] = data
	}

	txf := func(tx *redis.Tx) error {
		ids, err := tx.SMembers(ctx, s.indexKey()).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, raw := range ids {
				if id, err := uuid.Parse(raw); err == nil {
					pipe.Del(ctx, s.key(id))
				}
			}
			pipe.Del(ctx, s.indexKey())
			for id, data := range encoded {
				pipe.Set(ctx, s.key(id), data, 0)
				pipe.SAdd(ctx, s.indexKey(), id.String())
			}
			return nil
		})
		return err
	}
	if err := s.watch(ctx, txf, s.indexKey()); err != nil {
		return fmt.Errorf("failed to replace tournaments: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, id uuid.UUID, mutate func(*models.Tournament)) (*models.Tournament, error) {
	var result *models.Tournament
	txf := func(tx *redis.Tx) error {
		t, err := s.get(ctx, tx, id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			t = &models.Tournament{ID: id}
		case err != nil:
			return err
		}

		mutate(t)
		t.ID = id
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode tournament %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key(id), data, 0)
			pipe.SAdd(ctx, s.indexKey(), id.String())
			return nil
		})
		if err == nil {
			result = t
		}
		return err
	}
	if err := s.watch(ctx, txf, s.key(id)); err != nil {
		return nil, err
	}
	return result.Clone(), nil
}

// watch runs txf in an optimistic transaction, retrying when a watched key
// changes underneath it.
func (s *Store) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxUpsertRetries; i++ {
		err := s.rdclient.Watch(ctx, txf, keys...)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", maxUpsertRetries, redis.TxFailedErr)
}

func (s *Store) Save(ctx context.Context, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	_, err = s.rdclient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(t.ID), data, 0)
		pipe.SAdd(ctx, s.indexKey(), t.ID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := s.rdclient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return nil
}

func decode(data []byte) (*models.Tournament, error) {
	var t models.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
