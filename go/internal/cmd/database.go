package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blindclock/go/internal/dbconfig"
	"github.com/mcdev12/blindclock/go/internal/store"
	"github.com/mcdev12/blindclock/go/internal/store/boltstore"
	"github.com/mcdev12/blindclock/go/internal/store/pgstore"
	"github.com/mcdev12/blindclock/go/internal/store/redisstore"
)

const (
	driverMemory   = "memory"
	driverBolt     = "bolt"
	driverRedis    = "redis"
	driverPostgres = "postgres"
)

// setupGateway opens the store selected by STORE_DRIVER. The returned func
// closes it.
func setupGateway(ctx context.Context) (store.Gateway, func() error, error) {
	driver := getEnv("STORE_DRIVER", driverBolt)

	switch driver {
	case driverMemory:
		log.Warn().Msg("using in-memory store, tournaments are lost on exit")
		return store.NewMemory(), func() error { return nil }, nil

	case driverBolt:
		path := getEnv("BOLT_PATH", "blindclock.db")
		s, err := boltstore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", path).Msg("connected to bolt store")
		return s, s.Close, nil

	case driverRedis:
		addr := getEnv("REDIS_ADDR", "localhost:6379")
		s, err := redisstore.Dial(ctx, addr, getEnv("REDIS_PASSWORD", ""), getEnvAsInt("REDIS_DB", 0))
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", addr).Msg("connected to redis store")
		return s, s.Close, nil

	case driverPostgres:
		dbCfg := dbconfig.NewConfigFromEnv()
		s, err := pgstore.Open(ctx, dbCfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		log.Info().
			Str("user", dbCfg.User).
			Str("host", dbCfg.Host).
			Int("port", dbCfg.Port).
			Str("database", dbCfg.Database).
			Msg("connected to database")
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}
}
