package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/blindclock/go/internal/store"
	"github.com/mcdev12/blindclock/go/internal/store/storetest"
)

// Needs a live server: REDIS_ADDR=localhost:6379 go test ./...
func TestGateway(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	storetest.Run(t, func(t *testing.T) store.Gateway {
		ctx := context.Background()
		rdclient := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
		require.NoError(t, rdclient.Ping(ctx).Err())

		// every subtest gets its own keyspace
		s := New(rdclient, "blindclock-test-"+uuid.NewString())
		t.Cleanup(func() {
			keys, _ := rdclient.Keys(ctx, s.prefix+":*").Result()
			if len(keys) > 0 {
				rdclient.Del(ctx, keys...)
			}
			rdclient.Close()
		})
		return s
	})
}
