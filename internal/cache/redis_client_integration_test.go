//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := redis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	addr := startRedis(t)

	client, err := NewRedisClient(ctx, RedisConfig{Addr: addr, PoolSize: 2, Prefix: "test:"})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Get(ctx, "knowledge:doc")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, client.Set(ctx, "knowledge:doc", []byte(`[]`), time.Minute))
	got, err := client.Get(ctx, "knowledge:doc")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, client.Set(ctx, "completion:1", []byte("a"), time.Minute))
	require.NoError(t, client.Set(ctx, "completion:2", []byte("b"), time.Minute))
	require.NoError(t, client.DeleteByPrefix(ctx, "completion:"))

	_, err = client.Get(ctx, "completion:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = client.Get(ctx, "knowledge:doc")
	assert.NoError(t, err)

	require.NoError(t, client.Delete(ctx, "knowledge:doc"))
	_, err = client.Get(ctx, "knowledge:doc")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisClient_UnreachableServer(t *testing.T) {
	_, err := NewRedisClient(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
