//go:build integration

package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"docanalyzer/internal/cache"
	"docanalyzer/internal/config"
	"docanalyzer/internal/port"
)

func TestRedisCache_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rc, err := cache.NewRedisCache(config.RedisConfig{
		Addr:      fmt.Sprintf("%s:%s", host, mapped.Port()),
		KeyPrefix: "test:",
	})
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	require.NoError(t, rc.Ping(ctx))

	_, err = rc.Get(ctx, "missing")
	assert.ErrorIs(t, err, port.ErrCacheMiss)

	require.NoError(t, rc.Set(ctx, "k", []byte(`{"summary":"x"}`), time.Second))
	got, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"x"}`, string(got))

	require.NoError(t, rc.Delete(ctx, "k"))
	_, err = rc.Get(ctx, "k")
	assert.ErrorIs(t, err, port.ErrCacheMiss)
}
