package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/anikdutta/credvault/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis spins up a Redis container and returns a connected RedisCache + cleanup.
func setupRedis(t *testing.T) *cache.RedisCache {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	redisURL := "redis://" + host + ":" + port.Port()
	rc, err := cache.NewRedisCache(redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rc.Close()) })

	return rc
}

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	err := rc.Ping(context.Background())
	assert.NoError(t, err)
}

func TestSetGet_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	err := rc.Set(ctx, cache.VendorsKey(), []byte(`[{"id":"openai"}]`), time.Minute)
	require.NoError(t, err)

	val, ok, err := rc.Get(ctx, cache.VendorsKey())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[{"id":"openai"}]`), val)
}

func TestGet_Miss(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)

	val, ok, err := rc.Get(context.Background(), "catalog:missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	key := cache.VendorServicesKey("openai")
	require.NoError(t, rc.Set(ctx, key, []byte("x"), time.Minute))
	require.NoError(t, rc.Delete(ctx, key))

	_, ok, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSet_TTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "catalog:ttl", []byte("x"), 100*time.Millisecond))

	assert.Eventually(t, func() bool {
		_, ok, err := rc.Get(ctx, "catalog:ttl")
		return err == nil && !ok
	}, 2*time.Second, 50*time.Millisecond)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "catalog:vendors", cache.VendorsKey())
	assert.Equal(t, "catalog:services:openai", cache.VendorServicesKey("openai"))
}
