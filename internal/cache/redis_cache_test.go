package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("MINING_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MINING_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := NewRedisCache(RedisConfig{Addr: addr, Prefix: "miningpulse:test:"})
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.GetBytes(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)
}
