package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs the behaviour every backend shares.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key1", "value1", 0))
	val, found, err := c.Get(ctx, "key1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value1", val)

	val, found, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	require.NoError(t, c.Set(ctx, "to-delete", "x", 0))
	require.NoError(t, c.Delete(ctx, "to-delete"))
	_, found, err = c.Get(ctx, "to-delete")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "key2", "value2", 0))
	require.NoError(t, c.Clear(ctx))
	_, found, err = c.Get(ctx, "key2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache(t *testing.T) {
	c, err := New(Config{Type: TypeMemory, DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	require.NoError(t, err)
	exercise(t, c)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, err := NewMemoryCache(Config{DefaultTTL: time.Minute, CleanupInterval: time.Second})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "v", 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)
	_, found, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(Config{Type: TypeRedis, RedisAddr: mr.Addr(), DefaultTTL: time.Hour})
	require.NoError(t, err)
	exercise(t, c)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "ttl", "v", 0))
	assert.Equal(t, time.Hour, mr.TTL("ttl"))

	mr.FastForward(2 * time.Hour)
	_, found, err := c.Get(ctx, "ttl")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(Config{Type: TypeRedis, RedisAddr: addr})
	assert.Error(t, err)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Config{Type: "memcached"})
	assert.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "rules", Key("rules"))
	assert.Equal(t, "rules:a:b", Key("rules", "a", "b"))

	k1 := ContentKey("rules", []byte("doc"))
	k2 := ContentKey("rules", []byte("doc"))
	k3 := ContentKey("rules", []byte("other"))
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, k1, len("rules:")+64)
}
