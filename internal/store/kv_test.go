package store

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetSetDelete(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "auth:code:+48123")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "auth:code:+48123", "1234", 5*time.Minute))
	v, err := kv.Get(ctx, "auth:code:+48123")
	require.NoError(t, err)
	assert.Equal(t, "1234", v)
	assert.Equal(t, 5*time.Minute, mr.TTL("auth:code:+48123"))

	mr.FastForward(6 * time.Minute)
	_, err = kv.Get(ctx, "auth:code:+48123")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "a", "1", 0))
	require.NoError(t, kv.Delete(ctx, "a"))
	assert.False(t, mr.Exists("a"))
	require.NoError(t, kv.Delete(ctx))
}

func TestRedisKV_ScanKeys(t *testing.T) {
	_, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "geofence:state:1:zone-a", "1", 0))
	require.NoError(t, kv.Set(ctx, "geofence:state:1:zone-b", "0", 0))
	require.NoError(t, kv.Set(ctx, "geofence:state:2:zone-a", "1", 0))

	keys, err := kv.ScanKeys(ctx, "geofence:state:1:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"geofence:state:1:zone-a", "geofence:state:1:zone-b"}, keys)
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "auth:token:abc", "u1", time.Minute))
	require.NoError(t, kv.Set(ctx, "auth:token:def", "u2", 0))
	v, err := kv.Get(ctx, "auth:token:abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", v)

	keys, err := kv.ScanKeys(ctx, "auth:token:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"auth:token:abc", "auth:token:def"}, keys)

	now = now.Add(2 * time.Minute)
	_, err = kv.Get(ctx, "auth:token:abc")
	assert.ErrorIs(t, err, ErrMiss)
	keys, err = kv.ScanKeys(ctx, "auth:token:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"auth:token:def"}, keys)

	require.NoError(t, kv.Delete(ctx, "auth:token:def"))
	_, err = kv.Get(ctx, "auth:token:def")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestKV_Incr(t *testing.T) {
	_, redisKV := setupTestRedis(t)
	for name, kv := range map[string]KV{"redis": redisKV, "memory": NewMemoryKV()} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := kv.Incr(ctx, "zones:list:version")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
			n, err = kv.Incr(ctx, "zones:list:version")
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			v, err := kv.Get(ctx, "zones:list:version")
			require.NoError(t, err)
			assert.Equal(t, "2", v)

			require.NoError(t, kv.Set(ctx, "auth:code:+48123", "abc", 0))
			_, err = kv.Incr(ctx, "auth:code:+48123")
			assert.Error(t, err)
		})
	}
}
