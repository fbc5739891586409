package cache

import (
	"context"
	"testing"
	"time"

	"creativesync/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a mini redis server for testing
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := &RedisCache{
		client: client,
	}

	return mr, cache
}

func TestRedisCache_NewRedisCache_Success(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	redisURL := "redis://" + mr.Addr()
	cache, err := NewRedisCache(redisURL)

	require.NoError(t, err)
	assert.NotNil(t, cache)
}

func TestRedisCache_NewRedisCache_InvalidURL(t *testing.T) {
	cache, err := NewRedisCache("invalid://url::")

	assert.Error(t, err)
	assert.Nil(t, cache)
	assert.Contains(t, err.Error(), "failed to parse redis URL")
}

func TestRedisCache_NewRedisCache_ConnectionFailed(t *testing.T) {
	// Use invalid address that won't connect
	cache, err := NewRedisCache("redis://localhost:99999")

	assert.Error(t, err)
	assert.Nil(t, cache)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestRedisCache_SetAndGetTable(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()
	table := map[string]int64{"US": 1, "BR": 31, "DE": 57}

	err := cache.SetTable(ctx, "lookup:countries", table, 1*time.Hour)
	require.NoError(t, err)

	got, err := cache.GetTable(ctx, "lookup:countries")
	require.NoError(t, err)
	assert.Equal(t, table, got)
}

func TestRedisCache_GetTable_NotFound(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	got, err := cache.GetTable(context.Background(), "lookup:missing")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, models.ErrCacheUnavailable)
}

func TestRedisCache_GetTable_CorruptPayload(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	// Something other than a JSON table under the key
	require.NoError(t, mr.Set("lookup:countries", "not-json"))

	got, err := cache.GetTable(context.Background(), "lookup:countries")

	assert.Nil(t, got)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal cached table")
}

func TestRedisCache_SetTable_InvalidTTL(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{"zero TTL", 0},
		{"negative TTL", -1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.SetTable(ctx, "lookup:countries", map[string]int64{"US": 1}, tt.ttl)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "TTL must be positive")
		})
	}
}

func TestRedisCache_SetTable_Overwrite(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	err := cache.SetTable(ctx, "lookup:sources", map[string]int64{"push_house": 1}, 1*time.Hour)
	require.NoError(t, err)

	err = cache.SetTable(ctx, "lookup:sources", map[string]int64{"push_house": 1, "feedhouse": 2}, 1*time.Hour)
	require.NoError(t, err)

	got, err := cache.GetTable(ctx, "lookup:sources")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"push_house": 1, "feedhouse": 2}, got)
}

func TestRedisCache_Delete(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	err := cache.SetTable(ctx, "lookup:countries", map[string]int64{"US": 1}, 1*time.Hour)
	require.NoError(t, err)

	err = cache.Delete(ctx, "lookup:countries")
	require.NoError(t, err)

	got, err := cache.GetTable(ctx, "lookup:countries")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, models.ErrCacheUnavailable)
}

func TestRedisCache_Delete_NonExistent(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	err := cache.Delete(context.Background(), "lookup:missing")
	assert.NoError(t, err)
}

func TestRedisCache_TTL_Expiration(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx := context.Background()

	err := cache.SetTable(ctx, "lookup:countries", map[string]int64{"US": 1}, 1*time.Second)
	require.NoError(t, err)

	// Available immediately
	_, err = cache.GetTable(ctx, "lookup:countries")
	require.NoError(t, err)

	// Fast-forward time in miniredis
	mr.FastForward(2 * time.Second)

	got, err := cache.GetTable(ctx, "lookup:countries")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, models.ErrCacheUnavailable)
}

func TestRedisCache_Close(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	err := cache.Close()
	assert.NoError(t, err)
}

func TestRedisCache_ContextCancellation(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	defer mr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cache.SetTable(ctx, "lookup:countries", map[string]int64{"US": 1}, 1*time.Hour)
	assert.Error(t, err)

	_, err = cache.GetTable(ctx, "lookup:countries")
	assert.Error(t, err)
}

func TestRedisCache_GetTable_WithError(t *testing.T) {
	mr, cache := setupMiniRedis(t)

	// Close the miniredis server to force error
	mr.Close()

	_, err := cache.GetTable(context.Background(), "lookup:countries")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrCacheUnavailable)
	assert.Contains(t, err.Error(), "redis get failed")
}

func TestRedisCache_SetTable_WithError(t *testing.T) {
	mr, cache := setupMiniRedis(t)

	mr.Close()

	err := cache.SetTable(context.Background(), "lookup:countries", map[string]int64{"US": 1}, 1*time.Hour)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis set failed")
}

func TestRedisCache_Delete_WithError(t *testing.T) {
	mr, cache := setupMiniRedis(t)

	mr.Close()

	err := cache.Delete(context.Background(), "lookup:countries")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis delete failed")
}

func BenchmarkRedisCache_SetTable(b *testing.B) {
	mr := miniredis.RunT(b)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	cache := &RedisCache{client: client}

	ctx := context.Background()
	table := map[string]int64{"US": 1, "BR": 31}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.SetTable(ctx, "lookup:countries", table, 1*time.Hour)
	}
}

func BenchmarkRedisCache_GetTable(b *testing.B) {
	mr := miniredis.RunT(b)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	cache := &RedisCache{client: client}

	ctx := context.Background()
	_ = cache.SetTable(ctx, "lookup:countries", map[string]int64{"US": 1}, 1*time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cache.GetTable(ctx, "lookup:countries")
	}
}
