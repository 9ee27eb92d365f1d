package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pollpulse/internal/models"

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

func TestRedisCache_SetAndGet(t *testing.T) {
	_, cache := setupMiniRedis(t)
	ctx := context.Background()

	record := models.PollRecord{
		ID:       "vh-1",
		Category: models.CategoryPresidential,
		Pollster: "Ipsos",
	}

	err := cache.Set(ctx, "polls:presidential", record, 10*time.Minute)
	require.NoError(t, err)

	value, err := cache.Get(ctx, "polls:presidential")
	require.NoError(t, err)

	// Redis stores JSON; the domain layer unmarshals
	raw, ok := value.(string)
	require.True(t, ok)

	var got models.PollRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, record.Category, got.Category)
}

func TestRedisCache_Get_NotFound(t *testing.T) {
	_, cache := setupMiniRedis(t)
	ctx := context.Background()

	value, err := cache.Get(ctx, "missing")
	assert.Nil(t, value)
	assert.ErrorIs(t, err, models.ErrCacheUnavailable)
}

func TestRedisCache_Get_Expired(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", 1*time.Second))

	// miniredis expires keys on FastForward, not wall-clock time
	mr.FastForward(2 * time.Second)

	value, err := cache.Get(ctx, "key")
	assert.Nil(t, value)
	assert.ErrorIs(t, err, models.ErrCacheUnavailable)
}

func TestRedisCache_Set_InvalidTTL(t *testing.T) {
	_, cache := setupMiniRedis(t)
	ctx := context.Background()

	err := cache.Set(ctx, "key", "value", 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TTL must be positive")
}

func TestRedisCache_Has(t *testing.T) {
	_, cache := setupMiniRedis(t)
	ctx := context.Background()

	assert.False(t, cache.Has(ctx, "key"))

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	assert.True(t, cache.Has(ctx, "key"))
}

func TestRedisCache_Delete(t *testing.T) {
	_, cache := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, cache.Delete(ctx, "key"))

	assert.False(t, cache.Has(ctx, "key"))
}

func TestRedisCache_Clear(t *testing.T) {
	_, cache := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "b", 2, time.Minute))

	require.NoError(t, cache.Clear(ctx))

	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisCache_Keys(t *testing.T) {
	_, cache := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "polls:presidential", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "polls:generic-ballot", 2, time.Minute))

	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"polls:presidential", "polls:generic-ballot"}, keys)
}
