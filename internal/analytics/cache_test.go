package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, "test:analytics"), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	var board Leaderboard
	hit, err := cache.Get(ctx, "leaderboard:1", &board)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, cache.Set(ctx, "leaderboard:1", Leaderboard{Days: 1, Entries: []LeaderboardEntry{{AgentName: "Bram", Count: 3, Rank: 1}}}, time.Minute))

	hit, err = cache.Get(ctx, "leaderboard:1", &board)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 1, board.Days)
	require.Equal(t, "Bram", board.Entries[0].AgentName)
}

func TestRedisCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", 1, time.Minute))
	mr.FastForward(2 * time.Minute)

	var v int
	hit, err := cache.Get(ctx, "k", &v)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestRedisCacheInvalidateAll(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, cache.InvalidateAll(ctx))

	require.False(t, mr.Exists("test:analytics:a"))
	require.False(t, mr.Exists("test:analytics:b"))
	require.False(t, mr.Exists("test:analytics:keys"))
	require.True(t, mr.Exists("unrelated"))
}
