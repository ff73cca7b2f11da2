package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})

	return New(client, time.Minute), mr
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	key := PersonalKey(7, "week", "2026-08-17", "2026-08-20")
	c.Set(ctx, key, payload{Name: "alice", Count: 3})

	var got payload
	require.True(t, c.Get(ctx, key, &got))
	require.Equal(t, "alice", got.Name)
	require.Equal(t, 3, got.Count)
}

func TestCache_GetMiss(t *testing.T) {
	c, _ := setupCache(t)

	var got map[string]interface{}
	require.False(t, c.Get(context.Background(), "dashboard:personal:1:today:x:y", &got))
}

func TestCache_EntriesExpire(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	key := PersonalKey(7, "today", "2026-08-20", "2026-08-20")
	c.Set(ctx, key, map[string]string{"hello": "world"})

	mr.FastForward(2 * time.Minute)

	var got map[string]string
	require.False(t, c.Get(ctx, key, &got))
}

func TestCache_InvalidateUserDropsOnlyThatUser(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	mineToday := PersonalKey(7, "today", "2026-08-20", "2026-08-20")
	mineWeek := PersonalKey(7, "week", "2026-08-17", "2026-08-20")
	theirs := PersonalKey(8, "today", "2026-08-20", "2026-08-20")

	for _, key := range []string{mineToday, mineWeek, theirs} {
		c.Set(ctx, key, map[string]string{"k": "v"})
	}

	c.InvalidateUser(ctx, 7)

	var got map[string]string
	require.False(t, c.Get(ctx, mineToday, &got))
	require.False(t, c.Get(ctx, mineWeek, &got))
	require.True(t, c.Get(ctx, theirs, &got))
}

func TestProjectKey_OrderInsensitive(t *testing.T) {
	a := ProjectKey([]uint64{3, 1, 2}, "today", "2026-08-20", "2026-08-20")
	b := ProjectKey([]uint64{1, 2, 3}, "today", "2026-08-20", "2026-08-20")
	require.Equal(t, a, b)
	require.Equal(t, "dashboard:project:1,2,3:today:2026-08-20:2026-08-20", a)
}

func TestCache_NilCacheIsNoOp(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.Set(ctx, "key", "value")
	c.InvalidateUser(ctx, 1)

	var got string
	require.False(t, c.Get(ctx, "key", &got))
}
