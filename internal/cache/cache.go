package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shiftlog/work-hour-api/internal/config"
)

// NewClient creates a Redis client from configuration.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       0,
	})
}

// Cache is a redis-backed JSON cache for dashboard statistics. A nil *Cache
// is valid and turns every operation into a no-op, so callers never branch
// on whether caching is wired in.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Cache with the given TTL.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// PersonalKey builds the cache key for a user's personal dashboard.
func PersonalKey(userID uint64, period, start, end string) string {
	return fmt.Sprintf("dashboard:personal:%d:%s:%s:%s", userID, period, start, end)
}

// TeamKey builds the cache key for a team dashboard.
func TeamKey(teamID uint64, period, start, end string) string {
	return fmt.Sprintf("dashboard:team:%d:%s:%s:%s", teamID, period, start, end)
}

// ProjectKey builds the cache key for a cross-user project dashboard. The
// ID list is sorted so equivalent filters share one entry.
func ProjectKey(projectIDs []uint64, period, start, end string) string {
	ids := make([]uint64, len(projectIDs))
	copy(ids, projectIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return fmt.Sprintf("dashboard:project:%s:%s:%s:%s", strings.Join(parts, ","), period, start, end)
}

// Get loads a cached value into dest. Misses and decode failures both
// report false.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(raw, dest) == nil
}

// Set stores a value under key with the cache TTL. Failures are dropped;
// the cache is an optimization, not a source of truth.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	c.client.Set(ctx, key, raw, c.ttl)
}

// InvalidateUser drops every personal dashboard entry for a user. Team and
// project dashboards expire by TTL.
func (c *Cache) InvalidateUser(ctx context.Context, userID uint64) {
	if c == nil {
		return
	}

	pattern := fmt.Sprintf("dashboard:personal:%d:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}
