// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"neighborly/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// TTLs for the cached entities.
const (
	ContentTTL = 2 * time.Minute
	FeedTTL    = 30 * time.Second
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis initializes the Redis client with the given address. The cache is
// optional; when Redis is unreachable the application runs without it.
func InitRedis(addr string) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Printf("Redis connection warning: invalid REDIS_URL %q: %v (continuing without cache)", addr, err)
			client = nil
			return
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client = redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		client = nil
	} else {
		log.Println("Redis connected successfully")
	}
}

// SetClient replaces the Redis client; tests use this with miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}

// PostKey derives the cache key for a post.
func PostKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}

// PollKey derives the cache key for a poll.
func PollKey(id uint) string {
	return fmt.Sprintf("poll:%d", id)
}

// feedVersionKey holds a per-building counter bumped on every write so stale
// feed pages simply stop being addressed instead of being scanned for.
func feedVersionKey(building string) string {
	return "feed_ver:" + building
}

// FeedKey derives the cache key for a composed feed page. The key embeds the
// building's current feed version.
func FeedKey(ctx context.Context, building, category, block, kind string) string {
	version := "0"
	if client != nil {
		if v, err := client.Get(ctx, feedVersionKey(building)).Result(); err == nil {
			version = v
		}
	}
	return fmt.Sprintf("feed:v%s:%s:%s:%s:%s", version, building, category, block, kind)
}

// InvalidateFeed bumps the building's feed version, orphaning every cached
// feed page for it. Orphaned pages expire via TTL.
func InvalidateFeed(ctx context.Context, building string) {
	if client == nil {
		return
	}
	if err := client.Incr(ctx, feedVersionKey(building)).Err(); err != nil {
		log.Printf("cache feed invalidation failed for building %q: %v", building, err)
	}
}

// Invalidate removes a single cached key, best-effort.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		log.Printf("cache invalidation failed for key %q: %v", key, err)
	}
}
