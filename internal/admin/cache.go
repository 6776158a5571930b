package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "admin:list:version"

// ListCache caches rendered list payloads in Redis behind a version
// counter. Every mutation bumps the version, so cached pages never outlive
// the write that invalidated them within this deployment. A nil client
// degrades to building every payload.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewListCache instantiates the cache helper.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

// BuildKey composes a versioned cache key from the given parts.
func (c *ListCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	if c == nil || c.client == nil {
		return strings.Join(parts, ":"), nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("admin:list:v%d:%s", ver, strings.Join(parts, ":")), nil
}

// GetOrBuild returns the cached payload for key, or builds and stores it.
// Concurrent builds of the same key are collapsed to one execution.
func (c *ListCache) GetOrBuild(ctx context.Context, key string, build func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil || c.client == nil {
		return build(ctx)
	}
	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		return cached, nil
	}
	payload, err, _ := c.group.Do(key, func() (any, error) {
		built, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, built, c.ttl).Err(); err != nil {
			return built, nil // serve the build even if the store fails
		}
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.([]byte), nil
}

// Bump invalidates every cached list payload by advancing the version.
func (c *ListCache) Bump(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Incr(ctx, cacheVersionKey).Err()
}
