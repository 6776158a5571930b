package admin

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ListCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewListCache(client, time.Minute)
}

func TestListCacheGetOrBuildCaches(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	key, err := cache.BuildKey(ctx, "ArticleAdmin", "limit=10")
	require.NoError(t, err)
	require.Equal(t, "admin:list:v1:ArticleAdmin:limit=10", key)

	builds := 0
	build := func(context.Context) ([]byte, error) {
		builds++
		return []byte(`{"total":1}`), nil
	}

	payload, err := cache.GetOrBuild(ctx, key, build)
	require.NoError(t, err)
	require.JSONEq(t, `{"total":1}`, string(payload))
	require.Equal(t, 1, builds)

	payload, err = cache.GetOrBuild(ctx, key, build)
	require.NoError(t, err)
	require.JSONEq(t, `{"total":1}`, string(payload))
	require.Equal(t, 1, builds)
}

func TestListCacheBumpChangesKeys(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	before, err := cache.BuildKey(ctx, "ArticleAdmin")
	require.NoError(t, err)

	cache.Bump(ctx)

	after, err := cache.BuildKey(ctx, "ArticleAdmin")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestListCacheNilClientDegrades(t *testing.T) {
	ctx := context.Background()
	cache := NewListCache(nil, time.Minute)

	key, err := cache.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	require.Equal(t, "a:b", key)

	builds := 0
	build := func(context.Context) ([]byte, error) {
		builds++
		return []byte("x"), nil
	}
	for i := 0; i < 2; i++ {
		payload, err := cache.GetOrBuild(ctx, key, build)
		require.NoError(t, err)
		require.Equal(t, "x", string(payload))
	}
	require.Equal(t, 2, builds)

	cache.Bump(ctx) // no-op, must not panic

	var nilCache *ListCache
	key, err = nilCache.BuildKey(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "a", key)
	nilCache.Bump(ctx)
}
