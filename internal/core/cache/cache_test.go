package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutAddrDisablesCache(t *testing.T) {
	assert.Nil(t, New("", "", 0, 0))
}

func TestNilCacheLoadsThrough(t *testing.T) {
	var c *Cache
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"electronics"}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := GetOrLoadJSON(c, context.Background(), "taxonomy:category:roots", load)
		require.NoError(t, err)
		assert.Equal(t, []string{"electronics"}, got)
	}
	assert.Equal(t, 2, calls)

	c.Invalidate(context.Background(), "taxonomy:category:roots")
	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}

func TestNilCachePropagatesLoadError(t *testing.T) {
	var c *Cache
	boom := errors.New("db down")
	_, err := GetOrLoadJSON(c, context.Background(), "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

// offline 连不上的 Redis：读总是 miss，写静默失败
func offline() *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond}),
		TTL: time.Minute,
	}
}

func TestInvalidateDuringLoadSkipsWriteBack(t *testing.T) {
	c := offline()
	defer c.Close()
	ctx := context.Background()
	key := "taxonomy:category:roots"

	gen := c.gen(key)
	c.Invalidate(ctx, key)
	assert.False(t, c.fill(ctx, key, gen, []byte(`["stale"]`)))
	assert.True(t, c.fill(ctx, key, c.gen(key), []byte(`["fresh"]`)))
}

func TestOfflineCacheStillLoads(t *testing.T) {
	c := offline()
	defer c.Close()
	ctx := context.Background()

	got, err := GetOrLoadJSON(c, ctx, "k", func(context.Context) ([]string, error) {
		// 回源途中发生写操作
		c.Invalidate(ctx, "k")
		return []string{"a"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, uint64(1), c.gen("k"))
}
