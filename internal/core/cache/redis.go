package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache 读穿缓存；nil *Cache 合法，直接回源
type Cache struct {
	RDB *redis.Client
	TTL time.Duration
	sf  singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64 // 每个 key 的失效次数
}

func (c *Cache) gen(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

func (c *Cache) bump(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens == nil {
		c.gens = make(map[string]uint64)
	}
	for _, k := range keys {
		c.gens[k]++
	}
}

// fill 回源期间 key 被失效过则丢弃结果，不回写旧数据
func (c *Cache) fill(ctx context.Context, key string, gen uint64, b []byte) bool {
	if c.gen(key) != gen {
		return false
	}
	_ = c.RDB.Set(ctx, key, b, c.TTL).Err()
	return true
}

// New addr 为空时返回 nil（未启用缓存）
func New(addr, pass string, db int, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		TTL: ttl,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil {
		return load(ctx)
	}
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	// single flight 合并回源
	v, err, _ := c.sf.Do(key, func() (any, error) {
		gen := c.gen(key)
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		c.fill(ctx, key, gen, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 写操作后调用；进行中的回源不会再把旧值写回。Redis 不可用时静默忽略
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	c.bump(keys...)
	for _, k := range keys {
		c.sf.Forget(k)
	}
	_ = c.RDB.Del(ctx, keys...).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.RDB.Close()
}
