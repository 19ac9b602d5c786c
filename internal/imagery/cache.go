package imagery

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"biodex/internal/metrics"
)

// Cache stores resolved image URLs by key. Implementations never fail the
// caller: errors are misses.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// LRU is an in-process cache with a TTL per entry.
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type kv struct {
	k   string
	v   string
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU) Get(_ context.Context, k string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(kv)
		if c.now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	return "", false
}

func (c *LRU) Set(_ context.Context, k, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := c.now().Add(c.ttl)
	if e, ok := c.dict[k]; ok {
		e.Value = kv{k: k, v: v, exp: exp}
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(kv{k: k, v: v, exp: exp})
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		if back == nil {
			break
		}
		delete(c.dict, back.Value.(kv).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// RedisCache shares resolved URLs between processes.
type RedisCache struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(rc *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rc: rc, prefix: "biodex:img:", ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, k string) (string, bool) {
	s, err := c.rc.Get(ctx, c.prefix+k).Result()
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

func (c *RedisCache) Set(ctx context.Context, k, v string) {
	_ = c.rc.Set(ctx, c.prefix+k, v, c.ttl).Err()
}

// Tiered checks caches in order and backfills faster tiers on a hit.
type Tiered []Cache

func (t Tiered) Get(ctx context.Context, k string) (string, bool) {
	for i, c := range t {
		if v, ok := c.Get(ctx, k); ok {
			for j := 0; j < i; j++ {
				t[j].Set(ctx, k, v)
			}
			metrics.ImageCacheHitsTotal.Inc()
			return v, true
		}
	}
	metrics.ImageCacheMissesTotal.Inc()
	return "", false
}

func (t Tiered) Set(ctx context.Context, k, v string) {
	for _, c := range t {
		c.Set(ctx, k, v)
	}
}
