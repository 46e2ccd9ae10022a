package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mini-linkedin/internal/domain"
)

// FeedCache cachea el feed global por un TTL corto. Toda mutacion de posts lo
// invalida, asi una lectura cacheada nunca sobrevive a una escritura.
type FeedCache interface {
	Get(ctx context.Context) ([]domain.Post, bool)
	Set(ctx context.Context, posts []domain.Post)
	Invalidate(ctx context.Context)
}

type memoryFeedCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	posts     []domain.Post
	expiresAt time.Time
}

// NewMemoryFeedCache crea un cache de feed en memoria; ttl <= 0 lo deshabilita.
func NewMemoryFeedCache(ttl time.Duration) FeedCache {
	if ttl <= 0 {
		return nil
	}
	return &memoryFeedCache{ttl: ttl}
}

func (c *memoryFeedCache) Get(_ context.Context) ([]domain.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.posts == nil || time.Now().UTC().After(c.expiresAt) {
		c.posts = nil
		return nil, false
	}
	return c.posts, true
}

func (c *memoryFeedCache) Set(_ context.Context, posts []domain.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = posts
	c.expiresAt = time.Now().UTC().Add(c.ttl)
}

func (c *memoryFeedCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = nil
}

type redisFeedCache struct {
	client redisKV
	ttl    time.Duration
	key    string
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisFeedCache crea un cache de feed respaldado en redis.
func NewRedisFeedCache(client *redis.Client, ttl time.Duration) FeedCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &redisFeedCache{
		client: client,
		ttl:    ttl,
		key:    "feed:posts",
	}
}

func (c *redisFeedCache) Get(ctx context.Context) ([]domain.Post, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, false
	}
	var posts []domain.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

func (c *redisFeedCache) Set(ctx context.Context, posts []domain.Post) {
	raw, err := json.Marshal(posts)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *redisFeedCache) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = c.client.Del(ctx, c.key).Err()
}
