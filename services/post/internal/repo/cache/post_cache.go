package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finsight/services/post/internal/entity"

	"github.com/redis/go-redis/v9"
)

const postListKey = "posts:all"

// ErrMiss is returned by Get when nothing is cached.
var ErrMiss = errors.New("post list not cached")

type PostListCache interface {
	Get(ctx context.Context) ([]*entity.Post, error)
	Set(ctx context.Context, posts []*entity.Post) error
	Invalidate(ctx context.Context) error
}

type postListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPostListCache returns a Redis-backed cache of the full listing.
// A non-positive ttl disables caching: Get always misses and Set is a no-op.
func NewPostListCache(client *redis.Client, ttl time.Duration) PostListCache {
	return &postListCache{client: client, ttl: ttl}
}

func (c *postListCache) Get(ctx context.Context) ([]*entity.Post, error) {
	if c.ttl <= 0 {
		return nil, ErrMiss
	}

	data, err := c.client.Get(ctx, postListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read post list cache: %w", err)
	}

	var posts []*entity.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode post list cache: %w", err)
	}
	return posts, nil
}

func (c *postListCache) Set(ctx context.Context, posts []*entity.Post) error {
	if c.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to encode post list: %w", err)
	}
	return c.client.Set(ctx, postListKey, data, c.ttl).Err()
}

func (c *postListCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, postListKey).Err()
}
