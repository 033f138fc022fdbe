package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func revokedKey(sessionID string) string {
	return fmt.Sprintf("session_revoked:%s", sessionID)
}

func (s *RedisStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	return s.client.Set(ctx, revokedKey(sessionID), "1", ttl).Err()
}

func (s *RedisStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
