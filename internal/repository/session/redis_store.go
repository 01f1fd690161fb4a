package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const oauthStatePrefix = "oauth_state:"

type RedisStateStore struct {
	rdb *redis.Client
}

func NewRedisStateStore(rdb *redis.Client) StateStore {
	return &RedisStateStore{rdb: rdb}
}

func (s *RedisStateStore) SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	return s.rdb.Set(ctx, oauthStatePrefix+state, "1", ttl).Err()
}

func (s *RedisStateStore) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	deleted, err := s.rdb.Del(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
