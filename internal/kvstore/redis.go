package kvstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis client. Session entries carry
// a TTL, durable entries do not.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "kv"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) redisKey(scope Scope, key string) string {
	if scope == ScopeSession {
		return s.prefix + ":session:" + key
	}
	return s.prefix + ":durable:" + key
}

func (s *RedisStore) Get(ctx context.Context, scope Scope, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.redisKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *RedisStore) Set(ctx context.Context, scope Scope, key, value string) error {
	if scope == ScopeSession {
		return s.rdb.Set(ctx, s.redisKey(scope, key), value, SessionTTL).Err()
	}
	return s.rdb.Set(ctx, s.redisKey(scope, key), value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, scope Scope, key string) error {
	return s.rdb.Del(ctx, s.redisKey(scope, key)).Err()
}
