package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the cache port with a shared redis instance.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to redis and verifies the connection with a
// ping before returning.
func NewRedisStore(addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Get(key string) (string, bool) {
	val, err := s.rdb.Get(context.Background(), key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE] redis get %s failed: %v", key, err)
		}
		return "", false
	}
	return val, true
}

func (s *RedisStore) Set(key string, value string, ttl time.Duration) {
	if err := s.rdb.Set(context.Background(), key, value, ttl).Err(); err != nil {
		log.Printf("[CACHE] redis set %s failed: %v", key, err)
	}
}

func (s *RedisStore) Delete(keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(context.Background(), keys...).Err(); err != nil {
		log.Printf("[CACHE] redis delete failed: %v", err)
	}
}
