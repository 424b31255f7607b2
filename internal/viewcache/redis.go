package viewcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/resilience"
	"github.com/AlibekovAA/cloudrun-demo/internal/observability/metrics"
)

const (
	backendRedis = "redis"
	keyPrefix    = "viewcache:"
)

// RedisClient is the subset of *redis.Client the store uses.
type RedisClient interface {
	Get(key string) *redis.StringCmd
	Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(keys ...string) *redis.IntCmd
}

type RedisStore struct {
	client RedisClient
	cb     *resilience.CircuitBreaker
}

func NewRedisStore(client RedisClient, cb *resilience.CircuitBreaker) *RedisStore {
	return &RedisStore{client: client, cb: cb}
}

func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.cb.Call(ctx, func(context.Context) error {
		b, err := s.client.Get(keyPrefix + key).Bytes()
		if err != nil {
			return err
		}
		value = b
		return nil
	})
	if err != nil {
		if IsMiss(err) {
			metrics.ViewCacheLookupsTotal.WithLabelValues(backendRedis, "miss").Inc()
			return nil, false, nil
		}
		metrics.ViewCacheLookupsTotal.WithLabelValues(backendRedis, "error").Inc()
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	metrics.ViewCacheLookupsTotal.WithLabelValues(backendRedis, "hit").Inc()
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	err := s.cb.Call(ctx, func(context.Context) error {
		return s.client.Set(keyPrefix+key, value, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := s.cb.Call(ctx, func(context.Context) error {
		return s.client.Del(keyPrefix + key).Err()
	})
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Connect opens a client and pings it once.
func Connect(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if _, err := client.Ping().Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
