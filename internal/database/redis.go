package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Сколько раз повторять WATCH/MULTI, если ключ изменили конкурентно
const maxTxRetries = 16

// RedisStore - DocStore поверх Redis. Ключи хранятся как "<namespace>:<key>",
// Update использует оптимистичную блокировку WATCH/MULTI
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return b, nil
}

func (s *RedisStore) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	k := s.key(key)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		if err == redis.Nil {
			current = nil
		} else if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: too many concurrent writers", key)
}

func (s *RedisStore) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.key(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", prefix, err)
	}

	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", prefix, err)
	}
	nsLen := len(s.namespace) + 1
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // ключ удалили между SCAN и MGET
		}
		out[keys[i][nsLen:]] = []byte(str)
	}
	return out, nil
}
