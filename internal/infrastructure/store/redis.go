package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"propradar/internal/config"
	"propradar/pkg/logger"
)

// casRetries bounds how often an optimistic update is retried before the
// caller sees ErrConflict.
const casRetries = 5

// Redis is the Store backed by a Redis server. Every key is namespaced
// with the configured prefix so the engine can share an instance.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*Redis, error) {
	log = log.WithComponent("redis-store")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis successfully")

	return &Redis{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    log,
	}, nil
}

// Client returns the underlying Redis client (used by the rate limiter).
func (s *Redis) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *Redis) Close() error {
	s.logger.Info().Msg("closing Redis connection")
	return s.client.Close()
}

// key prepends the namespace prefix to a key.
func (s *Redis) key(k string) string {
	return s.keyPrefix + k
}

func (s *Redis) Get(ctx context.Context, key string, dest any) error {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *Redis) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return s.client.Set(ctx, s.key(key), data, 0).Err()
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.key(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.keyPrefix))
	}
	return keys, iter.Err()
}

// Update implements optimistic concurrency with WATCH/MULTI: the key is
// watched, the closure applied, and the write committed only if no other
// writer touched the key in between.
func (s *Redis) Update(ctx context.Context, key string, apply func(current []byte) ([]byte, error)) error {
	prefixed := s.key(key)

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, prefixed).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := apply(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, prefixed, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < casRetries; i++ {
		err := s.client.Watch(ctx, txn, prefixed)
		if errors.Is(err, redis.TxFailedErr) {
			continue // lost the race, retry
		}
		return err
	}
	return ErrConflict
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Redis) Name() string { return "redis" }
