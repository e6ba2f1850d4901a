package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/resqed/resqed-bot/internal/storage"
)

const keyPrefix = "resqed"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// KVStore keeps learner blobs as Redis strings.
type KVStore struct {
	client *goredis.Client
}

// NewClient creates a Redis client and checks the connection.
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewKVStore creates a KVStore on top of the client.
func NewKVStore(client *goredis.Client) *KVStore {
	return &KVStore{client: client}
}

func redisKey(learnerID int64, key string) string {
	return keyPrefix + ":" + strconv.FormatInt(learnerID, 10) + ":" + key
}

// Get retrieves the value stored under key.
func (s *KVStore) Get(ctx context.Context, learnerID int64, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, redisKey(learnerID, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key without expiration.
func (s *KVStore) Set(ctx context.Context, learnerID int64, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKey(learnerID, key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes all keys with a single DEL command.
func (s *KVStore) Delete(ctx context.Context, learnerID int64, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, redisKey(learnerID, key))
	}

	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}
