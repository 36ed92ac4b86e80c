package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" mapstructure:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" mapstructure:"password" yaml:"password,omitempty"`
	DB       int    `json:"db" mapstructure:"db" yaml:"db"`
	// Prefix is prepended to every key. Defaults to "dendrite-echo:".
	Prefix string `json:"prefix" mapstructure:"prefix" yaml:"prefix"`
}

// Redis stores values in Redis under a key prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and checks the connection.
func NewRedis(ctx context.Context, config RedisConfig) (*Redis, error) {
	prefix := config.Prefix
	if prefix == "" {
		prefix = constants.DefaultRedisPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  constants.DefaultStorageTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.DefaultStorageTimeout)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Redis{client: client, prefix: prefix}, nil
}

// GetItem implements Storage.
func (r *Redis) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("getting %s from Redis: %w", key, err)
	}

	return value, true, nil
}

// SetItem implements Storage.
func (r *Redis) SetItem(ctx context.Context, key, value string) error {
	err := r.client.Set(ctx, r.prefix+key, value, 0).Err()
	if err != nil {
		return fmt.Errorf("setting %s in Redis: %w", key, err)
	}

	return nil
}

// RemoveItem implements Storage.
func (r *Redis) RemoveItem(ctx context.Context, key string) error {
	err := r.client.Del(ctx, r.prefix+key).Err()
	if err != nil {
		return fmt.Errorf("removing %s from Redis: %w", key, err)
	}

	return nil
}

// Close implements Storage.
func (r *Redis) Close() error {
	return r.client.Close()
}
