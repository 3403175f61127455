// Package cache provides the redis client used for sessions and rate limiting.
// It supports both embedded Redis (miniredis) and an external Redis server.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vidfetch/vidfetch/logger"
)

var (
	client     *redis.Client
	miniRedis  *miniredis.Miniredis
	isEmbedded = true
)

var errNotInitialized = errors.New("redis client not initialized")

// InitRedis initializes the Redis client. If redisAddr is empty, starts embedded Redis.
func InitRedis(redisAddr string) error {
	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("failed to start embedded Redis: %w", err)
		}
		miniRedis = mr
		client = redis.NewClient(&redis.Options{
			Addr: mr.Addr(),
		})
		isEmbedded = true
		logger.Info("Embedded Redis started on", mr.Addr())
		return nil
	}

	opts, err := redis.ParseURL(redisAddr)
	if err != nil {
		// plain host:port
		opts = &redis.Options{Addr: redisAddr}
	}
	client = redis.NewClient(opts)
	isEmbedded = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", redisAddr, err)
	}
	logger.Info("Connected to external Redis at", opts.Addr)
	return nil
}

// GetClient returns the Redis client instance.
func GetClient() *redis.Client {
	return client
}

func IsEmbedded() bool {
	return isEmbedded
}

// Close closes the Redis connection and stops embedded Redis if running.
func Close() error {
	var err error
	if client != nil {
		err = client.Close()
		client = nil
	}
	if miniRedis != nil {
		miniRedis.Close()
		miniRedis = nil
	}
	return err
}

// Incr bumps a fixed-window counter and returns the new value. The window starts
// with the first hit.
func Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if client == nil {
		return 0, errNotInitialized
	}
	n, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// TTL returns the remaining lifetime of key.
func TTL(ctx context.Context, key string) (time.Duration, error) {
	if client == nil {
		return 0, errNotInitialized
	}
	return client.TTL(ctx, key).Result()
}
