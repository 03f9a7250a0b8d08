package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/bbsplus/config"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedis returns the shared Redis client, or nil when Redis is disabled.
// Callers treat nil as a cache miss.
func GetRedis() *redis.Client {
	cfg := config.Get()
	if cfg.RedisDisabled {
		return nil
	}
	redisOnce.Do(func() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			Sugar.Warnf("redis ping failed, continuing without a warm connection: %v", err)
		}
	})
	return redisClient
}

// CloseRedis releases the client on shutdown.
func CloseRedis() {
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
