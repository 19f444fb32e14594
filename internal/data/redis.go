package data

import (
	"github.com/go-redis/redis/v8"
	"github.com/roguepikachu/roster/internal/config"
)

// NewRedisClient creates a Redis client for cfg. Connections are made lazily.
func NewRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
}
