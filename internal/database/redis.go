package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
)

// NewRedisClient connects to Redis. It returns nil when Redis is not
// configured or unreachable; callers then fall back to in-process stores.
func NewRedisClient(cfg config.RedisConfig, logger *logrus.Logger) *redis.Client {
	if cfg.URL == "" {
		logger.Info("REDIS_URL not set, using in-memory drafts and rate limiting")
		return nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.WithError(err).Warn("Invalid REDIS_URL, Redis disabled")
		return nil
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, Redis disabled")
		_ = client.Close()
		return nil
	}

	logger.WithField("addr", opts.Addr).Info("Redis connection established")
	return client
}
