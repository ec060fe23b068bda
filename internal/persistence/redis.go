package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/config"
)

const redisDialTimeout = 3 * time.Second

// Redis holds the client behind password reset tokens and the readiness check.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client and pings the server once. The service starts even when
// Redis is down; forgot-password calls fail and /health/ready reports it until it returns.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, reset tokens unavailable", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("redis ready", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}

	return &Redis{Client: client}
}

// Close releases the connection pool. Safe on a nil receiver.
func (r *Redis) Close() {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Close()
}

// Ping reports whether Redis answers, for /health/ready.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
