package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/config"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/events"
)

// OpenEvents returns a Redis broker when REDIS_URL is set so several API
// instances share version events, and an in-process broker otherwise.
func OpenEvents(ctx context.Context, cfg *config.RedisConfig, log *zap.Logger) (events.Broker, func() error, error) {
	if cfg.URL == "" {
		log.Info("REDIS_URL not set, version events stay in-process")
		return events.NewLocalBroker(), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("connected to redis", zap.String("addr", opts.Addr))
	return events.NewRedisBroker(client, log), client.Close, nil
}
