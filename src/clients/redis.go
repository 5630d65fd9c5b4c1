package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Redis) (*RedisClient, error) {
	options, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	log.WithField("addr", options.Addr).Info("Connecting to Redis...")
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Error("Failed to connect to Redis")
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", models.ErrRedisConnection, err)
	}

	log.Infof("Connected to Redis at %s", options.Addr)
	return &RedisClient{Client: client}, nil
}

// redisOptions accepts either a redis:// URL or a bare host:port address.
func redisOptions(cfg *config.Redis) (*redis.Options, error) {
	if strings.HasPrefix(cfg.Url, "redis://") || strings.HasPrefix(cfg.Url, "rediss://") {
		options, err := redis.ParseURL(cfg.Url)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		if cfg.Password != "" {
			options.Password = cfg.Password
		}
		if cfg.Db != 0 {
			options.DB = cfg.Db
		}
		return options, nil
	}

	return &redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.Db,
	}, nil
}

func (r *RedisClient) Close() error {
	if err := r.Client.Close(); err != nil {
		log.WithError(err).Error("Failed to close Redis connection")
		return err
	}
	log.Info("Redis connection closed")
	return nil
}
