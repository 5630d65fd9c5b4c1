package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Service interface {
	SaveStats(ctx context.Context, stats *models.Stats) error
	GetStats(ctx context.Context) (*models.Stats, error)
}

type cacheService struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

// NewCacheService returns a Redis backed cache, or a no-op cache when there
// is no client or the stats TTL is zero.
func NewCacheService(client *redis.Client, cfg *config.Configuration) Service {
	if client == nil || cfg.Cache.StatsTTLSeconds <= 0 {
		return noopService{}
	}
	return &cacheService{
		client: client,
		cfg:    &cfg.Cache,
	}
}

func (c *cacheService) SaveStats(ctx context.Context, stats *models.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal stats for cache")
		return models.ErrRedisSet
	}

	expiration := time.Duration(c.cfg.StatsTTLSeconds) * time.Second
	err = c.client.Set(ctx, c.cfg.StatsKey, data, expiration).Err()
	if err != nil {
		logrus.WithError(err).Error("Failed to cache stats")
		return models.ErrRedisSet
	}
	return nil
}

func (c *cacheService) GetStats(ctx context.Context) (*models.Stats, error) {
	data, err := c.client.Get(ctx, c.cfg.StatsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.Debug("Stats not found in cache")
			return nil, nil // Not an error, just not found
		}
		logrus.WithError(err).Error("Failed to get stats from cache")
		return nil, models.ErrRedisGet
	}

	var stats models.Stats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		logrus.WithError(err).Error("Failed to unmarshal stats from cache")
		return nil, models.ErrRedisGet
	}

	logrus.Debug("Stats retrieved from cache successfully")
	return &stats, nil
}

type noopService struct{}

func (noopService) SaveStats(context.Context, *models.Stats) error { return nil }

func (noopService) GetStats(context.Context) (*models.Stats, error) { return nil, nil }
