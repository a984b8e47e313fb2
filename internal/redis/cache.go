package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"afrigo/internal/domain"
)

// ConfigCache caches the reputation policy in Redis. The policy is read
// on every rating submission but changes only via admin action, so the
// cache is invalidated on update rather than expired aggressively.
type ConfigCache struct {
	client *redis.Client
}

// NewConfigCache creates a new ConfigCache.
func NewConfigCache(client *redis.Client) *ConfigCache {
	return &ConfigCache{client: client}
}

const (
	ratingConfigKey = "cache:rating_config"
	ratingConfigTTL = 5 * time.Minute
)

// GetRatingConfig retrieves the cached policy. Returns (nil, nil) on a
// cache miss.
func (s *ConfigCache) GetRatingConfig(ctx context.Context) (*domain.RatingConfig, error) {
	data, err := s.client.Get(ctx, ratingConfigKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cfg domain.RatingConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetRatingConfig stores the policy in cache.
func (s *ConfigCache) SetRatingConfig(ctx context.Context, cfg domain.RatingConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, ratingConfigKey, data, ratingConfigTTL).Err()
}

// InvalidateRatingConfig removes the cached policy.
func (s *ConfigCache) InvalidateRatingConfig(ctx context.Context) error {
	return s.client.Del(ctx, ratingConfigKey).Err()
}
