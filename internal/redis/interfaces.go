package redis

import (
	"context"
	"time"

	"afrigo/internal/domain"
)

// LockStoreInterface defines the locking contract. This interface
// allows for testing with mock implementations.
type LockStoreInterface interface {
	AcquireAcceptLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseAcceptLock(ctx context.Context, rideID string) error
}

// ConfigCacheInterface defines the config cache contract.
type ConfigCacheInterface interface {
	GetRatingConfig(ctx context.Context) (*domain.RatingConfig, error)
	SetRatingConfig(ctx context.Context, cfg domain.RatingConfig) error
	InvalidateRatingConfig(ctx context.Context) error
}

// Ensure implementations satisfy the interfaces.
var (
	_ LockStoreInterface   = (*LockStore)(nil)
	_ ConfigCacheInterface = (*ConfigCache)(nil)
)
