package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireAcceptLock attempts to take the short-lived acceptance lock
// for a ride. It is a fast-path gate in front of the database
// check-and-set: the loser of a race fails here without touching the
// database. Returns true if the lock was acquired.
func (s *LockStore) AcquireAcceptLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:ride:accept:%s", rideID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseAcceptLock releases the acceptance lock for a ride.
func (s *LockStore) ReleaseAcceptLock(ctx context.Context, rideID string) error {
	key := fmt.Sprintf("lock:ride:accept:%s", rideID)

	return s.client.Del(ctx, key).Err()
}
