package repository

import (
	"context"
	"time"

	"afrigo/internal/domain"
)

// ReputationUpdate carries the recomputed reputation fields for an
// account.
type ReputationUpdate struct {
	AverageRating         float64
	TotalRatings          int
	ConsecutiveBadRatings int
	Status                domain.ReputationStatus
}

// UserRepository defines the persistence operations for user accounts.
// Account creation belongs to the external auth service; the core only
// reads accounts and maintains their derived state.
type UserRepository interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByReferralCode retrieves the user owning a referral code.
	GetByReferralCode(ctx context.Context, code string) (*domain.User, error)

	// SetReferralCode assigns a generated referral code to a user.
	SetReferralCode(ctx context.Context, userID, code string) error

	// SetReferredBy records the user's referrer.
	SetReferredBy(ctx context.Context, userID, referrerID string) error

	// UpdateReputation stores recomputed reputation fields.
	UpdateReputation(ctx context.Context, userID string, upd ReputationUpdate) error

	// Suspend deactivates the account recording when and why.
	Suspend(ctx context.Context, userID, reason string, at time.Time) error

	// ResetReputation clears the bad-rating streak, sets status GOOD
	// and optionally reactivates the account.
	ResetReputation(ctx context.Context, userID string, reactivate bool) error

	// ListByReputation retrieves users in any of the given statuses,
	// worst streak first.
	ListByReputation(ctx context.Context, statuses []domain.ReputationStatus) ([]*domain.User, error)
}

// DriverProfileRepository defines the persistence operations for
// driver profiles.
type DriverProfileRepository interface {
	// GetByUserID retrieves the profile for a user.
	GetByUserID(ctx context.Context, userID string) (*domain.DriverProfile, error)

	// GetByID retrieves a profile by its own ID.
	GetByID(ctx context.Context, id string) (*domain.DriverProfile, error)

	// UpdateReputation stores recomputed reputation fields.
	UpdateReputation(ctx context.Context, profileID string, upd ReputationUpdate) error

	// Suspend revokes approval and availability.
	Suspend(ctx context.Context, profileID string) error

	// ResetReputation clears the streak, sets status GOOD and
	// optionally restores approval.
	ResetReputation(ctx context.Context, profileID string, reapprove bool) error
}
