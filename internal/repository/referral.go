package repository

import (
	"context"
	"time"

	"afrigo/internal/domain"
)

// ReferralRepository defines the persistence operations for referrals.
// RefereeID is unique: a user can be referred at most once.
type ReferralRepository interface {
	// Create persists a new referral in PENDING state.
	Create(ctx context.Context, ref *domain.Referral) error

	// GetByReferee retrieves the referral naming the user as referee.
	GetByReferee(ctx context.Context, refereeID string) (*domain.Referral, error)

	// GetByRefereeForUpdate retrieves the referral and, inside a
	// transaction, locks the row so the bonus pays out at most once.
	GetByRefereeForUpdate(ctx context.Context, refereeID string) (*domain.Referral, error)

	// ListByReferrer retrieves the referrals a user originated.
	ListByReferrer(ctx context.Context, referrerID string) ([]*domain.Referral, error)

	// MarkCompleted flips a PENDING referral to COMPLETED recording the
	// bonuses paid.
	MarkCompleted(ctx context.Context, id string, referrerBonus, refereeBonus int64, at time.Time) error
}
