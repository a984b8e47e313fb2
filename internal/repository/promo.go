package repository

import (
	"context"

	"afrigo/internal/domain"
)

// PromoRepository defines the persistence operations for promo codes
// and their usages.
type PromoRepository interface {
	// Create persists a new promo code.
	Create(ctx context.Context, promo *domain.PromoCode) error

	// GetByCode retrieves a promo code by its (upper-case) code.
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)

	// GetByCodeForUpdate retrieves a promo code and, inside a
	// transaction, locks the row so concurrent applies serialize.
	GetByCodeForUpdate(ctx context.Context, code string) (*domain.PromoCode, error)

	// GetByID retrieves a promo code by ID.
	GetByID(ctx context.Context, id string) (*domain.PromoCode, error)

	// List retrieves promo codes, newest first.
	List(ctx context.Context, limit int) ([]*domain.PromoCode, error)

	// SetActive toggles a code's active flag.
	SetActive(ctx context.Context, id string, active bool) error

	// IncrementUsedCount bumps the global usage counter.
	IncrementUsedCount(ctx context.Context, id string) error

	// CountUsagesByUser returns how many times a user has applied a code.
	CountUsagesByUser(ctx context.Context, promoID, userID string) (int, error)

	// CreateUsage records one application of a code.
	CreateUsage(ctx context.Context, usage *domain.PromoCodeUsage) error
}
