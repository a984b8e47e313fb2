package repository

import (
	"context"

	"afrigo/internal/domain"
)

// RatingRepository defines the persistence operations for ride ratings.
type RatingRepository interface {
	// Upsert inserts a rating or overwrites the existing one for the
	// same (ride, rater type) pair.
	Upsert(ctx context.Context, rating *domain.RideRating) error

	// ListRecentByRatee retrieves the ratee's most recent ratings,
	// newest first, up to limit.
	ListRecentByRatee(ctx context.Context, rateeID string, rateeType domain.RaterType, limit int) ([]*domain.RideRating, error)

	// CountByRatee returns the ratee's lifetime rating count.
	CountByRatee(ctx context.Context, rateeID string, rateeType domain.RaterType) (int, error)
}

// RatingConfigRepository stores the singleton reputation policy.
type RatingConfigRepository interface {
	// Get returns the active config, falling back to defaults when none
	// has been stored yet.
	Get(ctx context.Context) (domain.RatingConfig, error)

	// Update replaces the active config.
	Update(ctx context.Context, cfg domain.RatingConfig) error
}
