package postgres

import (
	"context"
	"database/sql"
	"errors"

	"afrigo/internal/domain"
)

// RatingRepository is a PostgreSQL implementation of repository.RatingRepository.
type RatingRepository struct {
	q Querier
}

// NewRatingRepository creates a new PostgreSQL rating repository.
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{q: db}
}

// NewRatingRepositoryWithTx creates a rating repository using a transaction.
func NewRatingRepositoryWithTx(tx *sql.Tx) *RatingRepository {
	return &RatingRepository{q: tx}
}

// Upsert inserts a rating or overwrites the existing one for the same
// (ride, rater type) pair.
func (r *RatingRepository) Upsert(ctx context.Context, rating *domain.RideRating) error {
	query := `
		INSERT INTO ride_ratings (id, ride_id, rater_id, rater_type, ratee_id, ratee_type, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (ride_id, rater_type)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = EXCLUDED.created_at
	`

	_, err := r.q.ExecContext(ctx, query,
		rating.ID,
		rating.RideID,
		rating.RaterID,
		rating.RaterType,
		rating.RateeID,
		rating.RateeType,
		rating.Rating,
		nullString(rating.Comment),
		rating.CreatedAt,
	)

	return err
}

// ListRecentByRatee retrieves the ratee's most recent ratings, newest first.
func (r *RatingRepository) ListRecentByRatee(ctx context.Context, rateeID string, rateeType domain.RaterType, limit int) ([]*domain.RideRating, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, ride_id, rater_id, rater_type, ratee_id, ratee_type, rating, comment, created_at
		 FROM ride_ratings WHERE ratee_id = $1 AND ratee_type = $2
		 ORDER BY created_at DESC LIMIT $3`,
		rateeID, rateeType, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*domain.RideRating
	for rows.Next() {
		var rating domain.RideRating
		var comment sql.NullString
		if err := rows.Scan(
			&rating.ID,
			&rating.RideID,
			&rating.RaterID,
			&rating.RaterType,
			&rating.RateeID,
			&rating.RateeType,
			&rating.Rating,
			&comment,
			&rating.CreatedAt,
		); err != nil {
			return nil, err
		}
		rating.Comment = comment.String
		ratings = append(ratings, &rating)
	}
	return ratings, rows.Err()
}

// CountByRatee returns the ratee's lifetime rating count.
func (r *RatingRepository) CountByRatee(ctx context.Context, rateeID string, rateeType domain.RaterType) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ride_ratings WHERE ratee_id = $1 AND ratee_type = $2`,
		rateeID, rateeType,
	).Scan(&count)
	return count, err
}

// RatingConfigRepository stores the singleton reputation policy row.
type RatingConfigRepository struct {
	q Querier
}

// NewRatingConfigRepository creates a new PostgreSQL rating config repository.
func NewRatingConfigRepository(db *sql.DB) *RatingConfigRepository {
	return &RatingConfigRepository{q: db}
}

// Get returns the active config, falling back to defaults when none
// has been stored.
func (r *RatingConfigRepository) Get(ctx context.Context) (domain.RatingConfig, error) {
	var cfg domain.RatingConfig
	err := r.q.QueryRowContext(ctx,
		`SELECT bad_rating_threshold, warning_threshold, red_zone_threshold, auto_suspend_threshold, evaluation_period
		 FROM rating_config LIMIT 1`,
	).Scan(
		&cfg.BadRatingThreshold,
		&cfg.WarningThreshold,
		&cfg.RedZoneThreshold,
		&cfg.AutoSuspendThreshold,
		&cfg.EvaluationPeriod,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultRatingConfig(), nil
		}
		return domain.RatingConfig{}, err
	}
	return cfg, nil
}

// Update replaces the active config, inserting the singleton row if needed.
func (r *RatingConfigRepository) Update(ctx context.Context, cfg domain.RatingConfig) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE rating_config
		 SET bad_rating_threshold = $1, warning_threshold = $2, red_zone_threshold = $3,
			 auto_suspend_threshold = $4, evaluation_period = $5`,
		cfg.BadRatingThreshold, cfg.WarningThreshold, cfg.RedZoneThreshold,
		cfg.AutoSuspendThreshold, cfg.EvaluationPeriod,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		_, err = r.q.ExecContext(ctx,
			`INSERT INTO rating_config (bad_rating_threshold, warning_threshold, red_zone_threshold, auto_suspend_threshold, evaluation_period)
			 VALUES ($1, $2, $3, $4, $5)`,
			cfg.BadRatingThreshold, cfg.WarningThreshold, cfg.RedZoneThreshold,
			cfg.AutoSuspendThreshold, cfg.EvaluationPeriod,
		)
	}

	return err
}
