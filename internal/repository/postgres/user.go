package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, phone, first_name, last_name, role, is_active, referral_code, referred_by,
	average_rating, total_ratings, consecutive_bad_ratings, reputation_status,
	suspended_at, suspend_reason, created_at`

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByReferralCode retrieves the user owning a referral code.
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, code))
}

// SetReferralCode assigns a generated referral code to a user.
func (r *UserRepository) SetReferralCode(ctx context.Context, userID, code string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE users SET referral_code = $1 WHERE id = $2`, code, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetReferredBy records the user's referrer.
func (r *UserRepository) SetReferredBy(ctx context.Context, userID, referrerID string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE users SET referred_by = $1 WHERE id = $2`, referrerID, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateReputation stores recomputed reputation fields.
func (r *UserRepository) UpdateReputation(ctx context.Context, userID string, upd repository.ReputationUpdate) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE users
		 SET average_rating = $1, total_ratings = $2, consecutive_bad_ratings = $3, reputation_status = $4
		 WHERE id = $5`,
		upd.AverageRating, upd.TotalRatings, upd.ConsecutiveBadRatings, upd.Status, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Suspend deactivates the account recording when and why.
func (r *UserRepository) Suspend(ctx context.Context, userID, reason string, at time.Time) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, suspended_at = $1, suspend_reason = $2 WHERE id = $3`,
		at, reason, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ResetReputation clears the streak, sets status GOOD and optionally
// reactivates the account.
func (r *UserRepository) ResetReputation(ctx context.Context, userID string, reactivate bool) error {
	query := `UPDATE users SET consecutive_bad_ratings = 0, reputation_status = $1 WHERE id = $2`
	if reactivate {
		query = `UPDATE users
			SET consecutive_bad_ratings = 0, reputation_status = $1,
				is_active = TRUE, suspended_at = NULL, suspend_reason = NULL
			WHERE id = $2`
	}

	result, err := r.q.ExecContext(ctx, query, domain.ReputationGood, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ListByReputation retrieves users in any of the given statuses, worst
// streak first.
func (r *UserRepository) ListByReputation(ctx context.Context, statuses []domain.ReputationStatus) ([]*domain.User, error) {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reputation_status = ANY($1)
		 ORDER BY consecutive_bad_ratings DESC`,
		pq.Array(strs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) scanOne(row rowScanner) (*domain.User, error) {
	var user domain.User
	var firstName, lastName, referralCode, referredBy, suspendReason sql.NullString
	var suspendedAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Phone,
		&firstName,
		&lastName,
		&user.Role,
		&user.IsActive,
		&referralCode,
		&referredBy,
		&user.AverageRating,
		&user.TotalRatings,
		&user.ConsecutiveBadRatings,
		&user.ReputationStatus,
		&suspendedAt,
		&suspendReason,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.ReferralCode = referralCode.String
	user.ReferredBy = referredBy.String
	user.SuspendReason = suspendReason.String
	if suspendedAt.Valid {
		user.SuspendedAt = suspendedAt.Time
	}

	return &user, nil
}

// DriverProfileRepository is a PostgreSQL implementation of
// repository.DriverProfileRepository.
type DriverProfileRepository struct {
	q Querier
}

// NewDriverProfileRepository creates a new PostgreSQL driver profile repository.
func NewDriverProfileRepository(db *sql.DB) *DriverProfileRepository {
	return &DriverProfileRepository{q: db}
}

// NewDriverProfileRepositoryWithTx creates a driver profile repository using a transaction.
func NewDriverProfileRepositoryWithTx(tx *sql.Tx) *DriverProfileRepository {
	return &DriverProfileRepository{q: tx}
}

const driverProfileColumns = `id, user_id, is_approved, is_available,
	average_rating, total_ratings, consecutive_bad_ratings, reputation_status`

// GetByUserID retrieves the profile for a user.
func (r *DriverProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.DriverProfile, error) {
	query := `SELECT ` + driverProfileColumns + ` FROM driver_profiles WHERE user_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, userID))
}

// GetByID retrieves a profile by its own ID.
func (r *DriverProfileRepository) GetByID(ctx context.Context, id string) (*domain.DriverProfile, error) {
	query := `SELECT ` + driverProfileColumns + ` FROM driver_profiles WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// UpdateReputation stores recomputed reputation fields.
func (r *DriverProfileRepository) UpdateReputation(ctx context.Context, profileID string, upd repository.ReputationUpdate) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE driver_profiles
		 SET average_rating = $1, total_ratings = $2, consecutive_bad_ratings = $3, reputation_status = $4
		 WHERE id = $5`,
		upd.AverageRating, upd.TotalRatings, upd.ConsecutiveBadRatings, upd.Status, profileID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Suspend revokes approval and availability.
func (r *DriverProfileRepository) Suspend(ctx context.Context, profileID string) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE driver_profiles SET is_approved = FALSE, is_available = FALSE WHERE id = $1`,
		profileID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ResetReputation clears the streak, sets status GOOD and optionally
// restores approval.
func (r *DriverProfileRepository) ResetReputation(ctx context.Context, profileID string, reapprove bool) error {
	query := `UPDATE driver_profiles SET consecutive_bad_ratings = 0, reputation_status = $1 WHERE id = $2`
	if reapprove {
		query = `UPDATE driver_profiles
			SET consecutive_bad_ratings = 0, reputation_status = $1, is_approved = TRUE, is_available = TRUE
			WHERE id = $2`
	}

	result, err := r.q.ExecContext(ctx, query, domain.ReputationGood, profileID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *DriverProfileRepository) scanOne(row rowScanner) (*domain.DriverProfile, error) {
	var profile domain.DriverProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.IsApproved,
		&profile.IsAvailable,
		&profile.AverageRating,
		&profile.TotalRatings,
		&profile.ConsecutiveBadRatings,
		&profile.ReputationStatus,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}
