package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// ReferralRepository is a PostgreSQL implementation of repository.ReferralRepository.
type ReferralRepository struct {
	q Querier
}

// NewReferralRepository creates a new PostgreSQL referral repository.
func NewReferralRepository(db *sql.DB) *ReferralRepository {
	return &ReferralRepository{q: db}
}

// NewReferralRepositoryWithTx creates a referral repository using a transaction.
func NewReferralRepositoryWithTx(tx *sql.Tx) *ReferralRepository {
	return &ReferralRepository{q: tx}
}

const referralColumns = `id, referrer_id, referee_id, status, referrer_bonus, referee_bonus, created_at, completed_at`

// Create persists a new referral. The unique index on referee_id
// enforces at most one referral per referee; a violation surfaces as
// ErrConflict.
func (r *ReferralRepository) Create(ctx context.Context, ref *domain.Referral) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO referrals (`+referralColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ref.ID, ref.ReferrerID, ref.RefereeID, ref.Status,
		ref.ReferrerBonus, ref.RefereeBonus, ref.CreatedAt, nullTime(ref.CompletedAt),
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByReferee retrieves the referral naming the user as referee.
func (r *ReferralRepository) GetByReferee(ctx context.Context, refereeID string) (*domain.Referral, error) {
	return r.getByReferee(ctx, refereeID, false)
}

// GetByRefereeForUpdate retrieves the referral with a row lock so the
// bonus payout happens at most once.
func (r *ReferralRepository) GetByRefereeForUpdate(ctx context.Context, refereeID string) (*domain.Referral, error) {
	return r.getByReferee(ctx, refereeID, true)
}

func (r *ReferralRepository) getByReferee(ctx context.Context, refereeID string, forUpdate bool) (*domain.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE referee_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	ref, err := scanReferral(r.q.QueryRowContext(ctx, query, refereeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ref, nil
}

// ListByReferrer retrieves the referrals a user originated.
func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID string) ([]*domain.Referral, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+referralColumns+` FROM referrals WHERE referrer_id = $1 ORDER BY created_at DESC`,
		referrerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*domain.Referral
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// MarkCompleted flips a PENDING referral to COMPLETED. The status guard
// makes the payout transition happen at most once.
func (r *ReferralRepository) MarkCompleted(ctx context.Context, id string, referrerBonus, refereeBonus int64, at time.Time) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE referrals
		 SET status = $1, referrer_bonus = $2, referee_bonus = $3, completed_at = $4
		 WHERE id = $5 AND status = $6`,
		domain.ReferralStatusCompleted, referrerBonus, refereeBonus, at, id, domain.ReferralStatusPending,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrConflict
	}

	return nil
}

func scanReferral(row rowScanner) (*domain.Referral, error) {
	var ref domain.Referral
	var completedAt sql.NullTime

	err := row.Scan(
		&ref.ID,
		&ref.ReferrerID,
		&ref.RefereeID,
		&ref.Status,
		&ref.ReferrerBonus,
		&ref.RefereeBonus,
		&ref.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		ref.CompletedAt = completedAt.Time
	}

	return &ref, nil
}
