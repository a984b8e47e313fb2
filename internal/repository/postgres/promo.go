package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// PromoRepository is a PostgreSQL implementation of repository.PromoRepository.
type PromoRepository struct {
	q Querier
}

// NewPromoRepository creates a new PostgreSQL promo repository.
func NewPromoRepository(db *sql.DB) *PromoRepository {
	return &PromoRepository{q: db}
}

// NewPromoRepositoryWithTx creates a promo repository using a transaction.
func NewPromoRepositoryWithTx(tx *sql.Tx) *PromoRepository {
	return &PromoRepository{q: tx}
}

const promoColumns = `id, code, description, discount_type, discount_value, max_uses,
	max_uses_per_user, min_ride_amount, used_count, is_active, starts_at, expires_at,
	service_types, created_at`

// Create persists a new promo code.
func (r *PromoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	query := `
		INSERT INTO promo_codes (` + promoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	serviceTypes := make([]string, len(promo.ServiceTypes))
	for i, st := range promo.ServiceTypes {
		serviceTypes[i] = string(st)
	}

	_, err := r.q.ExecContext(ctx, query,
		promo.ID,
		promo.Code,
		nullString(promo.Description),
		promo.DiscountType,
		promo.DiscountValue,
		promo.MaxUses,
		promo.MaxUsesPerUser,
		promo.MinRideAmount,
		promo.UsedCount,
		promo.IsActive,
		promo.StartsAt,
		nullTime(promo.ExpiresAt),
		pq.Array(serviceTypes),
		promo.CreatedAt,
	)

	return err
}

// GetByCode retrieves a promo code by its code.
func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, code))
}

// GetByCodeForUpdate retrieves a promo code with a row lock so
// concurrent applies serialize.
func (r *PromoRepository) GetByCodeForUpdate(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, code))
}

// GetByID retrieves a promo code by ID.
func (r *PromoRepository) GetByID(ctx context.Context, id string) (*domain.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// List retrieves promo codes, newest first.
func (r *PromoRepository) List(ctx context.Context, limit int) ([]*domain.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes ORDER BY created_at DESC LIMIT $1`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []*domain.PromoCode
	for rows.Next() {
		promo, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, promo)
	}
	return promos, rows.Err()
}

// SetActive toggles a code's active flag.
func (r *PromoRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.q.ExecContext(ctx, `UPDATE promo_codes SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// IncrementUsedCount bumps the global usage counter.
func (r *PromoRepository) IncrementUsedCount(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE promo_codes SET used_count = used_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// CountUsagesByUser returns how many times a user has applied a code.
func (r *PromoRepository) CountUsagesByUser(ctx context.Context, promoID, userID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM promo_code_usages WHERE promo_code_id = $1 AND user_id = $2`,
		promoID, userID,
	).Scan(&count)
	return count, err
}

// CreateUsage records one application of a code.
func (r *PromoRepository) CreateUsage(ctx context.Context, usage *domain.PromoCodeUsage) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO promo_code_usages (id, promo_code_id, user_id, ride_id, discount_applied, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		usage.ID, usage.PromoCodeID, usage.UserID, nullString(usage.RideID), usage.DiscountApplied, usage.CreatedAt,
	)
	return err
}

func (r *PromoRepository) scanOne(row rowScanner) (*domain.PromoCode, error) {
	var promo domain.PromoCode
	var description sql.NullString
	var expiresAt sql.NullTime
	var serviceTypes []string

	err := row.Scan(
		&promo.ID,
		&promo.Code,
		&description,
		&promo.DiscountType,
		&promo.DiscountValue,
		&promo.MaxUses,
		&promo.MaxUsesPerUser,
		&promo.MinRideAmount,
		&promo.UsedCount,
		&promo.IsActive,
		&promo.StartsAt,
		&expiresAt,
		pq.Array(&serviceTypes),
		&promo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	promo.Description = description.String
	if expiresAt.Valid {
		promo.ExpiresAt = expiresAt.Time
	}
	for _, st := range serviceTypes {
		promo.ServiceTypes = append(promo.ServiceTypes, domain.ServiceType(st))
	}

	return &promo, nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
