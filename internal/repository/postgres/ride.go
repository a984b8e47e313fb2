package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, client_id, driver_id, origin_lat, origin_lng, origin_address,
	dest_lat, dest_lng, dest_address, service_type, vip_tier, status,
	estimated_price, final_price, payment_method, payment_status,
	scheduled_time, passenger_name, passenger_phone, cancel_reason,
	created_at, started_at, completed_at, cancelled_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.ClientID,
		nullString(ride.DriverID),
		ride.OriginLat,
		ride.OriginLng,
		ride.OriginAddress,
		ride.DestLat,
		ride.DestLng,
		ride.DestAddress,
		ride.ServiceType,
		nullString(ride.VipTier),
		ride.Status,
		ride.EstimatedPrice,
		nullInt64(ride.FinalPrice),
		ride.PaymentMethod,
		ride.PaymentStatus,
		nullTime(ride.ScheduledTime),
		nullString(ride.PassengerName),
		nullString(ride.PassengerPhone),
		nullString(ride.CancelReason),
		ride.CreatedAt,
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// ListByStatus retrieves rides in the given status, newest first.
func (r *RideRepository) ListByStatus(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.q.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// ListByClient retrieves a client's rides, newest first.
func (r *RideRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.q.QueryContext(ctx, query, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// Accept atomically assigns a driver to an open ride. The status guard
// in the WHERE clause is the check-and-set: of two concurrent callers
// exactly one update matches a row.
func (r *RideRepository) Accept(ctx context.Context, rideID, driverID string) error {
	query := `
		UPDATE rides
		SET driver_id = $1, status = $2
		WHERE id = $3 AND status IN ($4, $5)
	`

	result, err := r.q.ExecContext(ctx, query,
		driverID,
		domain.RideStatusAccepted,
		rideID,
		domain.RideStatusRequested,
		domain.RideStatusScheduled,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a taken ride from a missing one.
		var exists bool
		if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, rideID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	return nil
}

// Transition persists a ride's new state. Like Accept, the status
// guard in the WHERE clause is the check-and-set: a writer whose read
// went stale matches no row and gets ErrConflict instead of clobbering
// a concurrent transition.
func (r *RideRepository) Transition(ctx context.Context, ride *domain.Ride, from domain.RideStatus) error {
	query := `
		UPDATE rides
		SET driver_id = $1, status = $2, final_price = $3, payment_status = $4,
			started_at = $5, completed_at = $6, cancelled_at = $7, cancel_reason = $8
		WHERE id = $9 AND status = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(ride.DriverID),
		ride.Status,
		nullInt64(ride.FinalPrice),
		ride.PaymentStatus,
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		nullString(ride.CancelReason),
		ride.ID,
		from,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a stale read from a missing ride.
		var exists bool
		if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, ride.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	return nil
}

// SetPaymentStatus updates only the payment status of a ride.
func (r *RideRepository) SetPaymentStatus(ctx context.Context, rideID string, status domain.PaymentStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE rides SET payment_status = $1 WHERE id = $2`, status, rideID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CountCompletedByClient returns the client's lifetime completed ride count.
func (r *RideRepository) CountCompletedByClient(ctx context.Context, clientID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rides WHERE client_id = $1 AND status = $2`,
		clientID, domain.RideStatusCompleted,
	).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID, vipTier, passengerName, passengerPhone, cancelReason sql.NullString
	var finalPrice sql.NullInt64
	var scheduledTime, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.ClientID,
		&driverID,
		&ride.OriginLat,
		&ride.OriginLng,
		&ride.OriginAddress,
		&ride.DestLat,
		&ride.DestLng,
		&ride.DestAddress,
		&ride.ServiceType,
		&vipTier,
		&ride.Status,
		&ride.EstimatedPrice,
		&finalPrice,
		&ride.PaymentMethod,
		&ride.PaymentStatus,
		&scheduledTime,
		&passengerName,
		&passengerPhone,
		&cancelReason,
		&ride.CreatedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	ride.DriverID = driverID.String
	ride.VipTier = vipTier.String
	ride.PassengerName = passengerName.String
	ride.PassengerPhone = passengerPhone.String
	ride.CancelReason = cancelReason.String
	ride.FinalPrice = finalPrice.Int64
	if scheduledTime.Valid {
		ride.ScheduledTime = scheduledTime.Time
	}
	if startedAt.Valid {
		ride.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		ride.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		ride.CancelledAt = cancelledAt.Time
	}

	return &ride, nil
}

func collectRides(rows *sql.Rows) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
