package repository

import (
	"context"

	"afrigo/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// ListByStatus retrieves rides in the given status, newest first.
	ListByStatus(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error)

	// ListByClient retrieves a client's rides, newest first.
	ListByClient(ctx context.Context, clientID string, limit int) ([]*domain.Ride, error)

	// Accept atomically assigns a driver to a ride that is still open
	// (REQUESTED or SCHEDULED). Returns ErrConflict if the ride was
	// already taken or is past acceptance, ErrNotFound if it does not
	// exist. Exactly one of two concurrent callers succeeds.
	Accept(ctx context.Context, rideID, driverID string) error

	// Transition persists a ride's new state only while the stored
	// status still matches the one the caller read. Returns ErrConflict
	// when another writer moved the ride first, so of two concurrent
	// callers exactly one lands its update.
	Transition(ctx context.Context, ride *domain.Ride, from domain.RideStatus) error

	// SetPaymentStatus updates only the payment status of a ride.
	SetPaymentStatus(ctx context.Context, rideID string, status domain.PaymentStatus) error

	// CountCompletedByClient returns the client's lifetime completed
	// ride count.
	CountCompletedByClient(ctx context.Context, clientID string) (int, error)
}
