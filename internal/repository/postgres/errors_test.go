package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// uniqueViolationQuerier fails every write the way the driver reports
// a unique-constraint violation.
type uniqueViolationQuerier struct{}

func (uniqueViolationQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

func (uniqueViolationQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func (uniqueViolationQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestReferralCreate_UniqueViolationIsConflict(t *testing.T) {
	t.Parallel()

	repo := &ReferralRepository{q: uniqueViolationQuerier{}}
	err := repo.Create(context.Background(), &domain.Referral{
		ID:         "ref-1",
		ReferrerID: "referrer-1",
		RefereeID:  "client-1",
		Status:     domain.ReferralStatusPending,
		CreatedAt:  time.Now().UTC(),
	})

	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate referee, got: %v", err)
	}
}

func TestWalletCreate_UniqueViolationIsConflict(t *testing.T) {
	t.Parallel()

	repo := &WalletRepository{q: uniqueViolationQuerier{}}
	err := repo.Create(context.Background(), &domain.Wallet{ID: "wallet-1", UserID: "client-1"})

	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate user wallet, got: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign-key violations are not unique violations")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Error("plain errors are not unique violations")
	}
	if isUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
}
