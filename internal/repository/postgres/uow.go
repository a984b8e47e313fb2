package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"afrigo/internal/repository"
)

// UnitOfWork runs callbacks inside a single PostgreSQL transaction,
// handing out transaction-scoped repositories.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Atomic begins a transaction, invokes fn with transaction-scoped
// stores, and commits. Any error from fn rolls everything back.
func (u *UnitOfWork) Atomic(ctx context.Context, fn func(s repository.Stores) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stores := repository.Stores{
		Rides:        NewRideRepositoryWithTx(tx),
		Wallets:      NewWalletRepositoryWithTx(tx),
		Transactions: NewTransactionRepositoryWithTx(tx),
		Promos:       NewPromoRepositoryWithTx(tx),
		Referrals:    NewReferralRepositoryWithTx(tx),
		Users:        NewUserRepositoryWithTx(tx),
	}

	if err := fn(stores); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
