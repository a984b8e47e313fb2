package repository

import (
	"context"

	"afrigo/internal/domain"
)

// WalletRepository defines the persistence operations for wallets.
// Balance mutations must happen inside an atomic unit together with
// their paired transaction record.
type WalletRepository interface {
	// Create persists a new wallet.
	Create(ctx context.Context, wallet *domain.Wallet) error

	// GetByUserID retrieves a user's wallet.
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)

	// GetByUserIDForUpdate retrieves a user's wallet and, inside a
	// transaction, locks the row so concurrent balance mutations
	// serialize.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Wallet, error)

	// AddToBalance applies a signed delta to a wallet balance. The
	// caller is responsible for any non-negative guard; commission
	// deduction is allowed to drive a driver balance negative.
	AddToBalance(ctx context.Context, walletID string, delta int64) error
}

// TransactionRepository defines the persistence operations for ledger
// entries. Entries are append-only.
type TransactionRepository interface {
	// Create persists a new ledger entry.
	Create(ctx context.Context, txn *domain.Transaction) error

	// ListByWallet retrieves a wallet's entries, newest first.
	ListByWallet(ctx context.Context, walletID string) ([]*domain.Transaction, error)
}
