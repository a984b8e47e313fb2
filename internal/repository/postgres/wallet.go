package postgres

import (
	"context"
	"database/sql"
	"errors"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
type WalletRepository struct {
	q Querier
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

// Create persists a new wallet. The unique index on user_id makes a
// racing lazy create surface as ErrConflict rather than a raw driver
// error.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO wallets (id, user_id, balance) VALUES ($1, $2, $3)`,
		wallet.ID, wallet.UserID, wallet.Balance,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByUserID retrieves a user's wallet.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	return r.getByUserID(ctx, userID, false)
}

// GetByUserIDForUpdate retrieves a user's wallet with a row lock so
// concurrent balance mutations serialize.
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	return r.getByUserID(ctx, userID, true)
}

func (r *WalletRepository) getByUserID(ctx context.Context, userID string, forUpdate bool) (*domain.Wallet, error) {
	query := `SELECT id, user_id, balance FROM wallets WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var wallet domain.Wallet
	err := r.q.QueryRowContext(ctx, query, userID).Scan(&wallet.ID, &wallet.UserID, &wallet.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &wallet, nil
}

// AddToBalance applies a signed delta to a wallet balance.
func (r *WalletRepository) AddToBalance(ctx context.Context, walletID string, delta int64) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE wallets SET balance = balance + $1 WHERE id = $2`,
		delta, walletID,
	)
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

// TransactionRepository is a PostgreSQL implementation of
// repository.TransactionRepository.
type TransactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

// NewTransactionRepositoryWithTx creates a transaction repository using a transaction.
func NewTransactionRepositoryWithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create persists a new ledger entry.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO transactions (id, wallet_id, amount, type, status, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		txn.ID, txn.WalletID, txn.Amount, txn.Type, txn.Status, nullString(txn.Description), txn.CreatedAt,
	)
	return err
}

// ListByWallet retrieves a wallet's entries, newest first.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string) ([]*domain.Transaction, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, wallet_id, amount, type, status, description, created_at
		 FROM transactions WHERE wallet_id = $1 ORDER BY created_at DESC`,
		walletID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var description sql.NullString
		if err := rows.Scan(&txn.ID, &txn.WalletID, &txn.Amount, &txn.Type, &txn.Status, &description, &txn.CreatedAt); err != nil {
			return nil, err
		}
		txn.Description = description.String
		txns = append(txns, &txn)
	}
	return txns, rows.Err()
}
