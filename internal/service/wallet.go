package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// WalletService is the ledger: it owns wallet balances and their
// append-only transaction log. Every balance mutation and its paired
// transaction record commit in one atomic unit.
type WalletService struct {
	uow        repository.UnitOfWork
	walletRepo repository.WalletRepository
	txnRepo    repository.TransactionRepository
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	uow repository.UnitOfWork,
	walletRepo repository.WalletRepository,
	txnRepo repository.TransactionRepository,
) *WalletService {
	return &WalletService{
		uow:        uow,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
	}
}

// Deposit adds funds to a client wallet. Drivers top up through ride
// earnings only.
func (s *WalletService) Deposit(ctx context.Context, p domain.Principal, amount int64) (*domain.Wallet, error) {
	if decision := Authorize(p, ActionDeposit); !decision.Allowed {
		return nil, ErrForbidden
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var wallet *domain.Wallet
	err := s.uow.Atomic(ctx, func(st repository.Stores) error {
		var err error
		wallet, err = ensureWallet(ctx, st.Wallets, p.UserID)
		if err != nil {
			return err
		}

		if err := creditWallet(ctx, st, wallet, amount, domain.TransactionDeposit, "Wallet deposit"); err != nil {
			return err
		}

		wallet.Balance += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// Withdraw removes funds from a driver wallet. Fails with
// ErrInsufficientFunds before any mutation if the balance is too low.
func (s *WalletService) Withdraw(ctx context.Context, p domain.Principal, amount int64) (*domain.Wallet, error) {
	if decision := Authorize(p, ActionWithdraw); !decision.Allowed {
		return nil, ErrForbidden
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var wallet *domain.Wallet
	err := s.uow.Atomic(ctx, func(st repository.Stores) error {
		var err error
		wallet, err = st.Wallets.GetByUserIDForUpdate(ctx, p.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInsufficientFunds
		}
		if err != nil {
			return err
		}

		if wallet.Balance < amount {
			return ErrInsufficientFunds
		}

		if err := debitWallet(ctx, st, wallet, amount, domain.TransactionWithdrawal, "Wallet withdrawal"); err != nil {
			return err
		}

		wallet.Balance -= amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetBalance returns the user's balance, zero if no wallet exists yet.
func (s *WalletService) GetBalance(ctx context.Context, userID string) (int64, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// ListTransactions returns the user's ledger entries, newest first.
func (s *WalletService) ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.txnRepo.ListByWallet(ctx, wallet.ID)
}

// ensureWallet fetches a user's wallet with a row lock, creating it
// lazily on first use. A concurrent first use can win the create; the
// loser re-reads the winner's row.
func ensureWallet(ctx context.Context, wallets repository.WalletRepository, userID string) (*domain.Wallet, error) {
	wallet, err := wallets.GetByUserIDForUpdate(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		wallet = &domain.Wallet{
			ID:     uuid.New().String(),
			UserID: userID,
		}
		if err := wallets.Create(ctx, wallet); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return wallets.GetByUserIDForUpdate(ctx, userID)
			}
			return nil, err
		}
		return wallet, nil
	}
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// creditWallet applies a positive balance mutation and its paired
// ledger entry. Must run inside an atomic unit.
func creditWallet(ctx context.Context, st repository.Stores, wallet *domain.Wallet, amount int64, txnType domain.TransactionType, description string) error {
	if err := st.Wallets.AddToBalance(ctx, wallet.ID, amount); err != nil {
		return err
	}
	return st.Transactions.Create(ctx, &domain.Transaction{
		ID:          uuid.New().String(),
		WalletID:    wallet.ID,
		Amount:      amount,
		Type:        txnType,
		Status:      domain.TransactionStatusCompleted,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
}

// debitWallet applies a negative balance mutation and its paired
// ledger entry. Must run inside an atomic unit. Non-negative guards are
// the caller's responsibility: CASH commission may drive a driver
// balance negative.
func debitWallet(ctx context.Context, st repository.Stores, wallet *domain.Wallet, amount int64, txnType domain.TransactionType, description string) error {
	if err := st.Wallets.AddToBalance(ctx, wallet.ID, -amount); err != nil {
		return err
	}
	return st.Transactions.Create(ctx, &domain.Transaction{
		ID:          uuid.New().String(),
		WalletID:    wallet.ID,
		Amount:      amount,
		Type:        txnType,
		Status:      domain.TransactionStatusCompleted,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
}
