package domain

import "time"

// Wallet holds a user's in-app balance. One wallet per user, created
// lazily on the first financial operation.
type Wallet struct {
	ID      string
	UserID  string
	Balance int64 // integer XAF
}

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionRidePay    TransactionType = "RIDE_PAYMENT"
	TransactionRideEarn   TransactionType = "RIDE_EARNING"
	TransactionCommission TransactionType = "COMMISSION_DEDUCTION"
)

// TransactionStatus represents the state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

// Transaction is an immutable ledger entry. Every wallet balance
// mutation is paired with exactly one Transaction recording it.
type Transaction struct {
	ID          string
	WalletID    string
	Amount      int64 // positive magnitude
	Type        TransactionType
	Status      TransactionStatus
	Description string
	CreatedAt   time.Time
}

// SignedAmount returns the amount with the sign implied by the
// transaction type. Summing signed amounts replays the wallet balance.
func (t *Transaction) SignedAmount() int64 {
	switch t.Type {
	case TransactionWithdrawal, TransactionRidePay, TransactionCommission:
		return -t.Amount
	default:
		return t.Amount
	}
}
