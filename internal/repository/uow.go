package repository

import "context"

// Stores bundles the repositories participating in one atomic unit.
// Inside Atomic they all share the same storage transaction.
type Stores struct {
	Rides        RideRepository
	Wallets      WalletRepository
	Transactions TransactionRepository
	Promos       PromoRepository
	Referrals    ReferralRepository
	Users        UserRepository
}

// UnitOfWork runs a function inside a single storage transaction.
// Either every write made through the handed-out stores commits, or
// none do.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(s Stores) error) error
}
