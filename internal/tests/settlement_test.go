package tests

import (
	"context"
	"errors"
	"testing"

	"afrigo/internal/domain"
	"afrigo/internal/service"
)

// ──────────────────────────────────────────────
// 1. COMMISSION MATH
// ──────────────────────────────────────────────

func TestCommission_RoundsHalfUp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		amount int64
		want   int64
	}{
		{1000, 200},
		{999, 200},  // 199.8 rounds up
		{1001, 200}, // 200.2 rounds down
		{997, 199},  // 199.4 rounds down
		{50, 10},
		{3, 1}, // 0.6 rounds up
		{2, 0}, // 0.4 rounds down
		{1, 0},
	}

	for _, tc := range testCases {
		if got := service.Commission(tc.amount); got != tc.want {
			t.Errorf("Commission(%d) = %d, want %d", tc.amount, got, tc.want)
		}
		if got := service.DriverNet(tc.amount); got != tc.amount-tc.want {
			t.Errorf("DriverNet(%d) = %d, want %d", tc.amount, got, tc.amount-tc.want)
		}
	}
}

// ──────────────────────────────────────────────
// 2. SETTLEMENT BRANCHES
// ──────────────────────────────────────────────

func completedCashRide(f *fixture, id string) *domain.Ride {
	r := f.seedOpenRide(id)
	r.Status = domain.RideStatusCompleted
	r.DriverID = "driver-1"
	r.FinalPrice = 1000
	return r
}

func TestSettle_Cash_DebitsDriverCommission(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedWallet("driver-1", 500)
	ride := completedCashRide(f, "ride-1")

	if err := f.settlement.Settle(context.Background(), ride, 1000); err != nil {
		t.Fatalf("expected settlement to succeed, got: %v", err)
	}

	if got := f.wallets.BalanceOf("driver-1"); got != 300 {
		t.Errorf("expected driver balance 300, got %d", got)
	}

	txns := f.txns.All()
	if len(txns) != 1 {
		t.Fatalf("expected one transaction, got %d", len(txns))
	}
	if txns[0].Type != domain.TransactionCommission || txns[0].Amount != 200 {
		t.Errorf("expected COMMISSION_DEDUCTION of 200, got %s %d", txns[0].Type, txns[0].Amount)
	}

	stored, _ := f.rides.GetByID(context.Background(), "ride-1")
	if stored.PaymentStatus != domain.PaymentStatusCompleted {
		t.Errorf("expected payment COMPLETED, got %s", stored.PaymentStatus)
	}
}

func TestSettle_Cash_DriverBalanceMayGoNegative(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ride := completedCashRide(f, "ride-1")

	// No driver wallet yet: the commission still posts, leaving a debt.
	if err := f.settlement.Settle(context.Background(), ride, 1000); err != nil {
		t.Fatalf("expected settlement to succeed, got: %v", err)
	}

	if got := f.wallets.BalanceOf("driver-1"); got != -200 {
		t.Errorf("expected driver balance -200, got %d", got)
	}
}

func TestSettle_Wallet_MovesFareAndNet(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedWallet("client-1", 2000)
	f.seedWallet("driver-1", 0)
	ride := completedCashRide(f, "ride-1")
	ride.PaymentMethod = domain.PaymentMethodWallet

	if err := f.settlement.Settle(context.Background(), ride, 1000); err != nil {
		t.Fatalf("expected settlement to succeed, got: %v", err)
	}

	if got := f.wallets.BalanceOf("client-1"); got != 1000 {
		t.Errorf("expected client balance 1000, got %d", got)
	}
	if got := f.wallets.BalanceOf("driver-1"); got != 800 {
		t.Errorf("expected driver balance 800, got %d", got)
	}

	txns := f.txns.All()
	if len(txns) != 2 {
		t.Fatalf("expected two transactions, got %d", len(txns))
	}
	if txns[0].Type != domain.TransactionRidePay || txns[0].Amount != 1000 {
		t.Errorf("expected RIDE_PAYMENT of 1000, got %s %d", txns[0].Type, txns[0].Amount)
	}
	if txns[1].Type != domain.TransactionRideEarn || txns[1].Amount != 800 {
		t.Errorf("expected RIDE_EARNING of 800, got %s %d", txns[1].Type, txns[1].Amount)
	}
}

func TestSettle_Wallet_InsufficientFunds_NothingMutates(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedWallet("client-1", 500)
	f.seedWallet("driver-1", 100)
	ride := completedCashRide(f, "ride-1")
	ride.PaymentMethod = domain.PaymentMethodWallet

	err := f.settlement.Settle(context.Background(), ride, 1000)
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got: %v", err)
	}

	if got := f.wallets.BalanceOf("client-1"); got != 500 {
		t.Errorf("expected client balance untouched at 500, got %d", got)
	}
	if got := f.wallets.BalanceOf("driver-1"); got != 100 {
		t.Errorf("expected driver balance untouched at 100, got %d", got)
	}
	if len(f.txns.All()) != 0 {
		t.Error("expected no transactions recorded")
	}

	stored, _ := f.rides.GetByID(context.Background(), "ride-1")
	if stored.PaymentStatus == domain.PaymentStatusCompleted {
		t.Error("expected payment not to be COMPLETED")
	}
}

func TestSettle_MobileMoney_CreditsDriverNetOnly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedWallet("client-1", 2000)
	ride := completedCashRide(f, "ride-1")
	ride.PaymentMethod = domain.PaymentMethodMobileMoney

	if err := f.settlement.Settle(context.Background(), ride, 1000); err != nil {
		t.Fatalf("expected settlement to succeed, got: %v", err)
	}

	// Funds arrive out of band: the client wallet is untouched.
	if got := f.wallets.BalanceOf("client-1"); got != 2000 {
		t.Errorf("expected client balance untouched at 2000, got %d", got)
	}
	if got := f.wallets.BalanceOf("driver-1"); got != 800 {
		t.Errorf("expected driver balance 800, got %d", got)
	}

	txns := f.txns.All()
	if len(txns) != 1 || txns[0].Type != domain.TransactionRideEarn {
		t.Fatalf("expected a single RIDE_EARNING, got %v", txns)
	}
}

func TestSettle_InvalidAmount_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ride := completedCashRide(f, "ride-1")

	if err := f.settlement.Settle(context.Background(), ride, 0); !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. COMPLETION + SETTLEMENT INTERACTION
// ──────────────────────────────────────────────

func TestCompletion_WalletShortfall_MarksPaymentFailed(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	f.seedWallet("client-1", 100)
	r := f.seedOpenRide("ride-1")
	r.Status = domain.RideStatusInProgress
	r.DriverID = "driver-1"
	r.PaymentMethod = domain.PaymentMethodWallet

	_, err := f.ride.UpdateStatus(context.Background(), driverPrincipal, "ride-1", domain.RideStatusCompleted, 1000)
	if !errors.Is(err, service.ErrSettlementFailed) {
		t.Fatalf("expected ErrSettlementFailed, got: %v", err)
	}
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected cause ErrInsufficientFunds, got: %v", err)
	}

	stored, _ := f.rides.GetByID(context.Background(), "ride-1")
	if stored.Status != domain.RideStatusCompleted {
		t.Errorf("expected ride to stay COMPLETED, got %s", stored.Status)
	}
	if stored.PaymentStatus != domain.PaymentStatusFailed {
		t.Errorf("expected payment FAILED, got %s", stored.PaymentStatus)
	}
}
