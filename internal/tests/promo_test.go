package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"afrigo/internal/domain"
	"afrigo/internal/service"
)

func seedPercentPromo(f *fixture, code string, percent int64) *domain.PromoCode {
	p := &domain.PromoCode{
		ID:             "promo-" + code,
		Code:           code,
		DiscountType:   domain.DiscountPercentage,
		DiscountValue:  percent,
		MaxUsesPerUser: 1,
		IsActive:       true,
		StartsAt:       time.Now().UTC().Add(-time.Hour),
	}
	f.promos.AddPromo(p)
	return p
}

// ──────────────────────────────────────────────
// 1. VALIDATION
// ──────────────────────────────────────────────

func TestValidatePromo_PercentageDiscount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	seedPercentPromo(f, "TEST10", 10)

	quote, err := f.promo.Validate(context.Background(), "client-1", "test10", 5000, domain.ServiceTypeTaxi)
	if err != nil {
		t.Fatalf("expected valid quote, got: %v", err)
	}

	if quote.Discount != 500 || quote.FinalAmount != 4500 {
		t.Errorf("expected 500 off 5000, got discount=%d final=%d", quote.Discount, quote.FinalAmount)
	}
}

func TestValidatePromo_FixedDiscountClampedToAmount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.promos.AddPromo(&domain.PromoCode{
		ID:             "promo-BIG",
		Code:           "BIG",
		DiscountType:   domain.DiscountFixed,
		DiscountValue:  2000,
		MaxUsesPerUser: 1,
		IsActive:       true,
		StartsAt:       time.Now().UTC().Add(-time.Hour),
	})

	quote, err := f.promo.Validate(context.Background(), "client-1", "BIG", 800, domain.ServiceTypeTaxi)
	if err != nil {
		t.Fatalf("expected valid quote, got: %v", err)
	}
	if quote.Discount != 800 || quote.FinalAmount != 0 {
		t.Errorf("expected discount clamped to 800, got discount=%d final=%d", quote.Discount, quote.FinalAmount)
	}
}

func TestValidatePromo_EligibilityChain(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	testCases := []struct {
		name    string
		mutate  func(*domain.PromoCode)
		wantErr error
	}{
		{
			name:    "inactive",
			mutate:  func(p *domain.PromoCode) { p.IsActive = false },
			wantErr: service.ErrPromoNotActive,
		},
		{
			name:    "not yet started",
			mutate:  func(p *domain.PromoCode) { p.StartsAt = now.Add(time.Hour) },
			wantErr: service.ErrPromoNotStarted,
		},
		{
			name:    "expired",
			mutate:  func(p *domain.PromoCode) { p.ExpiresAt = now.Add(-time.Minute) },
			wantErr: service.ErrPromoExpired,
		},
		{
			name: "globally exhausted",
			mutate: func(p *domain.PromoCode) {
				p.MaxUses = 5
				p.UsedCount = 5
			},
			wantErr: service.ErrPromoExhausted,
		},
		{
			name:    "below minimum amount",
			mutate:  func(p *domain.PromoCode) { p.MinRideAmount = 10000 },
			wantErr: service.ErrPromoMinAmount,
		},
		{
			name:    "service type excluded",
			mutate:  func(p *domain.PromoCode) { p.ServiceTypes = []domain.ServiceType{domain.ServiceTypeMoto} },
			wantErr: service.ErrPromoServiceType,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			p := seedPercentPromo(f, "CHAIN", 10)
			tc.mutate(p)

			_, err := f.promo.Validate(context.Background(), "client-1", "CHAIN", 5000, domain.ServiceTypeTaxi)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got: %v", tc.wantErr, err)
			}
		})
	}
}

// The minimum is checked against the pre-discount amount.
func TestValidatePromo_MinimumUsesPreDiscountAmount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	p := seedPercentPromo(f, "HALF", 50)
	p.MinRideAmount = 1000

	// 1000 pre-discount passes even though the discounted total is 500.
	quote, err := f.promo.Validate(context.Background(), "client-1", "HALF", 1000, domain.ServiceTypeTaxi)
	if err != nil {
		t.Fatalf("expected valid quote, got: %v", err)
	}
	if quote.FinalAmount != 500 {
		t.Errorf("expected final 500, got %d", quote.FinalAmount)
	}
}

// ──────────────────────────────────────────────
// 2. APPLICATION
// ──────────────────────────────────────────────

func TestApplyPromo_ConsumesUsage(t *testing.T) {
	t.Parallel()

	f := newFixture()
	seedPercentPromo(f, "TEST10", 10)
	ctx := context.Background()

	quote, err := f.promo.Apply(ctx, clientPrincipal, "TEST10", 5000, domain.ServiceTypeTaxi, "ride-1")
	if err != nil {
		t.Fatalf("expected apply to succeed, got: %v", err)
	}
	if quote.FinalAmount != 4500 {
		t.Errorf("expected final 4500, got %d", quote.FinalAmount)
	}
	if got := f.promos.UsedCountOf("promo-TEST10"); got != 1 {
		t.Errorf("expected used count 1, got %d", got)
	}

	// Per-user allowance of one: the second apply is rejected and the
	// counter does not move.
	_, err = f.promo.Apply(ctx, clientPrincipal, "TEST10", 5000, domain.ServiceTypeTaxi, "ride-2")
	if !errors.Is(err, service.ErrPromoAlreadyUsed) {
		t.Fatalf("expected ErrPromoAlreadyUsed, got: %v", err)
	}
	if got := f.promos.UsedCountOf("promo-TEST10"); got != 1 {
		t.Errorf("expected used count still 1, got %d", got)
	}
}

func TestApplyPromo_ConcurrentLastUse_OneWins(t *testing.T) {
	t.Parallel()

	f := newFixture()
	p := seedPercentPromo(f, "LAST", 10)
	p.MaxUses = 1

	users := []domain.Principal{
		clientPrincipal,
		{UserID: "client-2", Role: domain.RoleClient},
	}

	var wg sync.WaitGroup
	results := make(chan error, len(users))
	for _, u := range users {
		wg.Add(1)
		go func(u domain.Principal) {
			defer wg.Done()
			_, err := f.promo.Apply(context.Background(), u, "LAST", 5000, domain.ServiceTypeTaxi, "")
			results <- err
		}(u)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, service.ErrPromoExhausted) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if got := f.promos.UsedCountOf("promo-LAST"); got != 1 {
		t.Errorf("expected used count 1, got %d", got)
	}
}

func TestApplyPromo_DriverRole_Forbidden(t *testing.T) {
	t.Parallel()

	f := newFixture()
	seedPercentPromo(f, "TEST10", 10)

	_, err := f.promo.Apply(context.Background(), driverPrincipal, "TEST10", 5000, domain.ServiceTypeTaxi, "")
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. BACKOFFICE
// ──────────────────────────────────────────────

func TestCreatePromo_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.promo.Create(ctx, clientPrincipal, service.CreatePromoRequest{}); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got: %v", err)
	}

	_, err := f.promo.Create(ctx, adminPrincipal, service.CreatePromoRequest{
		Code:          "TOOMUCH",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 150,
	})
	if !errors.Is(err, service.ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount for 150%%, got: %v", err)
	}

	promo, err := f.promo.Create(ctx, adminPrincipal, service.CreatePromoRequest{
		Code:          "welcome20",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 20,
		MaxUses:       100,
	})
	if err != nil {
		t.Fatalf("expected create to succeed, got: %v", err)
	}
	if promo.Code != "WELCOME20" {
		t.Errorf("expected code stored upper-case, got %q", promo.Code)
	}
	if !promo.IsActive || promo.MaxUsesPerUser != 1 {
		t.Errorf("expected active promo with default per-user limit, got active=%v perUser=%d", promo.IsActive, promo.MaxUsesPerUser)
	}
}
