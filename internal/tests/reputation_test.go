package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"afrigo/internal/domain"
	"afrigo/internal/service"
)

// strictPolicy suspends after a streak of three ratings of 2 or below.
var strictPolicy = domain.RatingConfig{
	BadRatingThreshold:   2,
	WarningThreshold:     1,
	RedZoneThreshold:     2,
	AutoSuspendThreshold: 3,
	EvaluationPeriod:     10,
}

// rateDriver seeds a fresh completed ride and submits a client rating
// of the driver on it.
func rateDriver(t *testing.T, f *fixture, n int, stars int) {
	t.Helper()
	rideID := fmt.Sprintf("ride-%d", n)
	r := f.seedOpenRide(rideID)
	r.Status = domain.RideStatusCompleted
	r.DriverID = "driver-1"

	_, err := f.reputation.SubmitRating(context.Background(), clientPrincipal, service.SubmitRatingRequest{
		RideID: rideID,
		Rating: stars,
	})
	if err != nil {
		t.Fatalf("rating %d (%d stars): %v", n, stars, err)
	}
}

// ──────────────────────────────────────────────
// 1. SUBMISSION RULES
// ──────────────────────────────────────────────

func TestSubmitRating_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	r := f.seedOpenRide("ride-1")
	r.DriverID = "driver-1"
	ctx := context.Background()

	// Out-of-range stars.
	for _, stars := range []int{0, 6, -1} {
		_, err := f.reputation.SubmitRating(ctx, clientPrincipal, service.SubmitRatingRequest{RideID: "ride-1", Rating: stars})
		if !errors.Is(err, service.ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got: %v", stars, err)
		}
	}

	// Ride still REQUESTED.
	_, err := f.reputation.SubmitRating(ctx, clientPrincipal, service.SubmitRatingRequest{RideID: "ride-1", Rating: 5})
	if !errors.Is(err, service.ErrRideNotCompleted) {
		t.Fatalf("expected ErrRideNotCompleted, got: %v", err)
	}

	// A stranger to the ride cannot rate it.
	r.Status = domain.RideStatusCompleted
	stranger := domain.Principal{UserID: "client-9", Role: domain.RoleClient}
	_, err = f.reputation.SubmitRating(ctx, stranger, service.SubmitRatingRequest{RideID: "ride-1", Rating: 5})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
}

func TestSubmitRating_ResubmissionOverwrites(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	r := f.seedOpenRide("ride-1")
	r.Status = domain.RideStatusCompleted
	r.DriverID = "driver-1"
	ctx := context.Background()

	for _, stars := range []int{2, 5} {
		_, err := f.reputation.SubmitRating(ctx, clientPrincipal, service.SubmitRatingRequest{RideID: "ride-1", Rating: stars})
		if err != nil {
			t.Fatalf("submit %d stars: %v", stars, err)
		}
	}

	count, _ := f.ratings.CountByRatee(ctx, "driver-1", domain.RaterDriver)
	if count != 1 {
		t.Fatalf("expected one rating after resubmission, got %d", count)
	}
	u := f.users.UserState("driver-1")
	if u.AverageRating != 5.0 {
		t.Errorf("expected average 5.0 after overwrite, got %v", u.AverageRating)
	}
}

// ──────────────────────────────────────────────
// 2. STREAKS AND SUSPENSION
// ──────────────────────────────────────────────

func TestReputation_ConsecutiveBadRatings_Suspend(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	if err := f.ratingCfg.Update(context.Background(), strictPolicy); err != nil {
		t.Fatalf("seed policy: %v", err)
	}

	rateDriver(t, f, 1, 1)
	rateDriver(t, f, 2, 1)

	u := f.users.UserState("driver-1")
	if u.ConsecutiveBadRatings != 2 || u.ReputationStatus != domain.ReputationRedZone {
		t.Fatalf("after two bad: streak=%d status=%s", u.ConsecutiveBadRatings, u.ReputationStatus)
	}
	if !u.IsActive {
		t.Fatal("driver should not be suspended yet")
	}

	rateDriver(t, f, 3, 1)

	u = f.users.UserState("driver-1")
	if u.ReputationStatus != domain.ReputationSuspended {
		t.Fatalf("expected SUSPENDED after third bad rating, got %s", u.ReputationStatus)
	}
	if u.IsActive {
		t.Error("expected account deactivated")
	}
	if u.SuspendedAt.IsZero() || u.SuspendReason == "" {
		t.Error("expected suspension timestamp and reason")
	}

	p := f.profiles.ProfileState("profile-driver-1")
	if p.IsApproved || p.IsAvailable {
		t.Error("expected driver profile revoked")
	}
}

func TestReputation_GoodRatingResetsStreak(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	if err := f.ratingCfg.Update(context.Background(), strictPolicy); err != nil {
		t.Fatalf("seed policy: %v", err)
	}

	rateDriver(t, f, 1, 1)
	rateDriver(t, f, 2, 1)
	rateDriver(t, f, 3, 5)

	u := f.users.UserState("driver-1")
	if u.ConsecutiveBadRatings != 0 {
		t.Errorf("expected streak reset, got %d", u.ConsecutiveBadRatings)
	}
	if u.ReputationStatus != domain.ReputationGood {
		t.Errorf("expected GOOD, got %s", u.ReputationStatus)
	}
	if !u.IsActive {
		t.Error("expected account still active")
	}
}

func TestReputation_SuspensionIsSticky(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	if err := f.ratingCfg.Update(context.Background(), strictPolicy); err != nil {
		t.Fatalf("seed policy: %v", err)
	}

	rateDriver(t, f, 1, 1)
	rateDriver(t, f, 2, 1)
	rateDriver(t, f, 3, 1)

	// A glowing rating afterwards does not lift the suspension.
	rateDriver(t, f, 4, 5)

	u := f.users.UserState("driver-1")
	if u.ReputationStatus != domain.ReputationSuspended {
		t.Fatalf("expected suspension to stick, got %s", u.ReputationStatus)
	}
	if u.IsActive {
		t.Error("expected account to stay deactivated")
	}
}

func TestReputation_AverageRoundedToOneDecimal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")

	rateDriver(t, f, 1, 4)
	rateDriver(t, f, 2, 4)
	rateDriver(t, f, 3, 5)

	u := f.users.UserState("driver-1")
	if u.AverageRating != 4.3 {
		t.Errorf("expected average 4.3, got %v", u.AverageRating)
	}
	if u.TotalRatings != 3 {
		t.Errorf("expected 3 total ratings, got %d", u.TotalRatings)
	}
}

// ──────────────────────────────────────────────
// 3. ADMIN OPERATIONS
// ──────────────────────────────────────────────

func TestResetReputation_LiftsSuspension(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	if err := f.ratingCfg.Update(context.Background(), strictPolicy); err != nil {
		t.Fatalf("seed policy: %v", err)
	}

	rateDriver(t, f, 1, 1)
	rateDriver(t, f, 2, 1)
	rateDriver(t, f, 3, 1)

	if err := f.reputation.ResetReputation(context.Background(), adminPrincipal, "driver-1"); err != nil {
		t.Fatalf("expected reset to succeed, got: %v", err)
	}

	u := f.users.UserState("driver-1")
	if u.ReputationStatus != domain.ReputationGood || !u.IsActive || u.ConsecutiveBadRatings != 0 {
		t.Errorf("expected reactivated GOOD account, got status=%s active=%v streak=%d",
			u.ReputationStatus, u.IsActive, u.ConsecutiveBadRatings)
	}
	p := f.profiles.ProfileState("profile-driver-1")
	if !p.IsApproved {
		t.Error("expected driver profile reapproved")
	}
}

func TestResetReputation_NonAdmin_Forbidden(t *testing.T) {
	t.Parallel()

	f := newFixture()

	err := f.reputation.ResetReputation(context.Background(), driverPrincipal, "driver-1")
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
}

func TestUpdateConfig_ValidatesAndInvalidatesCache(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	// Warm the cache.
	if _, err := f.reputation.GetConfig(ctx, adminPrincipal); err != nil {
		t.Fatalf("get config: %v", err)
	}

	bad := domain.RatingConfig{BadRatingThreshold: 2, WarningThreshold: 4, RedZoneThreshold: 3, AutoSuspendThreshold: 5, EvaluationPeriod: 10}
	if err := f.reputation.UpdateConfig(ctx, adminPrincipal, bad); !errors.Is(err, service.ErrInvalidRatingConfig) {
		t.Fatalf("expected ErrInvalidRatingConfig for unordered thresholds, got: %v", err)
	}

	if err := f.reputation.UpdateConfig(ctx, adminPrincipal, strictPolicy); err != nil {
		t.Fatalf("expected update to succeed, got: %v", err)
	}
	if f.cache.InvalidateCallCount == 0 {
		t.Error("expected cache invalidation on update")
	}

	cfg, err := f.reputation.GetConfig(ctx, adminPrincipal)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if cfg.AutoSuspendThreshold != strictPolicy.AutoSuspendThreshold {
		t.Errorf("expected fresh config after invalidation, got %+v", cfg)
	}
}

func TestListAtRisk_ReturnsRedZoneAndSuspended(t *testing.T) {
	t.Parallel()

	f := newFixture()
	good := f.seedClient("u-good")
	good.ReputationStatus = domain.ReputationGood
	red := f.seedClient("u-red")
	red.ReputationStatus = domain.ReputationRedZone
	susp := f.seedClient("u-susp")
	susp.ReputationStatus = domain.ReputationSuspended

	users, err := f.reputation.ListAtRisk(context.Background(), adminPrincipal)
	if err != nil {
		t.Fatalf("expected list, got: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 at-risk users, got %d", len(users))
	}
}
