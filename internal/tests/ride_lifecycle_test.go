package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"afrigo/internal/domain"
	"afrigo/internal/service"
)

// ──────────────────────────────────────────────
// 1. RIDE REQUEST EDGE CASES
// ──────────────────────────────────────────────

func TestRequestRide_Immediate_Succeeds(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")

	ride, err := f.ride.RequestRide(context.Background(), clientPrincipal, service.RequestRideRequest{
		OriginLat:     4.0511,
		OriginLng:     9.7679,
		DestLat:       4.0611,
		DestLng:       9.7779,
		ServiceType:   domain.ServiceTypeTaxi,
		PaymentMethod: domain.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusRequested {
		t.Errorf("expected status REQUESTED, got %s", ride.Status)
	}
	if ride.EstimatedPrice <= 0 {
		t.Errorf("expected positive estimate, got %d", ride.EstimatedPrice)
	}
	if ride.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("expected payment PENDING, got %s", ride.PaymentStatus)
	}

	events := f.notifier.Events()
	if len(events) != 1 || events[0].Event != service.EventNewRideRequest {
		t.Errorf("expected one new_ride_request broadcast, got %v", events)
	}
}

func TestRequestRide_Scheduled(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")

	ride, err := f.ride.RequestRide(context.Background(), clientPrincipal, service.RequestRideRequest{
		OriginLat:     4.0511,
		OriginLng:     9.7679,
		DestLat:       4.0611,
		DestLng:       9.7779,
		ServiceType:   domain.ServiceTypeTaxi,
		PaymentMethod: domain.PaymentMethodCash,
		ScheduledTime: "2026-09-15T08:30:00Z",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusScheduled {
		t.Errorf("expected status SCHEDULED, got %s", ride.Status)
	}
	if ride.ScheduledTime.IsZero() {
		t.Error("expected scheduled time to be set")
	}

	// Scheduled rides are not broadcast immediately.
	if len(f.notifier.Events()) != 0 {
		t.Error("expected no broadcast for a scheduled ride")
	}
}

func TestRequestRide_InvalidScheduledTime_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")

	_, err := f.ride.RequestRide(context.Background(), clientPrincipal, service.RequestRideRequest{
		OriginLat:     4.0511,
		OriginLng:     9.7679,
		DestLat:       4.0611,
		DestLng:       9.7779,
		ServiceType:   domain.ServiceTypeTaxi,
		PaymentMethod: domain.PaymentMethodCash,
		ScheduledTime: "tomorrow at noon",
	})
	if !errors.Is(err, service.ErrInvalidScheduledTime) {
		t.Fatalf("expected ErrInvalidScheduledTime, got: %v", err)
	}
}

func TestRequestRide_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*service.RequestRideRequest)
		wantErr error
	}{
		{
			name:    "latitude out of range",
			mutate:  func(r *service.RequestRideRequest) { r.OriginLat = 91 },
			wantErr: service.ErrInvalidOriginLocation,
		},
		{
			name:    "destination longitude out of range",
			mutate:  func(r *service.RequestRideRequest) { r.DestLng = -181 },
			wantErr: service.ErrInvalidDestLocation,
		},
		{
			name:    "unknown service type",
			mutate:  func(r *service.RequestRideRequest) { r.ServiceType = "HELICOPTER" },
			wantErr: service.ErrInvalidServiceType,
		},
		{
			name:    "unknown payment method",
			mutate:  func(r *service.RequestRideRequest) { r.PaymentMethod = "BARTER" },
			wantErr: service.ErrInvalidPaymentMethod,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			f.seedClient("client-1")

			req := service.RequestRideRequest{
				OriginLat:     4.0511,
				OriginLng:     9.7679,
				DestLat:       4.0611,
				DestLng:       9.7779,
				ServiceType:   domain.ServiceTypeTaxi,
				PaymentMethod: domain.PaymentMethodCash,
			}
			tc.mutate(&req)

			_, err := f.ride.RequestRide(context.Background(), clientPrincipal, req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got: %v", tc.wantErr, err)
			}
		})
	}
}

func TestRequestRide_SuspendedClient_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	u := f.seedClient("client-1")
	u.IsActive = false

	_, err := f.ride.RequestRide(context.Background(), clientPrincipal, service.RequestRideRequest{
		OriginLat:     4.0511,
		OriginLng:     9.7679,
		DestLat:       4.0611,
		DestLng:       9.7779,
		ServiceType:   domain.ServiceTypeTaxi,
		PaymentMethod: domain.PaymentMethodCash,
	})
	if !errors.Is(err, service.ErrAccountSuspended) {
		t.Fatalf("expected ErrAccountSuspended, got: %v", err)
	}
}

func TestRequestRide_DriverRole_Forbidden(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedDriver("driver-1")

	_, err := f.ride.RequestRide(context.Background(), driverPrincipal, service.RequestRideRequest{})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. ACCEPTANCE RACE
// ──────────────────────────────────────────────

func TestAcceptRide_ConcurrentDrivers_ExactlyOneWins(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	f.seedDriver("driver-2")
	f.seedOpenRide("ride-1")

	principals := []domain.Principal{
		driverPrincipal,
		{UserID: "driver-2", Role: domain.RoleDriver},
	}

	var wg sync.WaitGroup
	results := make(chan error, len(principals))
	for _, p := range principals {
		wg.Add(1)
		go func(p domain.Principal) {
			defer wg.Done()
			_, err := f.ride.AcceptRide(context.Background(), p, "ride-1")
			results <- err
		}(p)
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, service.ErrRideNotAvailable):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected exactly one winner, got %d wins / %d losses", wins, losses)
	}

	ride, err := f.rides.GetByID(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("expected ride, got: %v", err)
	}
	if ride.Status != domain.RideStatusAccepted || ride.DriverID == "" {
		t.Errorf("expected accepted ride with a driver, got status=%s driver=%q", ride.Status, ride.DriverID)
	}
}

func TestAcceptRide_LockStoreDown_FallsBackToDatabase(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	f.seedOpenRide("ride-1")
	f.locks.AcquireError = errors.New("redis down")

	ride, err := f.ride.AcceptRide(context.Background(), driverPrincipal, "ride-1")
	if err != nil {
		t.Fatalf("expected acceptance to survive a lock store outage, got: %v", err)
	}
	if ride.DriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %q", ride.DriverID)
	}
}

func TestAcceptRide_AlreadyTaken_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	r := f.seedOpenRide("ride-1")
	r.Status = domain.RideStatusAccepted
	r.DriverID = "driver-9"

	_, err := f.ride.AcceptRide(context.Background(), driverPrincipal, "ride-1")
	if !errors.Is(err, service.ErrRideNotAvailable) {
		t.Fatalf("expected ErrRideNotAvailable, got: %v", err)
	}
}

func TestAcceptRide_SuspendedDriver_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	u := f.seedDriver("driver-1")
	u.IsActive = false
	f.seedOpenRide("ride-1")

	_, err := f.ride.AcceptRide(context.Background(), driverPrincipal, "ride-1")
	if !errors.Is(err, service.ErrAccountSuspended) {
		t.Fatalf("expected ErrAccountSuspended, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. STATUS TRANSITIONS
// ──────────────────────────────────────────────

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	r := f.seedOpenRide("ride-1")
	r.Status = domain.RideStatusAccepted
	r.DriverID = "driver-1"

	ctx := context.Background()

	// Skipping ARRIVED is rejected.
	if _, err := f.ride.UpdateStatus(ctx, driverPrincipal, "ride-1", domain.RideStatusInProgress, 0); !errors.Is(err, service.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition for skip, got: %v", err)
	}

	for _, next := range []domain.RideStatus{
		domain.RideStatusArrived,
		domain.RideStatusInProgress,
		domain.RideStatusCompleted,
	} {
		ride, err := f.ride.UpdateStatus(ctx, driverPrincipal, "ride-1", next, 0)
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if ride.Status != next {
			t.Fatalf("expected status %s, got %s", next, ride.Status)
		}
	}

	// Terminal rides never move again.
	if _, err := f.ride.UpdateStatus(ctx, driverPrincipal, "ride-1", domain.RideStatusInProgress, 0); !errors.Is(err, service.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition after completion, got: %v", err)
	}
}

func TestUpdateStatus_CompletionSettlesAndFixesPrice(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	f.seedWallet("driver-1", 5000)
	r := f.seedOpenRide("ride-1")
	r.Status = domain.RideStatusInProgress
	r.DriverID = "driver-1"

	ride, err := f.ride.UpdateStatus(context.Background(), driverPrincipal, "ride-1", domain.RideStatusCompleted, 2000)
	if err != nil {
		t.Fatalf("expected completion to succeed, got: %v", err)
	}

	if ride.FinalPrice != 2000 {
		t.Errorf("expected final price 2000, got %d", ride.FinalPrice)
	}
	if ride.CompletedAt.IsZero() {
		t.Error("expected completedAt to be set")
	}
	if ride.PaymentStatus != domain.PaymentStatusCompleted {
		t.Errorf("expected payment COMPLETED, got %s", ride.PaymentStatus)
	}

	// CASH ride: platform recovers its 20% commission from the driver.
	if got := f.wallets.BalanceOf("driver-1"); got != 4600 {
		t.Errorf("expected driver balance 4600, got %d", got)
	}
}

func TestUpdateStatus_ConcurrentCompletion_SettlesOnce(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	f.seedWallet("driver-1", 1000)
	r := f.seedOpenRide("ride-1")
	r.Status = domain.RideStatusInProgress
	r.DriverID = "driver-1"

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ride.UpdateStatus(context.Background(), driverPrincipal, "ride-1", domain.RideStatusCompleted, 1000)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, service.ErrInvalidStatusTransition):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected exactly one completer, got %d wins / %d losses", wins, losses)
	}

	// The commission comes out exactly once.
	if got := f.wallets.BalanceOf("driver-1"); got != 800 {
		t.Errorf("expected driver balance 800 after one commission, got %d", got)
	}
	commissions := 0
	for _, txn := range f.txns.All() {
		if txn.Type == domain.TransactionCommission {
			commissions++
		}
	}
	if commissions != 1 {
		t.Errorf("expected one commission entry, got %d", commissions)
	}
}

func TestUpdateStatus_DefaultsFinalPriceToEstimate(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	f.seedWallet("driver-1", 1000)
	r := f.seedOpenRide("ride-1")
	r.Status = domain.RideStatusInProgress
	r.DriverID = "driver-1"
	r.EstimatedPrice = 1500

	ride, err := f.ride.UpdateStatus(context.Background(), driverPrincipal, "ride-1", domain.RideStatusCompleted, 0)
	if err != nil {
		t.Fatalf("expected completion to succeed, got: %v", err)
	}
	if ride.FinalPrice != 1500 {
		t.Errorf("expected final price to default to estimate 1500, got %d", ride.FinalPrice)
	}
}

func TestUpdateStatus_NotAssignedDriver_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedClient("client-1")
	f.seedDriver("driver-1")
	r := f.seedOpenRide("ride-1")
	r.Status = domain.RideStatusAccepted
	r.DriverID = "driver-9"

	_, err := f.ride.UpdateStatus(context.Background(), driverPrincipal, "ride-1", domain.RideStatusArrived, 0)
	if !errors.Is(err, service.ErrNotRideDriver) {
		t.Fatalf("expected ErrNotRideDriver, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 4. CANCELLATION
// ──────────────────────────────────────────────

func TestCancelRide(t *testing.T) {
	t.Parallel()

	t.Run("client cancels own ride", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.seedClient("client-1")
		f.seedOpenRide("ride-1")

		ride, err := f.ride.CancelRide(context.Background(), clientPrincipal, "ride-1", "changed my mind")
		if err != nil {
			t.Fatalf("expected cancel to succeed, got: %v", err)
		}
		if ride.Status != domain.RideStatusCancelled || ride.CancelReason != "changed my mind" {
			t.Errorf("expected cancelled ride with reason, got status=%s reason=%q", ride.Status, ride.CancelReason)
		}
		if ride.CancelledAt.IsZero() {
			t.Error("expected cancelledAt to be set")
		}
	})

	t.Run("another client's ride", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.seedClient("client-1")
		r := f.seedOpenRide("ride-1")
		r.ClientID = "client-9"

		_, err := f.ride.CancelRide(context.Background(), clientPrincipal, "ride-1", "")
		if !errors.Is(err, service.ErrNotRideClient) {
			t.Fatalf("expected ErrNotRideClient, got: %v", err)
		}
	})

	t.Run("completed ride", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.seedClient("client-1")
		r := f.seedOpenRide("ride-1")
		r.Status = domain.RideStatusCompleted

		_, err := f.ride.CancelRide(context.Background(), clientPrincipal, "ride-1", "")
		if !errors.Is(err, service.ErrRideNotCancellable) {
			t.Fatalf("expected ErrRideNotCancellable, got: %v", err)
		}
	})

	t.Run("driver role", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.seedDriver("driver-1")
		f.seedOpenRide("ride-1")

		_, err := f.ride.CancelRide(context.Background(), driverPrincipal, "ride-1", "")
		if !errors.Is(err, service.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got: %v", err)
		}
	})

	t.Run("admin cancels any ride", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.seedOpenRide("ride-1")

		ride, err := f.ride.CancelRide(context.Background(), adminPrincipal, "ride-1", "fraud review")
		if err != nil {
			t.Fatalf("expected admin cancel to succeed, got: %v", err)
		}
		if ride.Status != domain.RideStatusCancelled {
			t.Errorf("expected CANCELLED, got %s", ride.Status)
		}
	})
}
