package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"afrigo/internal/domain"
	"afrigo/internal/redis"
	"afrigo/internal/repository"
)

// acceptLockTTL bounds how long the acceptance fast-path lock is held.
const acceptLockTTL = 10 * time.Second

// RideService owns the ride lifecycle from request to completion or
// cancellation.
type RideService struct {
	rideRepo   repository.RideRepository
	userRepo   repository.UserRepository
	driverRepo repository.DriverProfileRepository
	pricing    *PricingService
	settlement *SettlementService
	referrals  *ReferralService
	locks      redis.LockStoreInterface
	notifier   Notifier
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	driverRepo repository.DriverProfileRepository,
	pricing *PricingService,
	settlement *SettlementService,
	referrals *ReferralService,
	locks redis.LockStoreInterface,
	notifier Notifier,
) *RideService {
	return &RideService{
		rideRepo:   rideRepo,
		userRepo:   userRepo,
		driverRepo: driverRepo,
		pricing:    pricing,
		settlement: settlement,
		referrals:  referrals,
		locks:      locks,
		notifier:   notifier,
	}
}

// RequestRideRequest contains the parameters for requesting a ride.
type RequestRideRequest struct {
	OriginLat      float64
	OriginLng      float64
	OriginAddress  string
	DestLat        float64
	DestLng        float64
	DestAddress    string
	ServiceType    domain.ServiceType
	VipTier        string
	PaymentMethod  domain.PaymentMethod
	EstimatedPrice int64  // client-side estimate, recomputed when zero
	ScheduledTime  string // RFC 3339, empty for an immediate ride
	PassengerName  string
	PassengerPhone string
}

// RequestRide creates a ride in REQUESTED state, or SCHEDULED when a
// valid future time is given. Immediate rides are broadcast to the
// driver pool.
func (s *RideService) RequestRide(ctx context.Context, p domain.Principal, req RequestRideRequest) (*domain.Ride, error) {
	if decision := Authorize(p, ActionRequestRide); !decision.Allowed {
		return nil, ErrForbidden
	}

	client, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, ErrAccountSuspended
	}

	switch req.PaymentMethod {
	case domain.PaymentMethodCash, domain.PaymentMethodWallet,
		domain.PaymentMethodMobileMoney, domain.PaymentMethodCard:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	var scheduledTime time.Time
	if req.ScheduledTime != "" {
		scheduledTime, err = time.Parse(time.RFC3339, req.ScheduledTime)
		if err != nil {
			return nil, ErrInvalidScheduledTime
		}
	}

	estimatedPrice := req.EstimatedPrice
	if estimatedPrice <= 0 {
		estimate, err := s.pricing.Estimate(EstimateRequest{
			OriginLat:   req.OriginLat,
			OriginLng:   req.OriginLng,
			DestLat:     req.DestLat,
			DestLng:     req.DestLng,
			ServiceType: req.ServiceType,
			VipTier:     req.VipTier,
		})
		if err != nil {
			return nil, err
		}
		estimatedPrice = estimate.EstimatedPrice
	} else {
		// A client-side estimate still goes through coordinate and
		// service checks.
		if !isValidLatitude(req.OriginLat) || !isValidLongitude(req.OriginLng) {
			return nil, ErrInvalidOriginLocation
		}
		if !isValidLatitude(req.DestLat) || !isValidLongitude(req.DestLng) {
			return nil, ErrInvalidDestLocation
		}
		if _, ok := defaultTariffs[req.ServiceType]; !ok {
			return nil, ErrInvalidServiceType
		}
	}

	status := domain.RideStatusRequested
	if !scheduledTime.IsZero() {
		status = domain.RideStatusScheduled
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		ClientID:       p.UserID,
		OriginLat:      req.OriginLat,
		OriginLng:      req.OriginLng,
		OriginAddress:  req.OriginAddress,
		DestLat:        req.DestLat,
		DestLng:        req.DestLng,
		DestAddress:    req.DestAddress,
		ServiceType:    req.ServiceType,
		VipTier:        req.VipTier,
		Status:         status,
		EstimatedPrice: estimatedPrice,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  domain.PaymentStatusPending,
		ScheduledTime:  scheduledTime,
		PassengerName:  req.PassengerName,
		PassengerPhone: req.PassengerPhone,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if status == domain.RideStatusRequested {
		_ = s.notifier.Broadcast(ctx, EventNewRideRequest, map[string]any{
			"rideId":      ride.ID,
			"serviceType": ride.ServiceType,
			"origin":      ride.OriginAddress,
			"destination": ride.DestAddress,
		})
	}

	return ride, nil
}

// AcceptRide assigns the calling driver to an open ride. A Redis lock
// gates the hot path; the database check-and-set is the authority, so
// exactly one of two concurrent drivers wins.
func (s *RideService) AcceptRide(ctx context.Context, p domain.Principal, rideID string) (*domain.Ride, error) {
	if decision := Authorize(p, ActionAcceptRide); !decision.Allowed {
		return nil, ErrForbidden
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	driver, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !driver.IsActive {
		return nil, ErrAccountSuspended
	}
	profile, err := s.driverRepo.GetByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !profile.IsApproved {
		return nil, ErrForbidden
	}

	acquired, err := s.locks.AcquireAcceptLock(ctx, rideID, acceptLockTTL)
	if err == nil && !acquired {
		return nil, ErrRideNotAvailable
	}
	// A lock store error falls through to the database check-and-set.

	err = s.rideRepo.Accept(ctx, rideID, p.UserID)
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrRideNotAvailable
	}
	if err != nil {
		_ = s.locks.ReleaseAcceptLock(ctx, rideID)
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	_ = s.notifier.Notify(ctx, EventRideStatusUpdate, ride.ClientID, map[string]any{
		"rideId":   ride.ID,
		"status":   ride.Status,
		"driverId": ride.DriverID,
	})

	return ride, nil
}

// UpdateStatus advances a ride along the lifecycle. Only the assigned
// driver may advance; transitions are forward-only. Completing a ride
// fixes the final price and runs settlement in the same call.
func (s *RideService) UpdateStatus(ctx context.Context, p domain.Principal, rideID string, next domain.RideStatus, finalPrice int64) (*domain.Ride, error) {
	if decision := Authorize(p, ActionAdvanceRide); !decision.Allowed {
		return nil, ErrForbidden
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != p.UserID {
		return nil, ErrNotRideDriver
	}
	if next == domain.RideStatusCancelled {
		// Drivers do not cancel through status updates.
		return nil, ErrInvalidStatusTransition
	}
	if !domain.CanTransition(ride.Status, next) {
		return nil, ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	prev := ride.Status
	ride.Status = next
	switch next {
	case domain.RideStatusInProgress:
		ride.StartedAt = now
	case domain.RideStatusCompleted:
		ride.CompletedAt = now
		if finalPrice > 0 {
			ride.FinalPrice = finalPrice
		} else {
			ride.FinalPrice = ride.EstimatedPrice
		}
	}

	// The guarded write is what makes the transition monotonic under
	// concurrency: a racing writer invalidates this read and loses.
	if err := s.rideRepo.Transition(ctx, ride, prev); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}

	if next == domain.RideStatusCompleted {
		if err := s.settlement.Settle(ctx, ride, ride.FinalPrice); err != nil {
			// The ride stays COMPLETED; the failed payment is flagged
			// for reconciliation.
			ride.PaymentStatus = domain.PaymentStatusFailed
			_ = s.rideRepo.SetPaymentStatus(ctx, ride.ID, domain.PaymentStatusFailed)
			return nil, fmt.Errorf("%w: %w", ErrSettlementFailed, err)
		}

		// Payout is best-effort; a failure here never unwinds the ride.
		_ = s.referrals.ProcessBonus(ctx, ride.ClientID)
	}

	s.notifyStatus(ctx, ride)
	return ride, nil
}

// CancelRide cancels a non-terminal ride. Clients cancel their own
// rides; admins cancel any.
func (s *RideService) CancelRide(ctx context.Context, p domain.Principal, rideID, reason string) (*domain.Ride, error) {
	if decision := Authorize(p, ActionCancelRide); !decision.Allowed {
		return nil, ErrForbidden
	}
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if p.Role == domain.RoleClient && ride.ClientID != p.UserID {
		return nil, ErrNotRideClient
	}
	if ride.Status.IsTerminal() {
		return nil, ErrRideNotCancellable
	}

	prev := ride.Status
	ride.Status = domain.RideStatusCancelled
	ride.CancelReason = reason
	ride.CancelledAt = time.Now().UTC()
	if err := s.rideRepo.Transition(ctx, ride, prev); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrRideNotCancellable
		}
		return nil, err
	}

	s.notifyStatus(ctx, ride)
	return ride, nil
}

// GetRide returns a ride visible to the caller: its client, its
// assigned driver or an admin.
func (s *RideService) GetRide(ctx context.Context, p domain.Principal, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleAdmin && ride.ClientID != p.UserID && ride.DriverID != p.UserID {
		return nil, ErrForbidden
	}
	return ride, nil
}

// ListOpenRides returns rides still open for acceptance, newest first.
func (s *RideService) ListOpenRides(ctx context.Context, p domain.Principal, limit int) ([]*domain.Ride, error) {
	if decision := Authorize(p, ActionListOpenRides); !decision.Allowed {
		return nil, ErrForbidden
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	requested, err := s.rideRepo.ListByStatus(ctx, domain.RideStatusRequested, limit)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.rideRepo.ListByStatus(ctx, domain.RideStatusScheduled, limit)
	if err != nil {
		return nil, err
	}
	return append(requested, scheduled...), nil
}

// ListMyRides returns the calling client's ride history, newest first.
func (s *RideService) ListMyRides(ctx context.Context, p domain.Principal, limit int) ([]*domain.Ride, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.rideRepo.ListByClient(ctx, p.UserID, limit)
}

func (s *RideService) notifyStatus(ctx context.Context, ride *domain.Ride) {
	payload := map[string]any{
		"rideId": ride.ID,
		"status": ride.Status,
	}
	_ = s.notifier.Notify(ctx, EventRideStatusUpdate, ride.ClientID, payload)
	if ride.DriverID != "" {
		_ = s.notifier.Notify(ctx, EventRideStatusUpdate, ride.DriverID, payload)
	}
}
