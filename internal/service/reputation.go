package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"afrigo/internal/domain"
	"afrigo/internal/redis"
	"afrigo/internal/repository"
)

// ReputationService scores accounts from ride ratings and enforces the
// suspension policy.
type ReputationService struct {
	ratingRepo repository.RatingRepository
	configRepo repository.RatingConfigRepository
	rideRepo   repository.RideRepository
	userRepo   repository.UserRepository
	driverRepo repository.DriverProfileRepository
	cache      redis.ConfigCacheInterface
	notifier   Notifier
}

// NewReputationService creates a new ReputationService.
func NewReputationService(
	ratingRepo repository.RatingRepository,
	configRepo repository.RatingConfigRepository,
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	driverRepo repository.DriverProfileRepository,
	cache redis.ConfigCacheInterface,
	notifier Notifier,
) *ReputationService {
	return &ReputationService{
		ratingRepo: ratingRepo,
		configRepo: configRepo,
		rideRepo:   rideRepo,
		userRepo:   userRepo,
		driverRepo: driverRepo,
		cache:      cache,
		notifier:   notifier,
	}
}

// SubmitRatingRequest contains the parameters for rating a ride.
type SubmitRatingRequest struct {
	RideID  string
	Rating  int
	Comment string
}

// SubmitRating records a 1-5 rating for the other side of a completed
// ride and recomputes the ratee's reputation. Resubmitting for the same
// ride overwrites the previous rating.
func (s *ReputationService) SubmitRating(ctx context.Context, p domain.Principal, req SubmitRatingRequest) (*domain.RideRating, error) {
	if decision := Authorize(p, ActionSubmitRating); !decision.Allowed {
		return nil, ErrForbidden
	}
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusCompleted {
		return nil, ErrRideNotCompleted
	}

	var raterType, rateeType domain.RaterType
	var rateeID string
	switch p.UserID {
	case ride.ClientID:
		raterType, rateeType, rateeID = domain.RaterClient, domain.RaterDriver, ride.DriverID
	case ride.DriverID:
		raterType, rateeType, rateeID = domain.RaterDriver, domain.RaterClient, ride.ClientID
	default:
		return nil, ErrForbidden
	}

	rating := &domain.RideRating{
		ID:        uuid.New().String(),
		RideID:    ride.ID,
		RaterID:   p.UserID,
		RaterType: raterType,
		RateeID:   rateeID,
		RateeType: rateeType,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, rateeID, rateeType); err != nil {
		return nil, err
	}

	return rating, nil
}

// recompute rescans the ratee's recent ratings and stores the derived
// reputation. Suspension is sticky: only an admin reset lifts it.
func (s *ReputationService) recompute(ctx context.Context, rateeID string, rateeType domain.RaterType) error {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return err
	}

	window, err := s.ratingRepo.ListRecentByRatee(ctx, rateeID, rateeType, cfg.EvaluationPeriod)
	if err != nil {
		return err
	}
	total, err := s.ratingRepo.CountByRatee(ctx, rateeID, rateeType)
	if err != nil {
		return err
	}

	var sum int
	streak := 0
	counting := true
	for i, r := range window {
		sum += r.Rating
		if counting {
			if r.Rating <= cfg.BadRatingThreshold {
				streak = i + 1
			} else {
				counting = false
			}
		}
	}

	var average float64
	if len(window) > 0 {
		average = math.Round(float64(sum)/float64(len(window))*10) / 10
	}

	status := domain.ClassifyReputation(streak, cfg)

	user, err := s.userRepo.GetByID(ctx, rateeID)
	if err != nil {
		return err
	}
	wasSuspended := user.ReputationStatus == domain.ReputationSuspended
	if wasSuspended {
		status = domain.ReputationSuspended
	}

	upd := repository.ReputationUpdate{
		AverageRating:         average,
		TotalRatings:          total,
		ConsecutiveBadRatings: streak,
		Status:                status,
	}
	if err := s.userRepo.UpdateReputation(ctx, rateeID, upd); err != nil {
		return err
	}

	var profile *domain.DriverProfile
	if rateeType == domain.RaterDriver {
		profile, err = s.driverRepo.GetByUserID(ctx, rateeID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if profile != nil {
			if err := s.driverRepo.UpdateReputation(ctx, profile.ID, upd); err != nil {
				return err
			}
		}
	}

	if status == domain.ReputationSuspended && !wasSuspended {
		now := time.Now().UTC()
		if err := s.userRepo.Suspend(ctx, rateeID, "Too many consecutive bad ratings", now); err != nil {
			return err
		}
		if profile != nil {
			if err := s.driverRepo.Suspend(ctx, profile.ID); err != nil {
				return err
			}
		}
		_ = s.notifier.Notify(ctx, EventAccountSuspended, rateeID, map[string]any{
			"reason": "Too many consecutive bad ratings",
		})
	}

	return nil
}

// loadConfig reads the reputation policy, cache first.
func (s *ReputationService) loadConfig(ctx context.Context) (domain.RatingConfig, error) {
	if cached, err := s.cache.GetRatingConfig(ctx); err == nil && cached != nil {
		return *cached, nil
	}

	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return domain.RatingConfig{}, err
	}
	_ = s.cache.SetRatingConfig(ctx, cfg)
	return cfg, nil
}

// GetConfig returns the reputation policy. Admin only.
func (s *ReputationService) GetConfig(ctx context.Context, p domain.Principal) (domain.RatingConfig, error) {
	if decision := Authorize(p, ActionManageReputation); !decision.Allowed {
		return domain.RatingConfig{}, ErrForbidden
	}
	return s.loadConfig(ctx)
}

// UpdateConfig replaces the reputation policy and drops the cached copy.
func (s *ReputationService) UpdateConfig(ctx context.Context, p domain.Principal, cfg domain.RatingConfig) error {
	if decision := Authorize(p, ActionManageReputation); !decision.Allowed {
		return ErrForbidden
	}
	if cfg.BadRatingThreshold < 1 || cfg.BadRatingThreshold > 5 {
		return ErrInvalidRatingConfig
	}
	if cfg.WarningThreshold < 1 ||
		cfg.RedZoneThreshold < cfg.WarningThreshold ||
		cfg.AutoSuspendThreshold < cfg.RedZoneThreshold {
		return ErrInvalidRatingConfig
	}
	if cfg.EvaluationPeriod < 1 {
		return ErrInvalidRatingConfig
	}

	if err := s.configRepo.Update(ctx, cfg); err != nil {
		return err
	}
	_ = s.cache.InvalidateRatingConfig(ctx)
	return nil
}

// ResetReputation clears an account's streak and lifts any suspension.
// Admin only.
func (s *ReputationService) ResetReputation(ctx context.Context, p domain.Principal, userID string) error {
	if decision := Authorize(p, ActionManageReputation); !decision.Allowed {
		return ErrForbidden
	}

	if err := s.userRepo.ResetReputation(ctx, userID, true); err != nil {
		return err
	}

	profile, err := s.driverRepo.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.driverRepo.ResetReputation(ctx, profile.ID, true)
}

// ListAtRisk returns accounts in RED_ZONE or SUSPENDED standing. Admin
// only.
func (s *ReputationService) ListAtRisk(ctx context.Context, p domain.Principal) ([]*domain.User, error) {
	if decision := Authorize(p, ActionManageReputation); !decision.Allowed {
		return nil, ErrForbidden
	}
	return s.userRepo.ListByReputation(ctx, []domain.ReputationStatus{
		domain.ReputationRedZone,
		domain.ReputationSuspended,
	})
}
