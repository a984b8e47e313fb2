package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// PromoService validates and applies promo codes and manages their
// definitions.
type PromoService struct {
	uow       repository.UnitOfWork
	promoRepo repository.PromoRepository
}

// NewPromoService creates a new PromoService.
func NewPromoService(uow repository.UnitOfWork, promoRepo repository.PromoRepository) *PromoService {
	return &PromoService{
		uow:       uow,
		promoRepo: promoRepo,
	}
}

// PromoQuote is the outcome of validating a code against a ride amount.
type PromoQuote struct {
	PromoID     string
	Code        string
	Discount    int64
	FinalAmount int64
}

// Validate checks a code against a prospective ride without consuming
// any usage. Checks run in a fixed order so callers get a stable first
// failure.
func (s *PromoService) Validate(ctx context.Context, userID, code string, rideAmount int64, serviceType domain.ServiceType) (*PromoQuote, error) {
	if rideAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	promo, err := s.promoRepo.GetByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}

	if err := s.checkEligibility(ctx, s.promoRepo, promo, userID, rideAmount, serviceType); err != nil {
		return nil, err
	}

	discount := discountFor(promo, rideAmount)
	return &PromoQuote{
		PromoID:     promo.ID,
		Code:        promo.Code,
		Discount:    discount,
		FinalAmount: rideAmount - discount,
	}, nil
}

// Apply consumes one usage of a code for the user. The eligibility
// re-check, counter bump and usage record commit atomically with the
// code row locked, so two concurrent applies of a code's last use
// cannot both succeed.
func (s *PromoService) Apply(ctx context.Context, p domain.Principal, code string, rideAmount int64, serviceType domain.ServiceType, rideID string) (*PromoQuote, error) {
	if decision := Authorize(p, ActionApplyPromo); !decision.Allowed {
		return nil, ErrForbidden
	}
	if rideAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	var quote *PromoQuote
	err := s.uow.Atomic(ctx, func(st repository.Stores) error {
		promo, err := st.Promos.GetByCodeForUpdate(ctx, normalizeCode(code))
		if err != nil {
			return err
		}

		if err := s.checkEligibility(ctx, st.Promos, promo, p.UserID, rideAmount, serviceType); err != nil {
			return err
		}

		discount := discountFor(promo, rideAmount)

		if err := st.Promos.IncrementUsedCount(ctx, promo.ID); err != nil {
			return err
		}
		if err := st.Promos.CreateUsage(ctx, &domain.PromoCodeUsage{
			ID:              uuid.New().String(),
			PromoCodeID:     promo.ID,
			UserID:          p.UserID,
			RideID:          rideID,
			DiscountApplied: discount,
			CreatedAt:       time.Now().UTC(),
		}); err != nil {
			return err
		}

		quote = &PromoQuote{
			PromoID:     promo.ID,
			Code:        promo.Code,
			Discount:    discount,
			FinalAmount: rideAmount - discount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return quote, nil
}

// checkEligibility runs the validation chain in order: active, window,
// global limit, per-user limit, minimum amount, service restriction.
func (s *PromoService) checkEligibility(ctx context.Context, promos repository.PromoRepository, promo *domain.PromoCode, userID string, rideAmount int64, serviceType domain.ServiceType) error {
	now := time.Now().UTC()

	if !promo.IsActive {
		return ErrPromoNotActive
	}
	if now.Before(promo.StartsAt) {
		return ErrPromoNotStarted
	}
	if !promo.ExpiresAt.IsZero() && now.After(promo.ExpiresAt) {
		return ErrPromoExpired
	}
	if promo.MaxUses > 0 && promo.UsedCount >= promo.MaxUses {
		return ErrPromoExhausted
	}

	used, err := promos.CountUsagesByUser(ctx, promo.ID, userID)
	if err != nil {
		return err
	}
	if promo.MaxUsesPerUser > 0 && used >= promo.MaxUsesPerUser {
		return ErrPromoAlreadyUsed
	}

	// The minimum applies to the pre-discount amount.
	if promo.MinRideAmount > 0 && rideAmount < promo.MinRideAmount {
		return ErrPromoMinAmount
	}
	if !promo.AllowsService(serviceType) {
		return ErrPromoServiceType
	}

	return nil
}

// discountFor computes the discount a code yields on an amount. The
// discount never exceeds the amount.
func discountFor(promo *domain.PromoCode, amount int64) int64 {
	var discount int64
	switch promo.DiscountType {
	case domain.DiscountPercentage:
		discount = (amount*promo.DiscountValue + 50) / 100
	case domain.DiscountFixed:
		discount = promo.DiscountValue
	}
	if discount > amount {
		discount = amount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// CreatePromoRequest contains the parameters for a new promo code.
type CreatePromoRequest struct {
	Code           string
	Description    string
	DiscountType   domain.DiscountType
	DiscountValue  int64
	MaxUses        int
	MaxUsesPerUser int
	MinRideAmount  int64
	StartsAt       time.Time
	ExpiresAt      time.Time
	ServiceTypes   []domain.ServiceType
}

// Create registers a new promo code. Admin only.
func (s *PromoService) Create(ctx context.Context, p domain.Principal, req CreatePromoRequest) (*domain.PromoCode, error) {
	if decision := Authorize(p, ActionManagePromo); !decision.Allowed {
		return nil, ErrForbidden
	}

	code := normalizeCode(req.Code)
	if code == "" {
		return nil, ErrInvalidDiscount
	}
	switch req.DiscountType {
	case domain.DiscountPercentage:
		if req.DiscountValue <= 0 || req.DiscountValue > 100 {
			return nil, ErrInvalidDiscount
		}
	case domain.DiscountFixed:
		if req.DiscountValue <= 0 {
			return nil, ErrInvalidDiscount
		}
	default:
		return nil, ErrInvalidDiscount
	}
	for _, st := range req.ServiceTypes {
		if _, ok := defaultTariffs[st]; !ok {
			return nil, ErrInvalidServiceType
		}
	}

	startsAt := req.StartsAt
	if startsAt.IsZero() {
		startsAt = time.Now().UTC()
	}
	if !req.ExpiresAt.IsZero() && req.ExpiresAt.Before(startsAt) {
		return nil, ErrInvalidDiscount
	}

	maxUsesPerUser := req.MaxUsesPerUser
	if maxUsesPerUser <= 0 {
		maxUsesPerUser = 1
	}

	promo := &domain.PromoCode{
		ID:             uuid.New().String(),
		Code:           code,
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MaxUses:        req.MaxUses,
		MaxUsesPerUser: maxUsesPerUser,
		MinRideAmount:  req.MinRideAmount,
		IsActive:       true,
		StartsAt:       startsAt,
		ExpiresAt:      req.ExpiresAt,
		ServiceTypes:   req.ServiceTypes,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.promoRepo.Create(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// List returns promo codes for the backoffice, newest first.
func (s *PromoService) List(ctx context.Context, p domain.Principal, limit int) ([]*domain.PromoCode, error) {
	if decision := Authorize(p, ActionManagePromo); !decision.Allowed {
		return nil, ErrForbidden
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.promoRepo.List(ctx, limit)
}

// SetActive toggles a code on or off. Admin only.
func (s *PromoService) SetActive(ctx context.Context, p domain.Principal, promoID string, active bool) error {
	if decision := Authorize(p, ActionManagePromo); !decision.Allowed {
		return ErrForbidden
	}
	return s.promoRepo.SetActive(ctx, promoID, active)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
