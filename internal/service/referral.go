package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// referralCodePrefix marks codes generated by this programme.
const referralCodePrefix = "AFRIGO-"

// ReferralService manages the referral programme: code issuance, code
// application and the one-shot bonus payout.
type ReferralService struct {
	uow          repository.UnitOfWork
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
	rideRepo     repository.RideRepository
	cfg          domain.ReferralConfig
	notifier     Notifier
}

// NewReferralService creates a new ReferralService.
func NewReferralService(
	uow repository.UnitOfWork,
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
	rideRepo repository.RideRepository,
	cfg domain.ReferralConfig,
	notifier Notifier,
) *ReferralService {
	return &ReferralService{
		uow:          uow,
		userRepo:     userRepo,
		referralRepo: referralRepo,
		rideRepo:     rideRepo,
		cfg:          cfg,
		notifier:     notifier,
	}
}

// MyCode returns the user's referral code, generating one on first
// request.
func (s *ReferralService) MyCode(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ReferralCode != "" {
		return user.ReferralCode, nil
	}

	code := generateReferralCode()
	if err := s.userRepo.SetReferralCode(ctx, userID, code); err != nil {
		return "", err
	}
	return code, nil
}

// ApplyCode links the caller to the code's owner. Only brand-new users
// qualify: no prior referrer and no completed rides. The referral is
// created PENDING; the bonus pays out later via ProcessBonus.
func (s *ReferralService) ApplyCode(ctx context.Context, p domain.Principal, code string) (*domain.Referral, error) {
	if decision := Authorize(p, ActionApplyReferral); !decision.Allowed {
		return nil, ErrForbidden
	}
	if !s.cfg.IsActive {
		return nil, ErrReferralInactive
	}

	referrer, err := s.userRepo.GetByReferralCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if referrer.ID == p.UserID {
		return nil, ErrOwnReferralCode
	}

	referee, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if referee.ReferredBy != "" {
		return nil, ErrAlreadyReferred
	}

	completed, err := s.rideRepo.CountCompletedByClient(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if completed > 0 {
		return nil, ErrNotNewUser
	}

	referral := &domain.Referral{
		ID:         uuid.New().String(),
		ReferrerID: referrer.ID,
		RefereeID:  p.UserID,
		Status:     domain.ReferralStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	err = s.uow.Atomic(ctx, func(st repository.Stores) error {
		// The unique referee constraint backstops this create against a
		// concurrent second apply.
		if err := st.Referrals.Create(ctx, referral); err != nil {
			return err
		}
		return st.Users.SetReferredBy(ctx, p.UserID, referrer.ID)
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrAlreadyReferred
	}
	if err != nil {
		return nil, err
	}

	return referral, nil
}

// ListMine returns the referrals the user originated.
func (s *ReferralService) ListMine(ctx context.Context, userID string) ([]*domain.Referral, error) {
	return s.referralRepo.ListByReferrer(ctx, userID)
}

// ProcessBonus pays the referral bonus if the referee just crossed the
// qualifying ride count. Called best-effort after each ride completion;
// the status-guarded update makes the payout happen at most once.
func (s *ReferralService) ProcessBonus(ctx context.Context, refereeID string) error {
	referral, err := s.referralRepo.GetByReferee(ctx, refereeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if referral.Status != domain.ReferralStatusPending {
		return nil
	}

	completed, err := s.rideRepo.CountCompletedByClient(ctx, refereeID)
	if err != nil {
		return err
	}
	if completed < s.cfg.MinRidesForBonus {
		return nil
	}

	now := time.Now().UTC()
	err = s.uow.Atomic(ctx, func(st repository.Stores) error {
		locked, err := st.Referrals.GetByRefereeForUpdate(ctx, refereeID)
		if err != nil {
			return err
		}
		if locked.Status != domain.ReferralStatusPending {
			return nil
		}

		if err := st.Referrals.MarkCompleted(ctx, locked.ID, s.cfg.ReferrerBonus, s.cfg.RefereeBonus, now); err != nil {
			return err
		}

		referrerWallet, err := ensureWallet(ctx, st.Wallets, locked.ReferrerID)
		if err != nil {
			return err
		}
		if err := creditWallet(ctx, st, referrerWallet, s.cfg.ReferrerBonus, domain.TransactionDeposit, "Referral bonus (referrer)"); err != nil {
			return err
		}

		refereeWallet, err := ensureWallet(ctx, st.Wallets, locked.RefereeID)
		if err != nil {
			return err
		}
		return creditWallet(ctx, st, refereeWallet, s.cfg.RefereeBonus, domain.TransactionDeposit, "Referral bonus (referee)")
	})
	if errors.Is(err, repository.ErrConflict) {
		// Another completion already paid this referral.
		return nil
	}
	if err != nil {
		return err
	}

	_ = s.notifier.Notify(ctx, EventReferralBonus, referral.ReferrerID, map[string]any{
		"amount": s.cfg.ReferrerBonus,
	})
	_ = s.notifier.Notify(ctx, EventReferralBonus, referral.RefereeID, map[string]any{
		"amount": s.cfg.RefereeBonus,
	})

	return nil
}

// generateReferralCode produces a short shareable code.
func generateReferralCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return referralCodePrefix + raw[:6]
}
