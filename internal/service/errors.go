package service

import "errors"

var (
	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidOriginLocation is returned when origin coordinates are invalid.
	ErrInvalidOriginLocation = errors.New("invalid origin location")

	// ErrInvalidDestLocation is returned when destination coordinates are invalid.
	ErrInvalidDestLocation = errors.New("invalid destination location")

	// ErrInvalidServiceType is returned when the service type is unknown.
	ErrInvalidServiceType = errors.New("invalid service type")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidScheduledTime is returned when scheduledTime cannot be parsed.
	ErrInvalidScheduledTime = errors.New("invalid scheduled time")

	// ErrRideNotAvailable is returned to the loser of an accept race or
	// when accepting a ride past acceptance.
	ErrRideNotAvailable = errors.New("ride not available")

	// ErrInvalidStatusTransition is returned for a transition outside
	// the lifecycle graph.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrRideNotCancellable is returned when cancelling a terminal ride.
	ErrRideNotCancellable = errors.New("ride cannot be cancelled in current state")

	// ErrNotRideDriver is returned when the caller is not the ride's
	// assigned driver.
	ErrNotRideDriver = errors.New("not the ride's assigned driver")

	// ErrNotRideClient is returned when the caller is not the ride's client.
	ErrNotRideClient = errors.New("not the ride's client")

	// ErrForbidden is returned when the authorization policy denies an
	// operation.
	ErrForbidden = errors.New("operation not permitted for this role")

	// ErrAccountSuspended is returned when a suspended account attempts
	// an operation.
	ErrAccountSuspended = errors.New("account suspended")

	// ErrInvalidAmount is returned for non-positive money amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is returned when a debit exceeds the wallet balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSettlementFailed wraps a settlement that could not complete
	// atomically. The ride stays COMPLETED; payment needs reconciliation.
	ErrSettlementFailed = errors.New("settlement failed")

	// ErrPromoNotActive is returned for a deactivated promo code.
	ErrPromoNotActive = errors.New("promo code is not active")

	// ErrPromoNotStarted is returned before a code's start date.
	ErrPromoNotStarted = errors.New("promo code is not yet valid")

	// ErrPromoExpired is returned after a code's expiry date.
	ErrPromoExpired = errors.New("promo code has expired")

	// ErrPromoExhausted is returned when a code reached its global usage limit.
	ErrPromoExhausted = errors.New("promo code usage limit reached")

	// ErrPromoAlreadyUsed is returned when the user exhausted their
	// per-user allowance for a code.
	ErrPromoAlreadyUsed = errors.New("promo code already used")

	// ErrPromoMinAmount is returned when the ride amount is below the
	// code's minimum.
	ErrPromoMinAmount = errors.New("ride amount below promo minimum")

	// ErrPromoServiceType is returned when the code excludes the
	// requested service type.
	ErrPromoServiceType = errors.New("promo code not valid for this service")

	// ErrInvalidDiscount is returned for malformed promo definitions.
	ErrInvalidDiscount = errors.New("invalid discount definition")

	// ErrReferralInactive is returned while the referral programme is off.
	ErrReferralInactive = errors.New("referral programme is disabled")

	// ErrAlreadyReferred is returned when the user already has a referrer.
	ErrAlreadyReferred = errors.New("referral code already applied")

	// ErrNotNewUser is returned when a user with ride history applies a
	// referral code.
	ErrNotNewUser = errors.New("referral codes are for new users only")

	// ErrOwnReferralCode is returned on self-referral.
	ErrOwnReferralCode = errors.New("cannot use your own referral code")

	// ErrInvalidRating is returned for ratings outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrRideNotCompleted is returned when rating a non-completed ride.
	ErrRideNotCompleted = errors.New("can only rate completed rides")

	// ErrInvalidRatingConfig is returned for inconsistent threshold updates.
	ErrInvalidRatingConfig = errors.New("invalid rating config")
)
