package domain

import "time"

// ReferralStatus represents the payout state of a referral.
type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "PENDING"
	ReferralStatusCompleted ReferralStatus = "COMPLETED"
)

// Referral links a referred user (referee) to the user whose code they
// applied. A user can be referred at most once; the bonus is paid at
// most once, when the referee reaches the configured ride count.
type Referral struct {
	ID            string
	ReferrerID    string
	RefereeID     string
	Status        ReferralStatus
	ReferrerBonus int64 // zero until paid
	RefereeBonus  int64
	CreatedAt     time.Time
	CompletedAt   time.Time
}

// ReferralConfig holds the referral programme parameters.
type ReferralConfig struct {
	ReferrerBonus    int64
	RefereeBonus     int64
	MinRidesForBonus int
	IsActive         bool
}
