package domain

import "time"

// RaterType identifies which side of the ride submitted a rating.
type RaterType string

const (
	RaterClient RaterType = "CLIENT"
	RaterDriver RaterType = "DRIVER"
)

// RideRating is a 1-5 star rating for one side of a completed ride.
// At most one rating exists per (ride, rater type); resubmission
// overwrites it.
type RideRating struct {
	ID        string
	RideID    string
	RaterID   string
	RaterType RaterType
	RateeID   string
	RateeType RaterType
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// ReputationStatus classifies an account's standing based on its
// consecutive bad rating streak.
type ReputationStatus string

const (
	ReputationGood      ReputationStatus = "GOOD"
	ReputationWarning   ReputationStatus = "WARNING"
	ReputationRedZone   ReputationStatus = "RED_ZONE"
	ReputationSuspended ReputationStatus = "SUSPENDED"
)

// RatingConfig is the singleton reputation policy. EvaluationPeriod is
// the size of the newest-first rating window used for scoring.
type RatingConfig struct {
	BadRatingThreshold   int
	WarningThreshold     int
	RedZoneThreshold     int
	AutoSuspendThreshold int
	EvaluationPeriod     int
}

// DefaultRatingConfig returns the policy used until an admin overrides it.
func DefaultRatingConfig() RatingConfig {
	return RatingConfig{
		BadRatingThreshold:   2,
		WarningThreshold:     2,
		RedZoneThreshold:     3,
		AutoSuspendThreshold: 5,
		EvaluationPeriod:     10,
	}
}

// ClassifyReputation maps a consecutive-bad-rating streak to a status,
// most severe first.
func ClassifyReputation(consecutiveBad int, cfg RatingConfig) ReputationStatus {
	switch {
	case consecutiveBad >= cfg.AutoSuspendThreshold:
		return ReputationSuspended
	case consecutiveBad >= cfg.RedZoneThreshold:
		return ReputationRedZone
	case consecutiveBad >= cfg.WarningThreshold:
		return ReputationWarning
	default:
		return ReputationGood
	}
}
