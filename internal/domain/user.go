package domain

import "time"

// Role is the authenticated role attached to a principal.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleDriver Role = "DRIVER"
	RoleAdmin  Role = "ADMIN"
)

// Principal is the opaque authenticated identity produced by the edge
// auth layer. The core trusts it and performs no credential checks.
type Principal struct {
	UserID string
	Role   Role
}

// User represents an account (client or driver owner). Reputation
// fields are derived state, recomputed on every rating.
type User struct {
	ID                    string
	Phone                 string
	FirstName             string
	LastName              string
	Role                  Role
	IsActive              bool
	ReferralCode          string // empty until generated
	ReferredBy            string // referrer user ID, empty if none
	AverageRating         float64
	TotalRatings          int
	ConsecutiveBadRatings int
	ReputationStatus      ReputationStatus
	SuspendedAt           time.Time
	SuspendReason         string
	CreatedAt             time.Time
}

// DriverProfile carries the driver-side operational and reputation
// state for a user with the DRIVER role.
type DriverProfile struct {
	ID                    string
	UserID                string
	IsApproved            bool
	IsAvailable           bool
	AverageRating         float64
	TotalRatings          int
	ConsecutiveBadRatings int
	ReputationStatus      ReputationStatus
}
