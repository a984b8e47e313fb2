package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusScheduled  RideStatus = "SCHEDULED"
	RideStatusRequested  RideStatus = "REQUESTED"
	RideStatusAccepted   RideStatus = "ACCEPTED"
	RideStatusArrived    RideStatus = "ARRIVED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// IsTerminal reports whether the status permits no further transitions.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// CanTransition reports whether a ride may move from one status to
// another. Transitions are forward-only; cancellation is reachable from
// any non-terminal state.
func CanTransition(from, to RideStatus) bool {
	if to == RideStatusCancelled {
		return !from.IsTerminal()
	}

	switch from {
	case RideStatusScheduled, RideStatusRequested:
		return to == RideStatusAccepted
	case RideStatusAccepted:
		return to == RideStatusArrived
	case RideStatusArrived:
		return to == RideStatusInProgress
	case RideStatusInProgress:
		return to == RideStatusCompleted
	default:
		return false
	}
}

// ServiceType represents the class of vehicle requested for a ride.
type ServiceType string

const (
	ServiceTypeTaxi    ServiceType = "TAXI"
	ServiceTypeMoto    ServiceType = "MOTO"
	ServiceTypeConfort ServiceType = "CONFORT"
	ServiceTypeVIP     ServiceType = "VIP"
)

// PaymentMethod represents the funding source for a ride.
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodWallet      PaymentMethod = "WALLET"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCard        PaymentMethod = "CARD"
)

// PaymentStatus represents the settlement state of a ride's payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Ride represents one transportation request. All money amounts are
// integer XAF; the currency has no fractional unit.
type Ride struct {
	ID             string
	ClientID       string
	DriverID       string // empty until accepted
	OriginLat      float64
	OriginLng      float64
	OriginAddress  string
	DestLat        float64
	DestLng        float64
	DestAddress    string
	ServiceType    ServiceType
	VipTier        string // only for VIP service
	Status         RideStatus
	EstimatedPrice int64
	FinalPrice     int64 // zero until completed
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	ScheduledTime  time.Time // zero for immediate rides
	PassengerName  string    // booking for someone else
	PassengerPhone string
	CancelReason   string
	CreatedAt      time.Time
	StartedAt      time.Time
	CompletedAt    time.Time
	CancelledAt    time.Time
}
