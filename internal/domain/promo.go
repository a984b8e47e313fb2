package domain

import "time"

// DiscountType determines how a promo code's value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// PromoCode is a discount code managed by the backoffice.
type PromoCode struct {
	ID             string
	Code           string // stored upper-case
	Description    string
	DiscountType   DiscountType
	DiscountValue  int64 // percent for PERCENTAGE, XAF for FIXED
	MaxUses        int   // 0 = unlimited
	MaxUsesPerUser int
	MinRideAmount  int64 // 0 = no minimum
	UsedCount      int
	IsActive       bool
	StartsAt       time.Time
	ExpiresAt      time.Time // zero = never expires
	ServiceTypes   []ServiceType
	CreatedAt      time.Time
}

// AllowsService reports whether the code may be applied to the given
// service type. An empty restriction list means unrestricted.
func (p *PromoCode) AllowsService(st ServiceType) bool {
	if len(p.ServiceTypes) == 0 {
		return true
	}
	for _, allowed := range p.ServiceTypes {
		if allowed == st {
			return true
		}
	}
	return false
}

// PromoCodeUsage records one application of a code by a user.
type PromoCodeUsage struct {
	ID              string
	PromoCodeID     string
	UserID          string
	RideID          string // optional
	DiscountApplied int64
	CreatedAt       time.Time
}
