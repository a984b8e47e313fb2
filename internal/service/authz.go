package service

import "afrigo/internal/domain"

// Action identifies an operation guarded by the authorization policy.
type Action string

const (
	ActionRequestRide      Action = "ride.request"
	ActionAcceptRide       Action = "ride.accept"
	ActionAdvanceRide      Action = "ride.advance"
	ActionCancelRide       Action = "ride.cancel"
	ActionListOpenRides    Action = "ride.list_open"
	ActionDeposit          Action = "wallet.deposit"
	ActionWithdraw         Action = "wallet.withdraw"
	ActionApplyPromo       Action = "promo.apply"
	ActionManagePromo      Action = "promo.manage"
	ActionApplyReferral    Action = "referral.apply"
	ActionSubmitRating     Action = "rating.submit"
	ActionManageReputation Action = "reputation.manage"
)

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with a reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// rolePolicy maps each action to the roles allowed to invoke it.
// Ownership checks (is this the ride's client/driver) remain in the
// services, which hold the entities.
var rolePolicy = map[Action][]domain.Role{
	ActionRequestRide:      {domain.RoleClient},
	ActionAcceptRide:       {domain.RoleDriver},
	ActionAdvanceRide:      {domain.RoleDriver},
	ActionCancelRide:       {domain.RoleClient, domain.RoleAdmin},
	ActionListOpenRides:    {domain.RoleDriver, domain.RoleAdmin},
	ActionDeposit:          {domain.RoleClient, domain.RoleAdmin},
	ActionWithdraw:         {domain.RoleDriver},
	ActionApplyPromo:       {domain.RoleClient},
	ActionManagePromo:      {domain.RoleAdmin},
	ActionApplyReferral:    {domain.RoleClient, domain.RoleDriver},
	ActionSubmitRating:     {domain.RoleClient, domain.RoleDriver},
	ActionManageReputation: {domain.RoleAdmin},
}

// Authorize consults the policy once per operation and returns a
// tagged decision.
func Authorize(p domain.Principal, action Action) Decision {
	roles, ok := rolePolicy[action]
	if !ok {
		return Deny("unknown action")
	}
	for _, role := range roles {
		if p.Role == role {
			return Allow
		}
	}
	return Deny("role " + string(p.Role) + " may not perform " + string(action))
}
