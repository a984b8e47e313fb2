package service

import (
	"context"
	"log"
)

// Notification event names. These mirror the socket events the mobile
// clients subscribe to.
const (
	EventNewRideRequest   = "new_ride_request"
	EventRideStatusUpdate = "ride_status_update"
	EventPaymentReceipt   = "payment_receipt"
	EventReferralBonus    = "referral_bonus"
	EventAccountSuspended = "account_suspended"
)

// Notifier delivers events to users. Delivery is fire-and-forget:
// callers ignore errors and a failed delivery never blocks or fails
// the originating state transition.
type Notifier interface {
	// Notify delivers an event to one user.
	Notify(ctx context.Context, event, userID string, payload map[string]any) error

	// Broadcast delivers an event to the whole driver pool.
	Broadcast(ctx context.Context, event string, payload map[string]any) error
}

// LogNotifier is the default Notifier. Real delivery (push, sockets)
// belongs to the external notification service; this implementation
// records the event for local development and tests.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs an event addressed to one user.
func (n *LogNotifier) Notify(ctx context.Context, event, userID string, payload map[string]any) error {
	log.Printf("[NOTIFY] event=%s user=%s payload=%v", event, userID, payload)
	return nil
}

// Broadcast logs an event addressed to the driver pool.
func (n *LogNotifier) Broadcast(ctx context.Context, event string, payload map[string]any) error {
	log.Printf("[NOTIFY] event=%s broadcast=drivers payload=%v", event, payload)
	return nil
}

// Ensure LogNotifier implements Notifier.
var _ Notifier = (*LogNotifier)(nil)
