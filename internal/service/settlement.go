package service

import (
	"context"
	"errors"
	"fmt"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// commissionPercent is the platform's cut of every fare.
const commissionPercent = 20

// Commission returns the platform commission on a fare, rounded half up.
func Commission(amount int64) int64 {
	return (amount*commissionPercent + 50) / 100
}

// DriverNet returns the driver's share of a fare after commission.
func DriverNet(amount int64) int64 {
	return amount - Commission(amount)
}

// SettlementService moves money when a ride completes. All wallet
// mutations, their transaction records and the ride's payment status
// commit in one atomic unit; on any failure the ledger is untouched.
type SettlementService struct {
	uow      repository.UnitOfWork
	notifier Notifier
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(uow repository.UnitOfWork, notifier Notifier) *SettlementService {
	return &SettlementService{
		uow:      uow,
		notifier: notifier,
	}
}

// Settle runs payment processing for a completed ride. The amount is
// the final fare. Settlement by payment method:
//
//	CASH          driver collected the fare in person; the platform
//	              recovers its commission from the driver wallet, which
//	              may go negative.
//	WALLET        client wallet pays the full fare, driver wallet
//	              receives the fare net of commission. Aborts with
//	              ErrInsufficientFunds if the client balance is short.
//	MOBILE_MONEY  funds arrive out of band; the driver wallet receives
//	CARD          the fare net of commission.
func (s *SettlementService) Settle(ctx context.Context, ride *domain.Ride, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	commission := Commission(amount)
	driverNet := amount - commission

	err := s.uow.Atomic(ctx, func(st repository.Stores) error {
		switch ride.PaymentMethod {
		case domain.PaymentMethodCash:
			driverWallet, err := ensureWallet(ctx, st.Wallets, ride.DriverID)
			if err != nil {
				return err
			}
			desc := fmt.Sprintf("Commission for ride %s", ride.ID)
			if err := debitWallet(ctx, st, driverWallet, commission, domain.TransactionCommission, desc); err != nil {
				return err
			}

		case domain.PaymentMethodWallet:
			// Check the client's funds before touching any wallet so a
			// short balance aborts with nothing mutated.
			clientWallet, err := st.Wallets.GetByUserIDForUpdate(ctx, ride.ClientID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrInsufficientFunds
				}
				return err
			}
			if clientWallet.Balance < amount {
				return ErrInsufficientFunds
			}

			driverWallet, err := ensureWallet(ctx, st.Wallets, ride.DriverID)
			if err != nil {
				return err
			}

			payDesc := fmt.Sprintf("Payment for ride %s", ride.ID)
			if err := debitWallet(ctx, st, clientWallet, amount, domain.TransactionRidePay, payDesc); err != nil {
				return err
			}
			earnDesc := fmt.Sprintf("Earning for ride %s", ride.ID)
			if err := creditWallet(ctx, st, driverWallet, driverNet, domain.TransactionRideEarn, earnDesc); err != nil {
				return err
			}

		case domain.PaymentMethodMobileMoney, domain.PaymentMethodCard:
			driverWallet, err := ensureWallet(ctx, st.Wallets, ride.DriverID)
			if err != nil {
				return err
			}
			earnDesc := fmt.Sprintf("Earning for ride %s", ride.ID)
			if err := creditWallet(ctx, st, driverWallet, driverNet, domain.TransactionRideEarn, earnDesc); err != nil {
				return err
			}

		default:
			return ErrInvalidPaymentMethod
		}

		return st.Rides.SetPaymentStatus(ctx, ride.ID, domain.PaymentStatusCompleted)
	})
	if err != nil {
		return err
	}

	ride.PaymentStatus = domain.PaymentStatusCompleted

	_ = s.notifier.Notify(ctx, EventPaymentReceipt, ride.ClientID, map[string]any{
		"rideId": ride.ID,
		"amount": amount,
		"method": ride.PaymentMethod,
	})
	_ = s.notifier.Notify(ctx, EventPaymentReceipt, ride.DriverID, map[string]any{
		"rideId":     ride.ID,
		"amount":     amount,
		"commission": commission,
		"earning":    driverNet,
		"method":     ride.PaymentMethod,
	})

	return nil
}
