package tests

import (
	"afrigo/internal/domain"
	"afrigo/internal/repository"
	"afrigo/internal/service"
)

// fixture wires every service over shared in-memory mocks, the way
// wireServer does over the real stores.
type fixture struct {
	rides     *MockRideRepository
	wallets   *MockWalletRepository
	txns      *MockTransactionRepository
	promos    *MockPromoRepository
	referrals *MockReferralRepository
	users     *MockUserRepository
	profiles  *MockDriverProfileRepository
	ratings   *MockRatingRepository
	ratingCfg *MockRatingConfigRepository
	uow       *MockUnitOfWork
	locks     *MockLockStore
	cache     *MockConfigCache
	notifier  *MockNotifier

	wallet     *service.WalletService
	settlement *service.SettlementService
	promo      *service.PromoService
	referral   *service.ReferralService
	reputation *service.ReputationService
	ride       *service.RideService
}

var testReferralCfg = domain.ReferralConfig{
	ReferrerBonus:    1000,
	RefereeBonus:     500,
	MinRidesForBonus: 1,
	IsActive:         true,
}

func newFixture() *fixture {
	f := &fixture{
		rides:     NewMockRideRepository(),
		wallets:   NewMockWalletRepository(),
		txns:      NewMockTransactionRepository(),
		promos:    NewMockPromoRepository(),
		referrals: NewMockReferralRepository(),
		users:     NewMockUserRepository(),
		profiles:  NewMockDriverProfileRepository(),
		ratings:   NewMockRatingRepository(),
		ratingCfg: NewMockRatingConfigRepository(),
		locks:     NewMockLockStore(),
		cache:     NewMockConfigCache(),
		notifier:  NewMockNotifier(),
	}
	f.uow = NewMockUnitOfWork(repository.Stores{
		Rides:        f.rides,
		Wallets:      f.wallets,
		Transactions: f.txns,
		Promos:       f.promos,
		Referrals:    f.referrals,
		Users:        f.users,
	})

	f.wallet = service.NewWalletService(f.uow, f.wallets, f.txns)
	f.settlement = service.NewSettlementService(f.uow, f.notifier)
	f.promo = service.NewPromoService(f.uow, f.promos)
	f.referral = service.NewReferralService(f.uow, f.users, f.referrals, f.rides, testReferralCfg, f.notifier)
	f.reputation = service.NewReputationService(f.ratings, f.ratingCfg, f.rides, f.users, f.profiles, f.cache, f.notifier)
	f.ride = service.NewRideService(f.rides, f.users, f.profiles, service.NewPricingService(), f.settlement, f.referral, f.locks, f.notifier)

	return f
}

// Canonical principals used across the suite.
var (
	clientPrincipal = domain.Principal{UserID: "client-1", Role: domain.RoleClient}
	driverPrincipal = domain.Principal{UserID: "driver-1", Role: domain.RoleDriver}
	adminPrincipal  = domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin}
)

// seedClient registers an active client account.
func (f *fixture) seedClient(id string) *domain.User {
	u := &domain.User{ID: id, Role: domain.RoleClient, IsActive: true, ReputationStatus: domain.ReputationGood}
	f.users.AddUser(u)
	return u
}

// seedDriver registers an active approved driver with its profile.
func (f *fixture) seedDriver(id string) *domain.User {
	u := &domain.User{ID: id, Role: domain.RoleDriver, IsActive: true, ReputationStatus: domain.ReputationGood}
	f.users.AddUser(u)
	f.profiles.AddProfile(&domain.DriverProfile{
		ID:               "profile-" + id,
		UserID:           id,
		IsApproved:       true,
		IsAvailable:      true,
		ReputationStatus: domain.ReputationGood,
	})
	return u
}

// seedWallet gives a user a wallet with the given balance.
func (f *fixture) seedWallet(userID string, balance int64) *domain.Wallet {
	w := &domain.Wallet{ID: "wallet-" + userID, UserID: userID, Balance: balance}
	f.wallets.AddWallet(w)
	return w
}

// seedOpenRide stores a REQUESTED ride for client-1.
func (f *fixture) seedOpenRide(id string) *domain.Ride {
	r := &domain.Ride{
		ID:             id,
		ClientID:       "client-1",
		Status:         domain.RideStatusRequested,
		ServiceType:    domain.ServiceTypeTaxi,
		EstimatedPrice: 1500,
		PaymentMethod:  domain.PaymentMethodCash,
		PaymentStatus:  domain.PaymentStatusPending,
	}
	f.rides.AddRide(r)
	return r
}
