package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"afrigo/internal/domain"
	"afrigo/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount int32
	AcceptCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *ride
	m.rides[ride.ID] = &copied
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *ride
	return &copied, nil
}

func (m *MockRideRepository) ListByStatus(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Ride
	for _, r := range m.rides {
		if r.Status == status {
			copied := *r
			out = append(out, &copied)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockRideRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Ride
	for _, r := range m.rides {
		if r.ClientID == clientID {
			copied := *r
			out = append(out, &copied)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Accept performs the check-and-set under the mock's lock, mirroring
// the conditional UPDATE: exactly one concurrent caller wins.
func (m *MockRideRepository) Accept(ctx context.Context, rideID, driverID string) error {
	atomic.AddInt32(&m.AcceptCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusRequested && ride.Status != domain.RideStatusScheduled {
		return repository.ErrConflict
	}
	ride.Status = domain.RideStatusAccepted
	ride.DriverID = driverID
	return nil
}

// Transition performs the guarded write under the mock's lock,
// mirroring the conditional UPDATE: the write lands only if the stored
// status still matches what the caller read.
func (m *MockRideRepository) Transition(ctx context.Context, ride *domain.Ride, from domain.RideStatus) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rides[ride.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrConflict
	}
	*stored = *ride
	return nil
}

func (m *MockRideRepository) SetPaymentStatus(ctx context.Context, rideID string, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	ride.PaymentStatus = status
	return nil
}

func (m *MockRideRepository) CountCompletedByClient(ctx context.Context, clientID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.rides {
		if r.ClientID == clientID && r.Status == domain.RideStatusCompleted {
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────
// MOCK WALLET + TRANSACTION REPOSITORIES
// ──────────────────────────────────────────────

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet // keyed by wallet ID

	AddToBalanceCallCount int32

	CreateError       error
	AddToBalanceError error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

// AddWallet adds a wallet to the mock repository.
func (m *MockWalletRepository) AddWallet(w *domain.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[w.ID] = w
}

// Create mirrors the unique index on user_id: a second wallet for the
// same user is rejected with ErrConflict.
func (m *MockWalletRepository) Create(ctx context.Context, w *domain.Wallet) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.wallets {
		if existing.UserID == w.UserID {
			return repository.ErrConflict
		}
	}
	copied := *w
	m.wallets[w.ID] = &copied
	return nil
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.wallets {
		if w.UserID == userID {
			copied := *w
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	return m.GetByUserID(ctx, userID)
}

func (m *MockWalletRepository) AddToBalance(ctx context.Context, walletID string, delta int64) error {
	atomic.AddInt32(&m.AddToBalanceCallCount, 1)
	if m.AddToBalanceError != nil {
		return m.AddToBalanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[walletID]
	if !ok {
		return repository.ErrNotFound
	}
	w.Balance += delta
	return nil
}

// BalanceOf returns the balance of a user's wallet, zero if none.
func (m *MockWalletRepository) BalanceOf(userID string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.wallets {
		if w.UserID == userID {
			return w.Balance
		}
	}
	return 0
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns []*domain.Transaction

	CreateCallCount int32
	CreateError     error
}

// NewMockTransactionRepository creates a new mock transaction repository.
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *txn
	m.txns = append(m.txns, &copied)
	return nil
}

func (m *MockTransactionRepository) ListByWallet(ctx context.Context, walletID string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	// Newest first.
	for i := len(m.txns) - 1; i >= 0; i-- {
		if m.txns[i].WalletID == walletID {
			copied := *m.txns[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

// All returns every recorded transaction in insertion order.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, len(m.txns))
	copy(out, m.txns)
	return out
}

// ──────────────────────────────────────────────
// MOCK PROMO REPOSITORY
// ──────────────────────────────────────────────

// MockPromoRepository is a mock implementation of PromoRepository.
type MockPromoRepository struct {
	mu     sync.RWMutex
	promos map[string]*domain.PromoCode // keyed by ID
	usages []*domain.PromoCodeUsage

	IncrementCallCount int32
}

// NewMockPromoRepository creates a new mock promo repository.
func NewMockPromoRepository() *MockPromoRepository {
	return &MockPromoRepository{
		promos: make(map[string]*domain.PromoCode),
	}
}

// AddPromo adds a promo code to the mock repository.
func (m *MockPromoRepository) AddPromo(p *domain.PromoCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promos[p.ID] = p
}

func (m *MockPromoRepository) Create(ctx context.Context, p *domain.PromoCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.promos {
		if existing.Code == p.Code {
			return repository.ErrConflict
		}
	}
	copied := *p
	m.promos[p.ID] = &copied
	return nil
}

func (m *MockPromoRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.promos {
		if p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPromoRepository) GetByCodeForUpdate(ctx context.Context, code string) (*domain.PromoCode, error) {
	return m.GetByCode(ctx, code)
}

func (m *MockPromoRepository) GetByID(ctx context.Context, id string) (*domain.PromoCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.promos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *MockPromoRepository) List(ctx context.Context, limit int) ([]*domain.PromoCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PromoCode
	for _, p := range m.promos {
		copied := *p
		out = append(out, &copied)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockPromoRepository) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promos[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = active
	return nil
}

func (m *MockPromoRepository) IncrementUsedCount(ctx context.Context, id string) error {
	atomic.AddInt32(&m.IncrementCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promos[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.UsedCount++
	return nil
}

func (m *MockPromoRepository) CountUsagesByUser(ctx context.Context, promoID, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, u := range m.usages {
		if u.PromoCodeID == promoID && u.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockPromoRepository) CreateUsage(ctx context.Context, usage *domain.PromoCodeUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *usage
	m.usages = append(m.usages, &copied)
	return nil
}

// UsedCountOf returns the global usage counter of a code.
func (m *MockPromoRepository) UsedCountOf(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.promos[id]; ok {
		return p.UsedCount
	}
	return 0
}

// ──────────────────────────────────────────────
// MOCK REFERRAL REPOSITORY
// ──────────────────────────────────────────────

// MockReferralRepository is a mock implementation of ReferralRepository.
type MockReferralRepository struct {
	mu        sync.RWMutex
	referrals map[string]*domain.Referral // keyed by referee ID

	MarkCompletedCallCount int32
}

// NewMockReferralRepository creates a new mock referral repository.
func NewMockReferralRepository() *MockReferralRepository {
	return &MockReferralRepository{
		referrals: make(map[string]*domain.Referral),
	}
}

// AddReferral adds a referral to the mock repository.
func (m *MockReferralRepository) AddReferral(r *domain.Referral) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.referrals[r.RefereeID] = r
}

func (m *MockReferralRepository) Create(ctx context.Context, r *domain.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.referrals[r.RefereeID]; ok {
		return repository.ErrConflict
	}
	copied := *r
	m.referrals[r.RefereeID] = &copied
	return nil
}

func (m *MockReferralRepository) GetByReferee(ctx context.Context, refereeID string) (*domain.Referral, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.referrals[refereeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *MockReferralRepository) GetByRefereeForUpdate(ctx context.Context, refereeID string) (*domain.Referral, error) {
	return m.GetByReferee(ctx, refereeID)
}

func (m *MockReferralRepository) ListByReferrer(ctx context.Context, referrerID string) ([]*domain.Referral, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Referral
	for _, r := range m.referrals {
		if r.ReferrerID == referrerID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

// MarkCompleted honors the PENDING guard: a referral already completed
// returns ErrConflict, like the status-guarded UPDATE.
func (m *MockReferralRepository) MarkCompleted(ctx context.Context, id string, referrerBonus, refereeBonus int64, at time.Time) error {
	atomic.AddInt32(&m.MarkCompletedCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.referrals {
		if r.ID == id {
			if r.Status != domain.ReferralStatusPending {
				return repository.ErrConflict
			}
			r.Status = domain.ReferralStatusCompleted
			r.ReferrerBonus = referrerBonus
			r.RefereeBonus = refereeBonus
			r.CompletedAt = at
			return nil
		}
	}
	return repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK USER + DRIVER PROFILE REPOSITORIES
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	SuspendCallCount int32
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// UserState returns the live stored user for assertions.
func (m *MockUserRepository) UserState(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockUserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ReferralCode != "" && u.ReferralCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) SetReferralCode(ctx context.Context, userID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ReferralCode = code
	return nil
}

func (m *MockUserRepository) SetReferredBy(ctx context.Context, userID, referrerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ReferredBy = referrerID
	return nil
}

func (m *MockUserRepository) UpdateReputation(ctx context.Context, userID string, upd repository.ReputationUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.AverageRating = upd.AverageRating
	u.TotalRatings = upd.TotalRatings
	u.ConsecutiveBadRatings = upd.ConsecutiveBadRatings
	u.ReputationStatus = upd.Status
	return nil
}

func (m *MockUserRepository) Suspend(ctx context.Context, userID, reason string, at time.Time) error {
	atomic.AddInt32(&m.SuspendCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = false
	u.SuspendedAt = at
	u.SuspendReason = reason
	u.ReputationStatus = domain.ReputationSuspended
	return nil
}

func (m *MockUserRepository) ResetReputation(ctx context.Context, userID string, reactivate bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ConsecutiveBadRatings = 0
	u.ReputationStatus = domain.ReputationGood
	if reactivate {
		u.IsActive = true
		u.SuspendedAt = time.Time{}
		u.SuspendReason = ""
	}
	return nil
}

func (m *MockUserRepository) ListByReputation(ctx context.Context, statuses []domain.ReputationStatus) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.User
	for _, u := range m.users {
		for _, st := range statuses {
			if u.ReputationStatus == st {
				copied := *u
				out = append(out, &copied)
				break
			}
		}
	}
	return out, nil
}

// MockDriverProfileRepository is a mock implementation of DriverProfileRepository.
type MockDriverProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.DriverProfile // keyed by profile ID

	SuspendCallCount int32
}

// NewMockDriverProfileRepository creates a new mock driver profile repository.
func NewMockDriverProfileRepository() *MockDriverProfileRepository {
	return &MockDriverProfileRepository{
		profiles: make(map[string]*domain.DriverProfile),
	}
}

// AddProfile adds a driver profile to the mock repository.
func (m *MockDriverProfileRepository) AddProfile(p *domain.DriverProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

// ProfileState returns the live stored profile for assertions.
func (m *MockDriverProfileRepository) ProfileState(id string) *domain.DriverProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[id]
}

func (m *MockDriverProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.DriverProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverProfileRepository) GetByID(ctx context.Context, id string) (*domain.DriverProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *MockDriverProfileRepository) UpdateReputation(ctx context.Context, profileID string, upd repository.ReputationUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[profileID]
	if !ok {
		return repository.ErrNotFound
	}
	p.AverageRating = upd.AverageRating
	p.TotalRatings = upd.TotalRatings
	p.ConsecutiveBadRatings = upd.ConsecutiveBadRatings
	p.ReputationStatus = upd.Status
	return nil
}

func (m *MockDriverProfileRepository) Suspend(ctx context.Context, profileID string) error {
	atomic.AddInt32(&m.SuspendCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[profileID]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsApproved = false
	p.IsAvailable = false
	p.ReputationStatus = domain.ReputationSuspended
	return nil
}

func (m *MockDriverProfileRepository) ResetReputation(ctx context.Context, profileID string, reapprove bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[profileID]
	if !ok {
		return repository.ErrNotFound
	}
	p.ConsecutiveBadRatings = 0
	p.ReputationStatus = domain.ReputationGood
	if reapprove {
		p.IsApproved = true
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK RATING REPOSITORIES
// ──────────────────────────────────────────────

// MockRatingRepository is a mock implementation of RatingRepository.
type MockRatingRepository struct {
	mu      sync.RWMutex
	ratings []*domain.RideRating
}

// NewMockRatingRepository creates a new mock rating repository.
func NewMockRatingRepository() *MockRatingRepository {
	return &MockRatingRepository{}
}

func (m *MockRatingRepository) Upsert(ctx context.Context, rating *domain.RideRating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.ratings {
		if r.RideID == rating.RideID && r.RaterType == rating.RaterType {
			m.ratings = append(m.ratings[:i], m.ratings[i+1:]...)
			break
		}
	}
	copied := *rating
	m.ratings = append(m.ratings, &copied)
	return nil
}

// ListRecentByRatee returns ratings newest first, newest being the most
// recently inserted.
func (m *MockRatingRepository) ListRecentByRatee(ctx context.Context, rateeID string, rateeType domain.RaterType, limit int) ([]*domain.RideRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.RideRating
	for i := len(m.ratings) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		r := m.ratings[i]
		if r.RateeID == rateeID && r.RateeType == rateeType {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockRatingRepository) CountByRatee(ctx context.Context, rateeID string, rateeType domain.RaterType) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.ratings {
		if r.RateeID == rateeID && r.RateeType == rateeType {
			count++
		}
	}
	return count, nil
}

// MockRatingConfigRepository is a mock implementation of RatingConfigRepository.
type MockRatingConfigRepository struct {
	mu  sync.RWMutex
	cfg *domain.RatingConfig
}

// NewMockRatingConfigRepository creates a new mock config repository.
func NewMockRatingConfigRepository() *MockRatingConfigRepository {
	return &MockRatingConfigRepository{}
}

func (m *MockRatingConfigRepository) Get(ctx context.Context) (domain.RatingConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cfg == nil {
		return domain.DefaultRatingConfig(), nil
	}
	return *m.cfg, nil
}

func (m *MockRatingConfigRepository) Update(ctx context.Context, cfg domain.RatingConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = &cfg
	return nil
}

// ──────────────────────────────────────────────
// MOCK UNIT OF WORK
// ──────────────────────────────────────────────

// MockUnitOfWork serializes atomic blocks over the shared mocks with a
// mutex. There is no rollback: services are expected to validate before
// mutating, which these tests verify.
type MockUnitOfWork struct {
	mu     sync.Mutex
	stores repository.Stores

	AtomicCallCount int32

	// Error injection: returned before the block runs.
	BeginError error
}

// NewMockUnitOfWork creates a unit of work over the given stores.
func NewMockUnitOfWork(stores repository.Stores) *MockUnitOfWork {
	return &MockUnitOfWork{stores: stores}
}

func (m *MockUnitOfWork) Atomic(ctx context.Context, fn func(repository.Stores) error) error {
	atomic.AddInt32(&m.AtomicCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.stores)
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is an in-memory LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// AcquireError forces Acquire to fail, exercising the degraded path.
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireAcceptLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[rideID] {
		return false, nil
	}
	m.locks[rideID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseAcceptLock(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, rideID)
	return nil
}

// MockConfigCache is an in-memory ConfigCacheInterface.
type MockConfigCache struct {
	mu  sync.Mutex
	cfg *domain.RatingConfig

	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockConfigCache creates a new mock config cache.
func NewMockConfigCache() *MockConfigCache {
	return &MockConfigCache{}
}

func (m *MockConfigCache) GetRatingConfig(ctx context.Context) (*domain.RatingConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return nil, nil
	}
	copied := *m.cfg
	return &copied, nil
}

func (m *MockConfigCache) SetRatingConfig(ctx context.Context, cfg domain.RatingConfig) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = &cfg
	return nil
}

func (m *MockConfigCache) InvalidateRatingConfig(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = nil
	return nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER
// ──────────────────────────────────────────────

// NotifiedEvent records one delivered notification.
type NotifiedEvent struct {
	Event  string
	UserID string // empty for broadcasts
}

// MockNotifier records notifications for verification.
type MockNotifier struct {
	mu     sync.Mutex
	events []NotifiedEvent
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, event, userID string, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, NotifiedEvent{Event: event, UserID: userID})
	return nil
}

func (m *MockNotifier) Broadcast(ctx context.Context, event string, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, NotifiedEvent{Event: event})
	return nil
}

// Events returns the recorded notifications.
func (m *MockNotifier) Events() []NotifiedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NotifiedEvent, len(m.events))
	copy(out, m.events)
	return out
}
