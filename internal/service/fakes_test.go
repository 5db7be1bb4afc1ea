package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/events"
	"github.com/fidelipromo/loyalty-service/internal/repository"
)

// In-memory repository fakes. Each fake stores rows keyed the way the real
// table is keyed and returns pgx.ErrNoRows where the Postgres implementation
// would, so services exercise the same error paths in tests.

type fakeIdentityRepo struct {
	mu         sync.Mutex
	seq        int
	identities map[string]*domain.Identity
	profiles   map[string]*domain.Profile

	failCreateProfile bool
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{
		identities: make(map[string]*domain.Identity),
		profiles:   make(map[string]*domain.Profile),
	}
}

func (f *fakeIdentityRepo) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeIdentityRepo) Create(_ context.Context, identity *domain.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity.ID = f.nextID("id")
	copied := *identity
	f.identities[identity.ID] = &copied
	return nil
}

func (f *fakeIdentityRepo) Update(_ context.Context, identity *domain.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.identities[identity.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *identity
	f.identities[identity.ID] = &copied
	return nil
}

func (f *fakeIdentityRepo) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.identities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *identity
	return &copied, nil
}

func (f *fakeIdentityRepo) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, identity := range f.identities {
		if identity.Email == email {
			copied := *identity
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeIdentityRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.identities, id)
	return nil
}

func (f *fakeIdentityRepo) CreateProfile(_ context.Context, profile *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateProfile {
		return fmt.Errorf("profile insert failed")
	}
	profile.ID = f.nextID("prof")
	copied := *profile
	f.profiles[profile.UserID] = &copied
	return nil
}

func (f *fakeIdentityRepo) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeIdentityRepo) DeleteProfile(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, userID)
	return nil
}

type fakeBusinessRepo struct {
	mu         sync.Mutex
	seq        int
	businesses map[string]*domain.Business
}

func newFakeBusinessRepo() *fakeBusinessRepo {
	return &fakeBusinessRepo{businesses: make(map[string]*domain.Business)}
}

func (f *fakeBusinessRepo) Create(_ context.Context, business *domain.Business) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	business.ID = fmt.Sprintf("biz-%d", f.seq)
	if business.CashbackPercentage == 0 {
		business.CashbackPercentage = 5
	}
	copied := *business
	f.businesses[business.ID] = &copied
	return nil
}

func (f *fakeBusinessRepo) Update(_ context.Context, business *domain.Business) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.businesses[business.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *business
	f.businesses[business.ID] = &copied
	return nil
}

func (f *fakeBusinessRepo) GetByID(_ context.Context, id string) (*domain.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	business, ok := f.businesses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *business
	return &copied, nil
}

func (f *fakeBusinessRepo) GetByOwnerUserID(_ context.Context, userID string) (*domain.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, business := range f.businesses {
		if business.OwnerUserID == userID {
			copied := *business
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeBusinessRepo) DeleteByOwnerUserID(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, business := range f.businesses {
		if business.OwnerUserID == userID {
			delete(f.businesses, id)
		}
	}
	return nil
}

type fakeMembershipRepo struct {
	mu          sync.Mutex
	seq         int
	memberships map[string]*domain.Membership
	businesses  *fakeBusinessRepo

	failCreate  bool
	deleteCalls int
}

func newFakeMembershipRepo(businesses *fakeBusinessRepo) *fakeMembershipRepo {
	return &fakeMembershipRepo{
		memberships: make(map[string]*domain.Membership),
		businesses:  businesses,
	}
}

func membershipKey(businessID, userID string) string {
	return businessID + "/" + userID
}

func (f *fakeMembershipRepo) Create(_ context.Context, membership *domain.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return fmt.Errorf("membership insert failed")
	}
	f.seq++
	membership.ID = fmt.Sprintf("mem-%d", f.seq)
	copied := *membership
	f.memberships[membershipKey(membership.BusinessID, membership.UserID)] = &copied
	return nil
}

func (f *fakeMembershipRepo) ListByBusiness(_ context.Context, businessID string) ([]domain.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Membership
	for _, m := range f.memberships {
		if m.BusinessID == businessID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (f *fakeMembershipRepo) ListTeamByBusiness(_ context.Context, businessID string) ([]repository.TeamMemberRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []repository.TeamMemberRecord
	for _, m := range f.memberships {
		if m.BusinessID == businessID {
			result = append(result, repository.TeamMemberRecord{
				UserID:   m.UserID,
				Role:     m.Role,
				JoinedAt: m.CreatedAt,
			})
		}
	}
	return result, nil
}

func (f *fakeMembershipRepo) ListBusinessContexts(_ context.Context, userID string) ([]domain.AppContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.AppContext
	for _, m := range f.memberships {
		if m.UserID != userID {
			continue
		}
		ctx := domain.AppContext{
			Type: domain.ContextTypeBusiness,
			ID:   m.BusinessID,
			Role: m.Role,
		}
		if f.businesses != nil {
			if business, ok := f.businesses.businesses[m.BusinessID]; ok {
				ctx.Name = business.Name
			}
		}
		result = append(result, ctx)
	}
	return result, nil
}

func (f *fakeMembershipRepo) Get(_ context.Context, businessID, userID string) (*domain.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memberships[membershipKey(businessID, userID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMembershipRepo) Delete(_ context.Context, businessID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	key := membershipKey(businessID, userID)
	if _, ok := f.memberships[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.memberships, key)
	return nil
}

func (f *fakeMembershipRepo) DeleteByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, m := range f.memberships {
		if m.UserID == userID {
			delete(f.memberships, key)
		}
	}
	return nil
}

type fakeCustomerRepo struct {
	mu        sync.Mutex
	seq       int
	customers map[string]*domain.Customer

	failCreate bool
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[string]*domain.Customer)}
}

func (f *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return fmt.Errorf("customer insert failed")
	}
	f.seq++
	customer.ID = fmt.Sprintf("cust-%d", f.seq)
	copied := *customer
	f.customers[customer.ID] = &copied
	return nil
}

func (f *fakeCustomerRepo) Update(_ context.Context, customer *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.customers[customer.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *customer
	f.customers[customer.ID] = &copied
	return nil
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	customer, ok := f.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *customer
	return &copied, nil
}

func (f *fakeCustomerRepo) GetByUserID(_ context.Context, userID string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, customer := range f.customers {
		if customer.UserID == userID {
			copied := *customer
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCustomerRepo) GetByReferralCode(_ context.Context, code string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, customer := range f.customers {
		if customer.ReferralCode == code {
			copied := *customer
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCustomerRepo) CountReferredBy(_ context.Context, customerID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, customer := range f.customers {
		if customer.ReferredByCustomerID != nil && *customer.ReferredByCustomerID == customerID {
			count++
		}
	}
	return count, nil
}

func (f *fakeCustomerRepo) DeleteByUserID(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, customer := range f.customers {
		if customer.UserID == userID {
			delete(f.customers, id)
		}
	}
	return nil
}

type fakeLedgerRepo struct {
	mu           sync.Mutex
	seq          int
	transactions []repository.TransactionRecord
	balances     map[string]*repository.BalanceRecord
	earnings     map[string]float64
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		balances: make(map[string]*repository.BalanceRecord),
		earnings: make(map[string]float64),
	}
}

func (f *fakeLedgerRepo) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	tx.ID = fmt.Sprintf("tx-%d", f.seq)
	f.transactions = append(f.transactions, repository.TransactionRecord{Transaction: *tx})
	return nil
}

func (f *fakeLedgerRepo) ListTransactionsByCustomer(_ context.Context, customerID string) ([]repository.TransactionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []repository.TransactionRecord
	for i := len(f.transactions) - 1; i >= 0; i-- {
		if f.transactions[i].CustomerID == customerID {
			result = append(result, f.transactions[i])
		}
	}
	return result, nil
}

func (f *fakeLedgerRepo) CreditBalance(_ context.Context, customerID, businessID string, cashback float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := customerID + "/" + businessID
	balance, ok := f.balances[key]
	if !ok {
		balance = &repository.BalanceRecord{}
		balance.CustomerID = customerID
		balance.BusinessID = businessID
		f.balances[key] = balance
	}
	balance.AvailableBalance += cashback
	balance.TotalEarned += cashback
	return nil
}

func (f *fakeLedgerRepo) ListBalancesByCustomer(_ context.Context, customerID string) ([]repository.BalanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []repository.BalanceRecord
	for _, balance := range f.balances {
		if balance.CustomerID == customerID {
			result = append(result, *balance)
		}
	}
	return result, nil
}

func (f *fakeLedgerRepo) ListCustomersByBusiness(_ context.Context, businessID string) ([]repository.EnrolledCustomer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []repository.EnrolledCustomer
	for _, balance := range f.balances {
		if balance.BusinessID == businessID {
			result = append(result, repository.EnrolledCustomer{
				CustomerID:       balance.CustomerID,
				AvailableBalance: balance.AvailableBalance,
				TotalEarned:      balance.TotalEarned,
			})
		}
	}
	return result, nil
}

func (f *fakeLedgerRepo) SumReferralEarnings(_ context.Context, referrerCustomerID string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.earnings[referrerCustomerID], nil
}

type fakeResetRepo struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]*repository.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (f *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token.ID = fmt.Sprintf("reset-%d", f.seq)
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *token
	return &copied, nil
}

func (f *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.tokens {
		if token.ID == id {
			now := token.ExpiresAt
			token.UsedAt = &now
		}
	}
	return nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}
