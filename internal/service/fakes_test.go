package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/abhi91543/noqgo/internal/domain"
	"github.com/abhi91543/noqgo/internal/payments"
	"github.com/abhi91543/noqgo/internal/repository"
)

// In-memory repositories mirroring the guarded SQL updates of the
// Postgres implementations, including their row-matched semantics.

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	nextID int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = fmt.Sprintf("order-%04d", r.nextID)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) ListByVenue(_ context.Context, venueID string, filter repository.OrderFilter) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Order
	for _, order := range r.orders {
		if order.VenueID != venueID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if order.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, *order)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeOrderRepo) ClaimForAssignment(_ context.Context, orderID, staffID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.Status != domain.OrderStatusAwaitingAssignment {
		return false, nil
	}
	order.Status = domain.OrderStatusPaidAssigned
	order.AssignedStaffID = &staffID
	return true, nil
}

func (r *fakeOrderRepo) MarkUnassigned(_ context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.Status != domain.OrderStatusAwaitingAssignment {
		return false, nil
	}
	order.Status = domain.OrderStatusPaidUnassigned
	return true, nil
}

func (r *fakeOrderRepo) MarkAssignmentError(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil
	}
	if order.Status == domain.OrderStatusAwaitingAssignment || order.Status == domain.OrderStatusPaidAssigned {
		order.Status = domain.OrderStatusAssignmentError
	}
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID string, from, to domain.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	return true, nil
}

func (r *fakeOrderRepo) status(orderID string) domain.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[orderID].Status
}

type fakeStaffRepo struct {
	mu           sync.Mutex
	staff        map[string]*domain.User
	incrementErr error
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{staff: make(map[string]*domain.User)}
}

func (r *fakeStaffRepo) add(id string, availability domain.Availability, count int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staff[id] = &domain.User{
		ID:                  id,
		Name:                id,
		Role:                domain.RoleStaff,
		Availability:        availability,
		AssignedOrdersCount: count,
	}
}

func (r *fakeStaffRepo) NextAvailable(_ context.Context) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []*domain.User
	for _, staff := range r.staff {
		if staff.Role == domain.RoleStaff && staff.Availability == domain.AvailabilityAvailable {
			candidates = append(candidates, staff)
		}
	}
	if len(candidates) == 0 {
		return nil, pgx.ErrNoRows
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].AssignedOrdersCount != candidates[j].AssignedOrdersCount {
			return candidates[i].AssignedOrdersCount < candidates[j].AssignedOrdersCount
		}
		return candidates[i].ID < candidates[j].ID
	})
	clone := *candidates[0]
	return &clone, nil
}

func (r *fakeStaffRepo) IncrementAssignedOrders(_ context.Context, staffID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	staff, ok := r.staff[staffID]
	if !ok || staff.Role != domain.RoleStaff {
		return pgx.ErrNoRows
	}
	staff.AssignedOrdersCount++
	return nil
}

func (r *fakeStaffRepo) SetAvailability(_ context.Context, staffID string, availability domain.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.staff[staffID]
	if !ok || staff.Role != domain.RoleStaff {
		return pgx.ErrNoRows
	}
	staff.Availability = availability
	return nil
}

func (r *fakeStaffRepo) ListStaff(_ context.Context, _, _ int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, staff := range r.staff {
		result = append(result, *staff)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeStaffRepo) count(staffID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.staff[staffID].AssignedOrdersCount
}

func (r *fakeStaffRepo) counts() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]int64, 0, len(r.staff))
	for _, staff := range r.staff {
		result = append(result, staff.AssignedOrdersCount)
	}
	return result
}

type fakeVenueRepo struct {
	mu     sync.Mutex
	venues map[string]*domain.Venue
	nextID int
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{venues: make(map[string]*domain.Venue)}
}

func (r *fakeVenueRepo) Create(_ context.Context, venue *domain.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	venue.ID = fmt.Sprintf("venue-%d", r.nextID)
	venue.CreatedAt = time.Now()
	venue.UpdatedAt = venue.CreatedAt
	clone := *venue
	r.venues[venue.ID] = &clone
	return nil
}

func (r *fakeVenueRepo) GetByID(_ context.Context, id string) (*domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	venue, ok := r.venues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *venue
	return &clone, nil
}

func (r *fakeVenueRepo) GetByVendorAccount(_ context.Context, accountID string) (*domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, venue := range r.venues {
		if venue.VendorAccountID != nil && *venue.VendorAccountID == accountID {
			clone := *venue
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeVenueRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Venue
	for _, venue := range r.venues {
		if venue.OwnerID == ownerID {
			result = append(result, *venue)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeVenueRepo) ClaimVendorAccount(_ context.Context, venueID, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	venue, ok := r.venues[venueID]
	if !ok || venue.VendorAccountID != nil {
		return pgx.ErrNoRows
	}
	venue.VendorAccountID = &accountID
	venue.VendorStatus = domain.VendorStatusCreated
	venue.OnboardingStep = domain.OnboardingStepAccountCreated
	return nil
}

func (r *fakeVenueRepo) AdvanceOnboarding(_ context.Context, venueID string, status domain.VendorStatus, step domain.OnboardingStep) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	venue, ok := r.venues[venueID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if venue.OnboardingStep.Rank() >= step.Rank() {
		return false, nil
	}
	venue.VendorStatus = status
	venue.OnboardingStep = step
	return true, nil
}

func (r *fakeVenueRepo) UpdateFeeConfiguration(_ context.Context, venueID, feePayer string, commissionRate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	venue, ok := r.venues[venueID]
	if !ok {
		return pgx.ErrNoRows
	}
	venue.FeePayer = feePayer
	venue.CommissionRate = commissionRate
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) add(user domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := user
	r.users[user.ID] = &clone
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// fakeProvider counts remote calls and can fail selectively.
type fakeProvider struct {
	mu sync.Mutex

	subAccounts     int
	stakeholders    int
	products        int
	settlements     int
	paymentOrders   int
	stakeholderErr  error
	productErr      error
	settlementErr   error
	paymentOrderErr error
}

func (p *fakeProvider) CreateSubAccount(_ context.Context, _ payments.SubAccountRequest) (*payments.SubAccount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subAccounts++
	return &payments.SubAccount{ID: fmt.Sprintf("acc_%d", p.subAccounts)}, nil
}

func (p *fakeProvider) CreateStakeholder(_ context.Context, _ string, _ payments.StakeholderRequest) (*payments.Stakeholder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stakeholderErr != nil {
		return nil, p.stakeholderErr
	}
	p.stakeholders++
	return &payments.Stakeholder{ID: fmt.Sprintf("sth_%d", p.stakeholders)}, nil
}

func (p *fakeProvider) RequestProductActivation(_ context.Context, _ string) (*payments.ProductActivation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.productErr != nil {
		return nil, p.productErr
	}
	p.products++
	return &payments.ProductActivation{ID: fmt.Sprintf("prd_%d", p.products), Status: "requested"}, nil
}

func (p *fakeProvider) SubmitSettlementDetails(_ context.Context, _ string, _ payments.SettlementDetails) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settlementErr != nil {
		return p.settlementErr
	}
	p.settlements++
	return nil
}

func (p *fakeProvider) CreatePaymentOrder(_ context.Context, _ payments.PaymentOrderRequest) (*payments.PaymentOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paymentOrderErr != nil {
		return nil, p.paymentOrderErr
	}
	p.paymentOrders++
	return &payments.PaymentOrder{ID: fmt.Sprintf("pay_%d", p.paymentOrders)}, nil
}

// fakePublisher records orders handed to the assignment pipeline.
type fakePublisher struct {
	mu       sync.Mutex
	orderIDs []string
	err      error
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, orderID, _ string, _ int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.orderIDs = append(p.orderIDs, orderID)
	return nil
}

// fakeGuard hands the key to the first caller and refuses the rest until
// released.
type fakeGuard struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired int
	refused  int
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{held: make(map[string]bool)}
}

func (g *fakeGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] {
		g.refused++
		return false, nil
	}
	g.held[key] = true
	g.acquired++
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
}
