package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhi91543/noqgo/internal/domain"
	"github.com/abhi91543/noqgo/internal/events"
	"github.com/abhi91543/noqgo/internal/repository"
)

type fakeInvitationRepo struct {
	invitations map[string]*repository.StaffInvitation
	nextID      int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[string]*repository.StaffInvitation)}
}

func (r *fakeInvitationRepo) Create(_ context.Context, invitation *repository.StaffInvitation) error {
	r.nextID++
	invitation.ID = time.Now().Format("20060102") + "-" + invitation.Token[:8]
	invitation.CreatedAt = time.Now()
	clone := *invitation
	r.invitations[invitation.Token] = &clone
	return nil
}

func (r *fakeInvitationRepo) GetByToken(_ context.Context, token string) (*repository.StaffInvitation, error) {
	invitation, ok := r.invitations[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *invitation
	return &clone, nil
}

func (r *fakeInvitationRepo) MarkUsed(_ context.Context, id string) error {
	now := time.Now()
	for _, invitation := range r.invitations {
		if invitation.ID == id {
			invitation.UsedAt = &now
		}
	}
	return nil
}

func newStaffFixture() (*StaffService, *fakeUserRepo, *fakeStaffRepo, *fakeInvitationRepo, events.Dispatcher) {
	users := newFakeUserRepo()
	staff := newFakeStaffRepo()
	invitations := newFakeInvitationRepo()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewStaffService(StaffDependencies{
		UserRepo:       users,
		StaffRepo:      staff,
		InvitationRepo: invitations,
		Dispatcher:     dispatcher,
		Logger:         zap.NewNop(),
		InvitationTTL:  time.Hour,
	})
	return svc, users, staff, invitations, dispatcher
}

func owner() *domain.User {
	return &domain.User{ID: "owner-1", Name: "Asha", Role: domain.RoleOwner}
}

func TestInviteCreatesAccountAndInvitation(t *testing.T) {
	svc, users, _, invitations, dispatcher := newStaffFixture()

	var invited *events.StaffInvitedPayload
	dispatcher.Subscribe(events.EventStaffInvited, func(_ context.Context, event events.Event) error {
		payload := event.Payload.(events.StaffInvitedPayload)
		invited = &payload
		return nil
	})

	user, err := svc.InviteOrPromote(context.Background(), owner(), "Ravi", "ravi@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, user.Role)
	assert.Equal(t, domain.AvailabilityAvailable, user.Availability)
	assert.Empty(t, user.PasswordHash, "invited staff sets a password via the token")

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", stored.Email)

	require.NotNil(t, invited)
	assert.NotEmpty(t, invited.Token)
	_, err = invitations.GetByToken(context.Background(), invited.Token)
	assert.NoError(t, err)
}

func TestInvitePromotesExistingCustomer(t *testing.T) {
	svc, users, _, invitations, _ := newStaffFixture()
	users.add(domain.User{ID: "cust-1", Name: "Meera", Email: "meera@example.com", Role: domain.RoleCustomer, PasswordHash: "hash"})

	user, err := svc.InviteOrPromote(context.Background(), owner(), "Meera", "meera@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", user.ID, "existing account is promoted, not duplicated")
	assert.Equal(t, domain.RoleStaff, user.Role)
	assert.Equal(t, "hash", user.PasswordHash, "promotion keeps the password")
	assert.Empty(t, invitations.invitations, "no invitation needed for an existing account")
}

func TestInviteRejectsExistingStaff(t *testing.T) {
	svc, users, _, _, _ := newStaffFixture()
	users.add(domain.User{ID: "staff-1", Name: "Dev", Email: "dev@example.com", Role: domain.RoleStaff})

	_, err := svc.InviteOrPromote(context.Background(), owner(), "Dev", "dev@example.com")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestInviteRequiresManagerRole(t *testing.T) {
	svc, _, _, _, _ := newStaffFixture()

	_, err := svc.InviteOrPromote(context.Background(), &domain.User{ID: "staff-1", Role: domain.RoleStaff}, "X", "x@example.com")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	_, err = svc.InviteOrPromote(context.Background(), nil, "X", "x@example.com")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

func TestSetAvailability(t *testing.T) {
	svc, _, staff, _, _ := newStaffFixture()
	staff.add("staff-1", domain.AvailabilityAvailable, 0)

	self := &domain.User{ID: "staff-1", Role: domain.RoleStaff}
	require.NoError(t, svc.SetAvailability(context.Background(), self, "staff-1", domain.AvailabilityUnavailable))

	// staff cannot toggle someone else
	err := svc.SetAvailability(context.Background(), self, "staff-2", domain.AvailabilityAvailable)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	// managers can
	staff.add("staff-2", domain.AvailabilityUnavailable, 0)
	require.NoError(t, svc.SetAvailability(context.Background(), owner(), "staff-2", domain.AvailabilityAvailable))

	err = svc.SetAvailability(context.Background(), owner(), "staff-2", "SOMETIMES")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestRemoveStaff(t *testing.T) {
	svc, users, _, _, _ := newStaffFixture()
	users.add(domain.User{ID: "staff-1", Name: "Dev", Email: "dev@example.com", Role: domain.RoleStaff})
	users.add(domain.User{ID: "cust-1", Name: "Meera", Email: "meera@example.com", Role: domain.RoleCustomer})

	require.NoError(t, svc.RemoveStaff(context.Background(), owner(), "staff-1"))
	_, err := users.GetByID(context.Background(), "staff-1")
	assert.Error(t, err)

	err = svc.RemoveStaff(context.Background(), owner(), "cust-1")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err), "only staff accounts can be removed here")
}
