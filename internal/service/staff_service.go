package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/abhi91543/noqgo/internal/domain"
	"github.com/abhi91543/noqgo/internal/events"
	"github.com/abhi91543/noqgo/internal/repository"
	apperrors "github.com/abhi91543/noqgo/pkg/util"
)

// StaffService manages the staff roster: invitations, availability and
// removal. Counter mutations stay in the assignment path.
type StaffService struct {
	users         repository.UserRepository
	staff         repository.StaffRepository
	invitations   repository.InvitationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	invitationTTL time.Duration
}

// StaffDependencies bundles collaborators.
type StaffDependencies struct {
	UserRepo       repository.UserRepository
	StaffRepo      repository.StaffRepository
	InvitationRepo repository.InvitationRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	InvitationTTL  time.Duration
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.InvitationTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &StaffService{
		users:         deps.UserRepo,
		staff:         deps.StaffRepo,
		invitations:   deps.InvitationRepo,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		invitationTTL: ttl,
	}
}

func requireStaffManager(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !actor.CanManageStaff() {
		return apperrors.NewForbidden("staff management requires owner or superadmin role")
	}
	return nil
}

// InviteOrPromote brings a person onto the staff roster. An existing
// account is promoted in place, keeping its password; an unknown email
// gets a fresh account plus a single-use invitation token so the new
// member can set a password.
func (s *StaffService) InviteOrPromote(ctx context.Context, actor *domain.User, name, email string) (*domain.User, error) {
	if err := requireStaffManager(actor); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role == domain.RoleStaff {
			return nil, apperrors.NewConflict("user is already staff", map[string]any{"email": email})
		}
		if existing.Role == domain.RoleSuperadmin {
			return nil, apperrors.NewConflict("cannot demote a superadmin", map[string]any{"email": email})
		}
		existing.Role = domain.RoleStaff
		existing.Availability = domain.AvailabilityAvailable
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.logger.Info("user promoted to staff", zap.String("user_id", existing.ID))
		s.publishInvited(ctx, actor.ID, events.StaffInvitedPayload{
			UserID: existing.ID,
			Email:  existing.Email,
			Name:   existing.Name,
		})
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Role:         domain.RoleStaff,
		Availability: domain.AvailabilityAvailable,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	invitation := &repository.StaffInvitation{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.invitationTTL),
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		s.logger.Error("staff account created but invitation insert failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("staff invited", zap.String("user_id", user.ID))
	s.publishInvited(ctx, actor.ID, events.StaffInvitedPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Token:  invitation.Token,
	})
	return user, nil
}

// UpdateStaff edits name and email of a staff account.
func (s *StaffService) UpdateStaff(ctx context.Context, actor *domain.User, staffID, name, email string) (*domain.User, error) {
	if err := requireStaffManager(actor); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
		}
		return nil, apperrors.MapError(err)
	}
	if user.Role != domain.RoleStaff {
		return nil, apperrors.NewValidationError("user is not staff", map[string]any{"staff_id": staffID})
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != user.ID {
			return nil, apperrors.NewConflict("email already in use", map[string]any{"email": email})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		user.Email = email
	}
	if strings.TrimSpace(name) != "" {
		user.Name = name
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// RemoveStaff deletes a staff account.
func (s *StaffService) RemoveStaff(ctx context.Context, actor *domain.User, staffID string) error {
	if err := requireStaffManager(actor); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
		}
		return apperrors.MapError(err)
	}
	if user.Role != domain.RoleStaff {
		return apperrors.NewValidationError("user is not staff", map[string]any{"staff_id": staffID})
	}

	if err := s.users.Delete(ctx, staffID); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("staff removed", zap.String("staff_id", staffID))
	return nil
}

// SetAvailability toggles whether a staff member receives assignments.
// Staff may change their own flag; managers may change anyone's.
func (s *StaffService) SetAvailability(ctx context.Context, actor *domain.User, staffID string, availability domain.Availability) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.ID != staffID && !actor.CanManageStaff() {
		return apperrors.NewForbidden("cannot change another member's availability")
	}
	if availability != domain.AvailabilityAvailable && availability != domain.AvailabilityUnavailable {
		return apperrors.NewValidationError("invalid availability value", nil)
	}

	if err := s.staff.SetAvailability(ctx, staffID, availability); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListStaff returns the staff roster for managers.
func (s *StaffService) ListStaff(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.User, error) {
	if err := requireStaffManager(actor); err != nil {
		return nil, err
	}
	staff, err := s.staff.ListStaff(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

func (s *StaffService) publishInvited(ctx context.Context, actorID string, payload events.StaffInvitedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventStaffInvited,
		ActorID:   &actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
