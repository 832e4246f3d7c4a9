package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/abhi91543/noqgo/internal/auth"
	"github.com/abhi91543/noqgo/internal/config"
	"github.com/abhi91543/noqgo/internal/domain"
	"github.com/abhi91543/noqgo/internal/repository"
	apperrors "github.com/abhi91543/noqgo/pkg/util"
)

// AuthService coordinates registration, login and invitation acceptance.
type AuthService struct {
	users       repository.UserRepository
	invitations repository.InvitationRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	InvitationRepo repository.InvitationRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:       deps.UserRepo,
		invitations: deps.InvitationRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// Register creates a customer or owner account and signs them in.
func (s *AuthService) Register(ctx context.Context, name, email, password, rawRole string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("name, email and password required", nil)
	}

	role := domain.RoleCustomer
	if rawRole != "" {
		parsed, err := domain.ParseRole(rawRole)
		if err != nil {
			return nil, "", time.Time{}, apperrors.NewValidationError("unknown role", map[string]any{"role": rawRole})
		}
		// staff joins by invitation, superadmins are provisioned out of band
		if parsed != domain.RoleCustomer && parsed != domain.RoleOwner {
			return nil, "", time.Time{}, apperrors.NewValidationError("role must be customer or owner", nil)
		}
		role = parsed
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Availability: domain.AvailabilityUnavailable,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Login authenticates any account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if user.PasswordHash == "" {
		// invited staff who has not accepted yet
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// AcceptInvitation redeems a single-use staff invitation token and sets
// the member's password.
func (s *AuthService) AcceptInvitation(ctx context.Context, tokenStr, password string) (*domain.User, string, time.Time, error) {
	if tokenStr == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("token and password required", nil)
	}

	invitation, err := s.invitations.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewNotFound("invitation", nil)
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if invitation.UsedAt != nil || time.Now().After(invitation.ExpiresAt) {
		return nil, "", time.Time{}, apperrors.NewPreconditionFailed("invitation expired or already used", nil)
	}

	user, err := s.users.GetByID(ctx, invitation.UserID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := s.invitations.MarkUsed(ctx, invitation.ID); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return apperrors.NewValidationError("new password required", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

// UpdateBusinessProfile fills in the contact and business fields an
// owner needs before a payment sub-account can be opened.
func (s *AuthService) UpdateBusinessProfile(ctx context.Context, userID, phone, businessType string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if strings.TrimSpace(phone) != "" {
		user.Phone = phone
	}
	if strings.TrimSpace(businessType) != "" {
		user.BusinessType = strings.ToLower(strings.TrimSpace(businessType))
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
