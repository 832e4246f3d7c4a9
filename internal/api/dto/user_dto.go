package dto

import (
	"time"

	"github.com/abhi91543/noqgo/internal/domain"
)

// RegisterRequest payload for new customer or owner accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AcceptInvitationRequest redeems a staff invitation token.
type AcceptInvitationRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// BusinessProfileRequest fills in the fields required for onboarding.
type BusinessProfileRequest struct {
	Phone        string `json:"phone"`
	BusinessType string `json:"business_type"`
}

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone,omitempty"`
	Role                string    `json:"role"`
	BusinessType        string    `json:"business_type,omitempty"`
	Availability        string    `json:"availability,omitempty"`
	AssignedOrdersCount int64     `json:"assigned_orders_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewUserResponse maps the domain model.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                  user.ID,
		Name:                user.Name,
		Email:               user.Email,
		Phone:               user.Phone,
		Role:                string(user.Role),
		BusinessType:        user.BusinessType,
		Availability:        string(user.Availability),
		AssignedOrdersCount: user.AssignedOrdersCount,
		CreatedAt:           user.CreatedAt,
	}
}
