package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role enumerates the closed set of account roles. Free-text roles are
// rejected at the boundary where user records are written.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleOwner      Role = "OWNER"
	RoleStaff      Role = "STAFF"
	RoleSuperadmin Role = "SUPERADMIN"
)

// ParseRole normalizes raw input into the role enum.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch role {
	case RoleCustomer, RoleOwner, RoleStaff, RoleSuperadmin:
		return role, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Availability marks whether a staff member can receive new orders.
type Availability string

const (
	AvailabilityAvailable   Availability = "AVAILABLE"
	AvailabilityUnavailable Availability = "UNAVAILABLE"
)

// User models any account: customers, venue owners, staff and superadmins.
// AssignedOrdersCount is monotonic for the lifetime of a staff record.
type User struct {
	ID                  string
	Name                string
	Email               string
	Phone               string
	PasswordHash        string
	Role                Role
	BusinessType        string
	Availability        Availability
	AssignedOrdersCount int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasCompleteBusinessProfile reports whether the profile carries the
// contact and business details required to open a payment sub-account.
func (u *User) HasCompleteBusinessProfile() bool {
	if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Phone) == "" {
		return false
	}
	businessType := strings.ToLower(strings.TrimSpace(u.BusinessType))
	return businessType != "" && businessType != "none"
}

// CanManageStaff reports whether the user may invite, edit or remove staff.
func (u *User) CanManageStaff() bool {
	return u.Role == RoleOwner || u.Role == RoleSuperadmin
}
