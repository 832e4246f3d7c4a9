package dto

// InviteStaffRequest payload for inviting or promoting a staff member.
type InviteStaffRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateStaffRequest payload for editing a staff account.
type UpdateStaffRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AvailabilityRequest payload for toggling assignment eligibility.
type AvailabilityRequest struct {
	Availability string `json:"availability"`
}
