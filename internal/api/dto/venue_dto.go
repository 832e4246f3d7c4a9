package dto

import (
	"time"

	"github.com/abhi91543/noqgo/internal/domain"
)

// CreateVenueRequest payload for registering a venue.
type CreateVenueRequest struct {
	Name         string   `json:"name"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters *int32   `json:"radius_meters,omitempty"`
}

// FeeConfigurationRequest payload for changing fee settings.
type FeeConfigurationRequest struct {
	FeePayer       string  `json:"fee_payer"`
	CommissionRate float64 `json:"commission_rate"`
}

// VenueResponse is the public shape of a venue.
type VenueResponse struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Name            string    `json:"name"`
	FeePayer        string    `json:"fee_payer"`
	CommissionRate  float64   `json:"commission_rate"`
	VendorAccountID *string   `json:"vendor_account_id,omitempty"`
	VendorStatus    string    `json:"vendor_status"`
	OnboardingStep  string    `json:"onboarding_step"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	RadiusMeters    *int32    `json:"radius_meters,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewVenueResponse maps the domain model.
func NewVenueResponse(venue *domain.Venue) VenueResponse {
	return VenueResponse{
		ID:              venue.ID,
		OwnerID:         venue.OwnerID,
		Name:            venue.Name,
		FeePayer:        venue.FeePayer,
		CommissionRate:  venue.CommissionRate,
		VendorAccountID: venue.VendorAccountID,
		VendorStatus:    string(venue.VendorStatus),
		OnboardingStep:  string(venue.OnboardingStep),
		Latitude:        venue.Latitude,
		Longitude:       venue.Longitude,
		RadiusMeters:    venue.RadiusMeters,
		CreatedAt:       venue.CreatedAt,
	}
}

// NewVenueListResponse maps a slice of venues.
func NewVenueListResponse(venues []domain.Venue) []VenueResponse {
	result := make([]VenueResponse, 0, len(venues))
	for i := range venues {
		result = append(result, NewVenueResponse(&venues[i]))
	}
	return result
}
