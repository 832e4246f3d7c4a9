package domain

import "time"

// VendorStatus tracks a venue's payment sub-account. The status only
// advances forward through NOT_CONNECTED, CREATED, ACTIVATED.
type VendorStatus string

const (
	VendorStatusNotConnected VendorStatus = "NOT_CONNECTED"
	VendorStatusCreated      VendorStatus = "CREATED"
	VendorStatusActivated    VendorStatus = "ACTIVATED"
)

// OnboardingStep records the last completed remote onboarding call so
// an abandoned workflow can be resumed without repeating finished steps.
type OnboardingStep string

const (
	OnboardingStepNone                OnboardingStep = "NONE"
	OnboardingStepAccountCreated      OnboardingStep = "ACCOUNT_CREATED"
	OnboardingStepStakeholderAdded    OnboardingStep = "STAKEHOLDER_ADDED"
	OnboardingStepProductRequested    OnboardingStep = "PRODUCT_REQUESTED"
	OnboardingStepSettlementSubmitted OnboardingStep = "SETTLEMENT_SUBMITTED"
)

// Rank orders the onboarding steps. A persisted step only ever moves to
// a higher rank, so a replayed earlier call cannot rewind the marker.
func (s OnboardingStep) Rank() int {
	switch s {
	case OnboardingStepAccountCreated:
		return 1
	case OnboardingStepStakeholderAdded:
		return 2
	case OnboardingStepProductRequested:
		return 3
	case OnboardingStepSettlementSubmitted:
		return 4
	}
	return 0
}

// Venue is a tenant business operating one or more ordering locations.
// Geolocation fields are stored for the ordering client; geofencing is
// evaluated elsewhere.
type Venue struct {
	ID              string
	OwnerID         string
	Name            string
	FeePayer        string
	CommissionRate  float64
	VendorAccountID *string
	VendorStatus    VendorStatus
	OnboardingStep  OnboardingStep
	Latitude        *float64
	Longitude       *float64
	RadiusMeters    *int32
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
