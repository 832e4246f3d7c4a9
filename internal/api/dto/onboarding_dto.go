package dto

// CreateLinkedAccountRequest opens the payment sub-account for a venue.
type CreateLinkedAccountRequest struct {
	VenueID string `json:"venue_id"`
}

// CreateStakeholderRequest registers the beneficial owner.
type CreateStakeholderRequest struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	TaxID     string `json:"tax_id"`
}

// RequestProductActivationRequest asks the provider to review the account.
type RequestProductActivationRequest struct {
	AccountID string `json:"account_id"`
}

// SettlementDetailsRequest supplies the payout bank account.
type SettlementDetailsRequest struct {
	AccountID       string `json:"account_id"`
	BeneficiaryName string `json:"beneficiary_name"`
	AccountNumber   string `json:"account_number"`
	RoutingCode     string `json:"routing_code"`
}
