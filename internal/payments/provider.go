package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider abstracts the external payment-routing API. Implementations
// must bound every call with a timeout and return *Error for failures
// reported by the remote side.
type Provider interface {
	// CreateSubAccount provisions a routed sub-account for a venue.
	CreateSubAccount(ctx context.Context, req SubAccountRequest) (*SubAccount, error)
	// CreateStakeholder registers a beneficial owner against a sub-account.
	CreateStakeholder(ctx context.Context, accountID string, req StakeholderRequest) (*Stakeholder, error)
	// RequestProductActivation asks the provider to begin activation
	// review for the payment-routing product.
	RequestProductActivation(ctx context.Context, accountID string) (*ProductActivation, error)
	// SubmitSettlementDetails supplies the bank account receiving payouts.
	SubmitSettlementDetails(ctx context.Context, accountID string, details SettlementDetails) error
	// CreatePaymentOrder opens a payment order carrying a split transfer
	// to the venue's sub-account.
	CreatePaymentOrder(ctx context.Context, req PaymentOrderRequest) (*PaymentOrder, error)
}

// SubAccountRequest carries the venue business profile.
type SubAccountRequest struct {
	Email             string
	Phone             string
	BusinessName      string
	LegalBusinessName string
	BusinessType      string
}

// SubAccount is the provider-assigned routed account.
type SubAccount struct {
	ID string
}

// StakeholderRequest identifies a beneficial owner.
type StakeholderRequest struct {
	Name  string
	Email string
	TaxID string
}

// Stakeholder is the provider-side stakeholder record.
type Stakeholder struct {
	ID string
}

// ProductActivation reports the activation review request.
type ProductActivation struct {
	ID     string
	Status string
}

// SettlementDetails is the payout bank account.
type SettlementDetails struct {
	BeneficiaryName string
	AccountNumber   string
	RoutingCode     string
}

// Transfer routes a portion of a payment to a sub-account.
type Transfer struct {
	AccountID string
	Amount    int64
}

// PaymentOrderRequest opens a payment order. Amounts are minor units.
type PaymentOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Transfer Transfer
}

// PaymentOrder is the provider-side payment order.
type PaymentOrder struct {
	ID string
}

// Error carries the provider's machine-readable code and human-readable
// description.
type Error struct {
	Code        string
	Description string
	HTTPStatus  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Code, e.Description)
}

// IsAlreadyDone reports whether the provider rejected a call because the
// requested side effect was previously accepted. Callers treat such
// responses as success.
func IsAlreadyDone(err error) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return strings.Contains(strings.ToLower(pe.Description), "already")
}
