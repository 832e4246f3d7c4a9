package events

import (
	"time"

	"github.com/abhi91543/noqgo/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated        EventType = "order_created"
	EventOrderAssigned       EventType = "order_assigned"
	EventOrderUnassigned     EventType = "order_unassigned"
	EventOrderStatusChanged  EventType = "order_status_changed"
	EventOnboardingAdvanced  EventType = "onboarding_advanced"
	EventStaffInvited        EventType = "staff_invited"
	EventFeeConfigUpdated    EventType = "fee_configuration_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	OrderID     string `json:"order_id"`
	VenueID     string `json:"venue_id"`
	TotalAmount int64  `json:"total_amount"`
}

// OrderAssignedPayload payload.
type OrderAssignedPayload struct {
	OrderID string `json:"order_id"`
	StaffID string `json:"staff_id"`
}

// OrderUnassignedPayload payload.
type OrderUnassignedPayload struct {
	OrderID string `json:"order_id"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OrderID   string             `json:"order_id"`
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// OnboardingAdvancedPayload payload.
type OnboardingAdvancedPayload struct {
	VenueID      string                `json:"venue_id"`
	AccountID    string                `json:"account_id"`
	VendorStatus domain.VendorStatus   `json:"vendor_status"`
	Step         domain.OnboardingStep `json:"step"`
}

// StaffInvitedPayload payload. Token is handed to the notification
// channel so the invite email can carry a password-set link.
type StaffInvitedPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Token  string `json:"token,omitempty"`
}

// FeeConfigUpdatedPayload payload.
type FeeConfigUpdatedPayload struct {
	VenueID        string  `json:"venue_id"`
	FeePayer       string  `json:"fee_payer"`
	CommissionRate float64 `json:"commission_rate"`
}
