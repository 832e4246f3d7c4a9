package domain

import "time"

// OrderStatus enumerates order lifecycle states. Orders enter in
// AWAITING_ASSIGNMENT after successful payment and are never deleted.
type OrderStatus string

const (
	OrderStatusAwaitingAssignment OrderStatus = "AWAITING_ASSIGNMENT"
	OrderStatusPaidAssigned       OrderStatus = "PAID_ASSIGNED"
	OrderStatusPaidUnassigned     OrderStatus = "PAID_UNASSIGNED"
	OrderStatusAssignmentError    OrderStatus = "ASSIGNMENT_ERROR"
	OrderStatusPreparing          OrderStatus = "PREPARING"
	OrderStatusReady              OrderStatus = "READY"
	OrderStatusDelivered          OrderStatus = "DELIVERED"
)

// CanTransitionTo enforces the forward-only fulfilment path driven by
// staff and pantry actors.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPaidAssigned:
		return next == OrderStatusPreparing
	case OrderStatusPreparing:
		return next == OrderStatusReady
	case OrderStatusReady:
		return next == OrderStatusDelivered
	}
	return false
}

// OrderItem is a single ordered line. UnitPrice is in minor currency units.
type OrderItem struct {
	ID        string
	OrderID   string
	Name      string
	UnitPrice int64
	Quantity  int32
}

// Order is the aggregate for a paid customer order. TotalAmount equals
// the sum of unit price times quantity over the line items at creation.
type Order struct {
	ID               string
	VenueID          string
	CustomerID       string
	CustomerEmail    string
	Location         string
	Items            []OrderItem
	TotalAmount      int64
	CommissionAmount int64
	TransferAmount   int64
	PaymentOrderID   *string
	Status           OrderStatus
	AssignedStaffID  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
