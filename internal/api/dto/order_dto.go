package dto

import (
	"time"

	"github.com/abhi91543/noqgo/internal/domain"
)

// OrderItemRequest is one requested line item.
type OrderItemRequest struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int32  `json:"quantity"`
}

// CreateOrderRequest payload for placing an order.
type CreateOrderRequest struct {
	VenueID       string             `json:"venue_id"`
	CustomerEmail string             `json:"customer_email"`
	Location      string             `json:"location"`
	Items         []OrderItemRequest `json:"items"`
}

// UpdateOrderStatusRequest payload for fulfilment transitions.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int32  `json:"quantity"`
}

// OrderResponse is the public shape of an order.
type OrderResponse struct {
	ID               string              `json:"id"`
	VenueID          string              `json:"venue_id"`
	CustomerID       string              `json:"customer_id,omitempty"`
	CustomerEmail    string              `json:"customer_email,omitempty"`
	Location         string              `json:"location"`
	Items            []OrderItemResponse `json:"items"`
	TotalAmount      int64               `json:"total_amount"`
	CommissionAmount int64               `json:"commission_amount"`
	TransferAmount   int64               `json:"transfer_amount"`
	PaymentOrderID   *string             `json:"payment_order_id,omitempty"`
	Status           string              `json:"status"`
	AssignedStaffID  *string             `json:"assigned_staff_id,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// NewOrderResponse maps the domain model.
func NewOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return OrderResponse{
		ID:               order.ID,
		VenueID:          order.VenueID,
		CustomerID:       order.CustomerID,
		CustomerEmail:    order.CustomerEmail,
		Location:         order.Location,
		Items:            items,
		TotalAmount:      order.TotalAmount,
		CommissionAmount: order.CommissionAmount,
		TransferAmount:   order.TransferAmount,
		PaymentOrderID:   order.PaymentOrderID,
		Status:           string(order.Status),
		AssignedStaffID:  order.AssignedStaffID,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

// NewOrderListResponse maps a slice of orders.
func NewOrderListResponse(orders []domain.Order) []OrderResponse {
	result := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, NewOrderResponse(&orders[i]))
	}
	return result
}
