package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/abhi91543/noqgo/internal/domain"
	"github.com/abhi91543/noqgo/internal/events"
	"github.com/abhi91543/noqgo/internal/payments"
	"github.com/abhi91543/noqgo/internal/repository"
	apperrors "github.com/abhi91543/noqgo/pkg/util"
)

// OrderCreatedPublisher hands new orders to the assignment pipeline.
type OrderCreatedPublisher interface {
	PublishOrderCreated(ctx context.Context, orderID, venueID string, totalAmount int64) error
}

// OrderService handles order intake and staff-driven status transitions.
type OrderService struct {
	orders                repository.OrderRepository
	venues                repository.VenueRepository
	provider              payments.Provider
	publisher             OrderCreatedPublisher
	dispatcher            events.Dispatcher
	logger                *zap.Logger
	currency              string
	defaultCommissionRate float64
}

// OrderDependencies bundles collaborators.
type OrderDependencies struct {
	OrderRepo             repository.OrderRepository
	VenueRepo             repository.VenueRepository
	Provider              payments.Provider
	Publisher             OrderCreatedPublisher
	Dispatcher            events.Dispatcher
	Logger                *zap.Logger
	Currency              string
	DefaultCommissionRate float64
}

// NewOrderService creates the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := deps.Currency
	if currency == "" {
		currency = "INR"
	}
	return &OrderService{
		orders:                deps.OrderRepo,
		venues:                deps.VenueRepo,
		provider:              deps.Provider,
		publisher:             deps.Publisher,
		dispatcher:            deps.Dispatcher,
		logger:                logger,
		currency:              currency,
		defaultCommissionRate: deps.DefaultCommissionRate,
	}
}

// CreateOrderItemInput is one requested line item.
type CreateOrderItemInput struct {
	Name      string
	UnitPrice int64
	Quantity  int32
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	VenueID       string
	CustomerID    string
	CustomerEmail string
	Location      string
	Items         []CreateOrderItemInput
}

// CreateOrder validates the request, opens a split payment order with
// the provider, persists the order in AWAITING_ASSIGNMENT and notifies
// the assignment pipeline.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(input.VenueID) == "" {
		return nil, apperrors.NewValidationError("venue id required", nil)
	}
	if strings.TrimSpace(input.Location) == "" {
		return nil, apperrors.NewValidationError("location required", nil)
	}
	if len(input.Items) == 0 {
		return nil, apperrors.NewValidationError("at least one item required", nil)
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" || item.UnitPrice <= 0 || item.Quantity <= 0 {
			return nil, apperrors.NewValidationError("invalid line item", map[string]any{"index": i})
		}
	}

	venue, err := s.venues.GetByID(ctx, input.VenueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("venue", map[string]any{"venue_id": input.VenueID})
		}
		return nil, apperrors.MapError(err)
	}
	if venue.VendorAccountID == nil {
		return nil, apperrors.NewPreconditionFailed("venue is not set up to receive payments", nil)
	}

	var total int64
	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		total += item.UnitPrice * int64(item.Quantity)
		items = append(items, domain.OrderItem{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	// zero is a deliberate free-commission setting; only a negative
	// stored rate means unconfigured
	rate := venue.CommissionRate
	if rate < 0 {
		rate = s.defaultCommissionRate
	}
	commission, transfer := payments.Split(total, rate)

	paymentOrder, err := s.provider.CreatePaymentOrder(ctx, payments.PaymentOrderRequest{
		Amount:   total,
		Currency: s.currency,
		Receipt:  "receipt_order_" + uuid.NewString(),
		Transfer: payments.Transfer{
			AccountID: *venue.VendorAccountID,
			Amount:    transfer,
		},
	})
	if err != nil {
		return nil, providerError(err)
	}

	order := &domain.Order{
		VenueID:          input.VenueID,
		CustomerID:       input.CustomerID,
		CustomerEmail:    input.CustomerEmail,
		Location:         input.Location,
		Items:            items,
		TotalAmount:      total,
		CommissionAmount: commission,
		TransferAmount:   transfer,
		PaymentOrderID:   &paymentOrder.ID,
		Status:           domain.OrderStatusAwaitingAssignment,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("payment order opened but order insert failed",
			zap.String("payment_order_id", paymentOrder.ID),
			zap.Error(err),
		)
		return nil, apperrors.NewInternalError(err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, order.ID, order.VenueID, order.TotalAmount); err != nil {
			// nothing reached the queue, so assignment will never run;
			// stamp the explicit error status to make the order
			// queryable for operator replay
			s.logger.Error("failed to publish order-created event",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
			if markErr := s.orders.MarkAssignmentError(ctx, order.ID); markErr != nil {
				s.logger.Error("failed to mark assignment error",
					zap.String("order_id", order.ID),
					zap.Error(markErr),
				)
			} else {
				order.Status = domain.OrderStatusAssignmentError
			}
		}
	}
	s.publishEvent(ctx, events.EventOrderCreated, events.OrderCreatedPayload{
		OrderID:     order.ID,
		VenueID:     order.VenueID,
		TotalAmount: order.TotalAmount,
	})

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("venue_id", order.VenueID),
		zap.Int64("total", total),
		zap.Int64("commission", commission),
		zap.Int64("transfer", transfer),
	)
	return order, nil
}

// GetOrder fetches one order for its customer, assigned staff, the
// venue owner or a superadmin.
func (s *OrderService) GetOrder(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, apperrors.MapError(err)
	}
	if !s.canView(ctx, actor, order) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return order, nil
}

// ListVenueOrders lists a venue's orders for its owner, staff or a
// superadmin.
func (s *OrderService) ListVenueOrders(ctx context.Context, actor *domain.User, venueID string, filter repository.OrderFilter) ([]domain.Order, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleStaff && actor.Role != domain.RoleSuperadmin {
		venue, err := s.venues.GetByID(ctx, venueID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("venue", map[string]any{"venue_id": venueID})
			}
			return nil, apperrors.MapError(err)
		}
		if venue.OwnerID != actor.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	orders, err := s.orders.ListByVenue(ctx, venueID, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return orders, nil
}

// UpdateStatus applies a forward-only fulfilment transition.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *domain.User, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, apperrors.MapError(err)
	}
	if !s.canFulfil(ctx, actor, order) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": order.Status,
			"to":   next,
		})
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, order.Status, next)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !updated {
		return nil, apperrors.NewConflict("order changed concurrently", map[string]any{"order_id": orderID})
	}

	s.publishEvent(ctx, events.EventOrderStatusChanged, events.OrderStatusChangedPayload{
		OrderID:   orderID,
		OldStatus: order.Status,
		NewStatus: next,
	})
	order.Status = next
	return order, nil
}

func (s *OrderService) canView(ctx context.Context, actor *domain.User, order *domain.Order) bool {
	if actor == nil {
		return false
	}
	if actor.Role == domain.RoleSuperadmin || actor.ID == order.CustomerID {
		return true
	}
	if order.AssignedStaffID != nil && actor.ID == *order.AssignedStaffID {
		return true
	}
	if actor.Role == domain.RoleOwner {
		venue, err := s.venues.GetByID(ctx, order.VenueID)
		if err == nil && venue.OwnerID == actor.ID {
			return true
		}
	}
	return false
}

func (s *OrderService) canFulfil(ctx context.Context, actor *domain.User, order *domain.Order) bool {
	if actor == nil {
		return false
	}
	if actor.Role == domain.RoleSuperadmin {
		return true
	}
	if order.AssignedStaffID != nil && actor.ID == *order.AssignedStaffID {
		return true
	}
	if actor.Role == domain.RoleOwner {
		venue, err := s.venues.GetByID(ctx, order.VenueID)
		if err == nil && venue.OwnerID == actor.ID {
			return true
		}
	}
	return false
}

func (s *OrderService) publishEvent(ctx context.Context, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
