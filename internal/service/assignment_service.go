package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/abhi91543/noqgo/internal/domain"
	"github.com/abhi91543/noqgo/internal/events"
	"github.com/abhi91543/noqgo/internal/repository"
	apperrors "github.com/abhi91543/noqgo/pkg/util"
)

// DuplicateGuard short-circuits redundant deliveries of the same
// order-created event. The conditional status update in the order
// repository remains the authoritative idempotency check.
type DuplicateGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string)
}

// AssignmentService routes freshly paid orders to the least-loaded
// available staff member.
type AssignmentService struct {
	orders     repository.OrderRepository
	staff      repository.StaffRepository
	guard      DuplicateGuard
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	OrderRepo  repository.OrderRepository
	StaffRepo  repository.StaffRepository
	Guard      DuplicateGuard
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		orders:     deps.OrderRepo,
		staff:      deps.StaffRepo,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// AssignOrder processes one order-created event. Reprocessing the same
// order is safe: once the order has left AWAITING_ASSIGNMENT every call
// is a no-op, so at-least-once delivery never double-increments a staff
// counter.
func (s *AssignmentService) AssignOrder(ctx context.Context, orderID string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return apperrors.MapError(err)
	}
	if order.Status != domain.OrderStatusAwaitingAssignment {
		return nil
	}

	if s.guard != nil {
		acquired, err := s.guard.Acquire(ctx, orderID)
		if err == nil && !acquired {
			return nil
		}
	}

	candidate, err := s.staff.NextAvailable(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.markUnassigned(ctx, orderID)
		}
		s.release(ctx, orderID)
		return apperrors.MapError(err)
	}

	claimed, err := s.orders.ClaimForAssignment(ctx, orderID, candidate.ID)
	if err != nil {
		s.release(ctx, orderID)
		return apperrors.MapError(err)
	}
	if !claimed {
		// a concurrent delivery won the race
		return nil
	}

	if err := s.staff.IncrementAssignedOrders(ctx, candidate.ID); err != nil {
		// the order is already bound; stamp the explicit error status so
		// it is never left ambiguous
		s.logger.Error("staff counter increment failed",
			zap.String("order_id", orderID),
			zap.String("staff_id", candidate.ID),
			zap.Error(err),
		)
		if markErr := s.orders.MarkAssignmentError(ctx, orderID); markErr != nil {
			s.logger.Error("failed to mark assignment error", zap.String("order_id", orderID), zap.Error(markErr))
		}
		s.release(ctx, orderID)
		return apperrors.MapError(err)
	}

	s.logger.Info("order assigned",
		zap.String("order_id", orderID),
		zap.String("staff_id", candidate.ID),
	)
	s.publish(ctx, events.EventOrderAssigned, events.OrderAssignedPayload{
		OrderID: orderID,
		StaffID: candidate.ID,
	})
	return nil
}

// MarkAssignmentFailed stamps the explicit error status once the
// consumer's retry budget is exhausted.
func (s *AssignmentService) MarkAssignmentFailed(ctx context.Context, orderID string) {
	if err := s.orders.MarkAssignmentError(ctx, orderID); err != nil {
		s.logger.Error("failed to mark assignment error", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (s *AssignmentService) markUnassigned(ctx context.Context, orderID string) error {
	updated, err := s.orders.MarkUnassigned(ctx, orderID)
	if err != nil {
		s.release(ctx, orderID)
		return apperrors.MapError(err)
	}
	if updated {
		s.logger.Warn("no available staff", zap.String("order_id", orderID))
		s.publish(ctx, events.EventOrderUnassigned, events.OrderUnassignedPayload{OrderID: orderID})
	}
	return nil
}

func (s *AssignmentService) release(ctx context.Context, orderID string) {
	if s.guard != nil {
		s.guard.Release(ctx, orderID)
	}
}

func (s *AssignmentService) publish(ctx context.Context, eventType events.EventType, payload any) {
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
