package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhi91543/noqgo/internal/domain"
)

func newAssignmentFixture() (*AssignmentService, *fakeOrderRepo, *fakeStaffRepo, *fakeGuard) {
	orders := newFakeOrderRepo()
	staff := newFakeStaffRepo()
	guard := newFakeGuard()
	svc := NewAssignmentService(AssignmentDependencies{
		OrderRepo: orders,
		StaffRepo: staff,
		Guard:     guard,
		Logger:    zap.NewNop(),
	})
	return svc, orders, staff, guard
}

func createAwaitingOrder(t *testing.T, orders *fakeOrderRepo) string {
	t.Helper()
	order := &domain.Order{
		VenueID:     "venue-1",
		TotalAmount: 500,
		Status:      domain.OrderStatusAwaitingAssignment,
	}
	require.NoError(t, orders.Create(context.Background(), order))
	return order.ID
}

func TestAssignOrderPicksLeastLoadedStaff(t *testing.T) {
	svc, orders, staff, _ := newAssignmentFixture()
	staff.add("staff-a", domain.AvailabilityAvailable, 3)
	staff.add("staff-b", domain.AvailabilityAvailable, 1)
	staff.add("staff-c", domain.AvailabilityUnavailable, 0)

	orderID := createAwaitingOrder(t, orders)
	require.NoError(t, svc.AssignOrder(context.Background(), orderID))

	order, err := orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaidAssigned, order.Status)
	require.NotNil(t, order.AssignedStaffID)
	assert.Equal(t, "staff-b", *order.AssignedStaffID)
	assert.Equal(t, int64(2), staff.count("staff-b"))
	assert.Equal(t, int64(3), staff.count("staff-a"))
}

func TestAssignOrderBreaksTiesByID(t *testing.T) {
	svc, orders, staff, _ := newAssignmentFixture()
	staff.add("staff-b", domain.AvailabilityAvailable, 2)
	staff.add("staff-a", domain.AvailabilityAvailable, 2)

	orderID := createAwaitingOrder(t, orders)
	require.NoError(t, svc.AssignOrder(context.Background(), orderID))

	order, err := orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, order.AssignedStaffID)
	assert.Equal(t, "staff-a", *order.AssignedStaffID)
}

func TestAssignOrderBalancesLoadGreedily(t *testing.T) {
	svc, orders, staff, _ := newAssignmentFixture()
	for i := 0; i < 4; i++ {
		staff.add(fmt.Sprintf("staff-%d", i), domain.AvailabilityAvailable, 0)
	}

	for i := 0; i < 22; i++ {
		orderID := createAwaitingOrder(t, orders)
		require.NoError(t, svc.AssignOrder(context.Background(), orderID))
	}

	counts := staff.counts()
	var min, max, total int64
	min = counts[0]
	for _, count := range counts {
		if count < min {
			min = count
		}
		if count > max {
			max = count
		}
		total += count
	}
	assert.Equal(t, int64(22), total)
	assert.LessOrEqual(t, max-min, int64(1), "sequential assignment keeps loads within one of each other")
}

func TestAssignOrderNoStaffAvailable(t *testing.T) {
	svc, orders, staff, _ := newAssignmentFixture()
	staff.add("staff-a", domain.AvailabilityUnavailable, 0)

	orderID := createAwaitingOrder(t, orders)
	require.NoError(t, svc.AssignOrder(context.Background(), orderID))

	order, err := orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaidUnassigned, order.Status)
	assert.Nil(t, order.AssignedStaffID)
	assert.Equal(t, int64(0), staff.count("staff-a"))
}

func TestAssignOrderDuplicateDeliveryIsNoOp(t *testing.T) {
	svc, orders, staff, _ := newAssignmentFixture()
	staff.add("staff-a", domain.AvailabilityAvailable, 0)

	orderID := createAwaitingOrder(t, orders)
	require.NoError(t, svc.AssignOrder(context.Background(), orderID))
	// redelivery of the same event
	require.NoError(t, svc.AssignOrder(context.Background(), orderID))
	require.NoError(t, svc.AssignOrder(context.Background(), orderID))

	assert.Equal(t, int64(1), staff.count("staff-a"), "counter must not double-increment")

	order, err := orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaidAssigned, order.Status)
}

func TestAssignOrderGuardRefusalShortCircuits(t *testing.T) {
	svc, orders, staff, guard := newAssignmentFixture()
	staff.add("staff-a", domain.AvailabilityAvailable, 0)

	orderID := createAwaitingOrder(t, orders)
	held, err := guard.Acquire(context.Background(), orderID)
	require.NoError(t, err)
	require.True(t, held)

	require.NoError(t, svc.AssignOrder(context.Background(), orderID))

	order, err := orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingAssignment, order.Status)
	assert.Equal(t, int64(0), staff.count("staff-a"))
}

func TestAssignOrderIncrementFailureMarksError(t *testing.T) {
	svc, orders, staff, guard := newAssignmentFixture()
	staff.add("staff-a", domain.AvailabilityAvailable, 0)
	staff.incrementErr = errors.New("connection reset")

	orderID := createAwaitingOrder(t, orders)
	err := svc.AssignOrder(context.Background(), orderID)
	require.Error(t, err)

	assert.Equal(t, domain.OrderStatusAssignmentError, orders.status(orderID))
	assert.Empty(t, guard.held, "guard key released so a retry can run")
}

func TestAssignOrderUnknownOrder(t *testing.T) {
	svc, _, _, _ := newAssignmentFixture()
	err := svc.AssignOrder(context.Background(), "missing")
	assert.Error(t, err)
}

func TestMarkAssignmentFailed(t *testing.T) {
	svc, orders, _, _ := newAssignmentFixture()
	orderID := createAwaitingOrder(t, orders)

	svc.MarkAssignmentFailed(context.Background(), orderID)
	assert.Equal(t, domain.OrderStatusAssignmentError, orders.status(orderID))
}
