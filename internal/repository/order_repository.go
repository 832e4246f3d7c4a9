package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhi91543/noqgo/internal/domain"
)

// OrderFilter captures listing parameters for venue dashboards.
type OrderFilter struct {
	Statuses        []domain.OrderStatus
	AssignedStaffID *string
	Limit           int
	Offset          int
}

// OrderRepository encapsulates order persistence. Assignment mutations
// are conditional single-row updates keyed on the current status, which
// makes reprocessing the same order-created event safe.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByVenue(ctx context.Context, venueID string, filter OrderFilter) ([]domain.Order, error)
	// ClaimForAssignment binds the order to a staff member. It reports
	// false when the order already left AWAITING_ASSIGNMENT.
	ClaimForAssignment(ctx context.Context, orderID, staffID string) (bool, error)
	// MarkUnassigned records that no eligible staff existed.
	MarkUnassigned(ctx context.Context, orderID string) (bool, error)
	// MarkAssignmentError stamps the explicit failure status so the
	// order is never left unbound without an explanation.
	MarkAssignmentError(ctx context.Context, orderID string) error
	// UpdateStatus applies a fulfilment transition guarded by the
	// expected current status.
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates the repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, venue_id, customer_user_id, customer_email, location_label, total_amount, commission_amount, transfer_amount, payment_order_id, status, assigned_staff_id, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const orderQuery = `
        INSERT INTO orders (venue_id, customer_user_id, customer_email, location_label, total_amount, commission_amount, transfer_amount, payment_order_id, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	if err := tx.QueryRow(ctx, orderQuery,
		order.VenueID,
		order.CustomerID,
		order.CustomerEmail,
		order.Location,
		order.TotalAmount,
		order.CommissionAmount,
		order.TransferAmount,
		order.PaymentOrderID,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	const itemQuery = `
        INSERT INTO order_items (order_id, name, unit_price, quantity)
        VALUES ($1,$2,$3,$4)
        RETURNING id`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := tx.QueryRow(ctx, itemQuery,
			item.OrderID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
		).Scan(&item.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`

	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.VenueID,
		&order.CustomerID,
		&order.CustomerEmail,
		&order.Location,
		&order.TotalAmount,
		&order.CommissionAmount,
		&order.TransferAmount,
		&order.PaymentOrderID,
		&order.Status,
		&order.AssignedStaffID,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
        SELECT id, order_id, name, unit_price, quantity
        FROM order_items WHERE order_id=$1 ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepository) ListByVenue(ctx context.Context, venueID string, filter OrderFilter) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE venue_id=$1`
	args := []any{venueID}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ","))
	}
	if filter.AssignedStaffID != nil {
		args = append(args, *filter.AssignedStaffID)
		query += fmt.Sprintf(" AND assigned_staff_id=$%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.VenueID,
			&order.CustomerID,
			&order.CustomerEmail,
			&order.Location,
			&order.TotalAmount,
			&order.CommissionAmount,
			&order.TransferAmount,
			&order.PaymentOrderID,
			&order.Status,
			&order.AssignedStaffID,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}

func (r *orderRepository) ClaimForAssignment(ctx context.Context, orderID, staffID string) (bool, error) {
	const query = `
        UPDATE orders SET status=$1, assigned_staff_id=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`

	cmd, err := r.pool.Exec(ctx, query,
		domain.OrderStatusPaidAssigned,
		staffID,
		orderID,
		domain.OrderStatusAwaitingAssignment,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *orderRepository) MarkUnassigned(ctx context.Context, orderID string) (bool, error) {
	const query = `
        UPDATE orders SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`

	cmd, err := r.pool.Exec(ctx, query,
		domain.OrderStatusPaidUnassigned,
		orderID,
		domain.OrderStatusAwaitingAssignment,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *orderRepository) MarkAssignmentError(ctx context.Context, orderID string) error {
	const query = `
        UPDATE orders SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status IN ($3, $4)`

	_, err := r.pool.Exec(ctx, query,
		domain.OrderStatusAssignmentError,
		orderID,
		domain.OrderStatusAwaitingAssignment,
		domain.OrderStatusPaidAssigned,
	)
	return err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error) {
	const query = `
        UPDATE orders SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`

	cmd, err := r.pool.Exec(ctx, query, to, orderID, from)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}
