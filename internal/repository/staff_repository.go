package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhi91543/noqgo/internal/domain"
)

// StaffRepository covers the assignment-engine view of the users table.
type StaffRepository interface {
	// NextAvailable returns the available staff member carrying the
	// fewest assigned orders, ties broken by ascending id so selection
	// is deterministic. pgx.ErrNoRows signals an empty candidate set.
	NextAvailable(ctx context.Context) (*domain.User, error)
	// IncrementAssignedOrders bumps the counter atomically in SQL; it is
	// never implemented as read-then-write.
	IncrementAssignedOrders(ctx context.Context, staffID string) error
	SetAvailability(ctx context.Context, staffID string, availability domain.Availability) error
	ListStaff(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) NextAvailable(ctx context.Context) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
        FROM users
        WHERE role=$1 AND availability=$2
        ORDER BY assigned_orders_count ASC, id ASC
        LIMIT 1`

	var staff domain.User
	if err := r.pool.QueryRow(ctx, query, domain.RoleStaff, domain.AvailabilityAvailable).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.Phone,
		&staff.PasswordHash,
		&staff.Role,
		&staff.BusinessType,
		&staff.Availability,
		&staff.AssignedOrdersCount,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) IncrementAssignedOrders(ctx context.Context, staffID string) error {
	const query = `
        UPDATE users
        SET assigned_orders_count = assigned_orders_count + 1, updated_at=NOW()
        WHERE id=$1 AND role=$2`

	cmd, err := r.pool.Exec(ctx, query, staffID, domain.RoleStaff)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) SetAvailability(ctx context.Context, staffID string, availability domain.Availability) error {
	const query = `
        UPDATE users SET availability=$1, updated_at=NOW()
        WHERE id=$2 AND role=$3`

	cmd, err := r.pool.Exec(ctx, query, availability, staffID, domain.RoleStaff)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) ListStaff(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + userColumns + `
        FROM users WHERE role=$1
        ORDER BY name ASC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, domain.RoleStaff, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var staff domain.User
		if err := rows.Scan(
			&staff.ID,
			&staff.Name,
			&staff.Email,
			&staff.Phone,
			&staff.PasswordHash,
			&staff.Role,
			&staff.BusinessType,
			&staff.Availability,
			&staff.AssignedOrdersCount,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}
