package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhi91543/noqgo/internal/domain"
)

// VenueRepository encapsulates venue persistence. Vendor-account fields
// are mutated only through the guarded single-row updates below.
type VenueRepository interface {
	Create(ctx context.Context, venue *domain.Venue) error
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	GetByVendorAccount(ctx context.Context, accountID string) (*domain.Venue, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Venue, error)
	// ClaimVendorAccount persists the newly created sub-account id. The
	// update only matches while vendor_account_id is still NULL, so a
	// duplicate onboarding call can never overwrite a linked account.
	ClaimVendorAccount(ctx context.Context, venueID, accountID string) error
	// AdvanceOnboarding records a completed onboarding step. The update
	// is forward-only: it matches only while the persisted step ranks
	// below the target, so a replayed earlier step never rewinds the
	// marker. Returns false when the venue was already at or past the
	// target step.
	AdvanceOnboarding(ctx context.Context, venueID string, status domain.VendorStatus, step domain.OnboardingStep) (bool, error)
	UpdateFeeConfiguration(ctx context.Context, venueID, feePayer string, commissionRate float64) error
}

type venueRepository struct {
	pool *pgxpool.Pool
}

// NewVenueRepository instantiates the repository.
func NewVenueRepository(pool *pgxpool.Pool) VenueRepository {
	return &venueRepository{pool: pool}
}

const venueColumns = `id, owner_user_id, name, fee_payer, commission_rate, vendor_account_id, vendor_status, onboarding_step, latitude, longitude, radius_meters, created_at, updated_at`

func (r *venueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	const query = `
        INSERT INTO venues (owner_user_id, name, fee_payer, commission_rate, vendor_status, onboarding_step, latitude, longitude, radius_meters)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		venue.OwnerID,
		venue.Name,
		venue.FeePayer,
		venue.CommissionRate,
		venue.VendorStatus,
		venue.OnboardingStep,
		venue.Latitude,
		venue.Longitude,
		venue.RadiusMeters,
	).Scan(&venue.ID, &venue.CreatedAt, &venue.UpdatedAt)
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *venueRepository) GetByVendorAccount(ctx context.Context, accountID string) (*domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE vendor_account_id=$1`
	return r.fetchSingle(ctx, query, accountID)
}

func (r *venueRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Venue, error) {
	var venue domain.Venue
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&venue.ID,
		&venue.OwnerID,
		&venue.Name,
		&venue.FeePayer,
		&venue.CommissionRate,
		&venue.VendorAccountID,
		&venue.VendorStatus,
		&venue.OnboardingStep,
		&venue.Latitude,
		&venue.Longitude,
		&venue.RadiusMeters,
		&venue.CreatedAt,
		&venue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *venueRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE owner_user_id=$1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Venue
	for rows.Next() {
		var venue domain.Venue
		if err := rows.Scan(
			&venue.ID,
			&venue.OwnerID,
			&venue.Name,
			&venue.FeePayer,
			&venue.CommissionRate,
			&venue.VendorAccountID,
			&venue.VendorStatus,
			&venue.OnboardingStep,
			&venue.Latitude,
			&venue.Longitude,
			&venue.RadiusMeters,
			&venue.CreatedAt,
			&venue.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, venue)
	}
	return result, rows.Err()
}

func (r *venueRepository) ClaimVendorAccount(ctx context.Context, venueID, accountID string) error {
	const query = `
        UPDATE venues
        SET vendor_account_id=$1, vendor_status=$2, onboarding_step=$3, updated_at=NOW()
        WHERE id=$4 AND vendor_account_id IS NULL`

	cmd, err := r.pool.Exec(ctx, query,
		accountID,
		domain.VendorStatusCreated,
		domain.OnboardingStepAccountCreated,
		venueID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *venueRepository) AdvanceOnboarding(ctx context.Context, venueID string, status domain.VendorStatus, step domain.OnboardingStep) (bool, error) {
	const query = `
        UPDATE venues SET vendor_status=$1, onboarding_step=$2, updated_at=NOW()
        WHERE id=$3 AND
          CASE onboarding_step
            WHEN 'ACCOUNT_CREATED' THEN 1
            WHEN 'STAKEHOLDER_ADDED' THEN 2
            WHEN 'PRODUCT_REQUESTED' THEN 3
            WHEN 'SETTLEMENT_SUBMITTED' THEN 4
            ELSE 0
          END < $4`

	cmd, err := r.pool.Exec(ctx, query, status, step, venueID, step.Rank())
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *venueRepository) UpdateFeeConfiguration(ctx context.Context, venueID, feePayer string, commissionRate float64) error {
	const query = `
        UPDATE venues SET fee_payer=$1, commission_rate=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, feePayer, commissionRate, venueID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
