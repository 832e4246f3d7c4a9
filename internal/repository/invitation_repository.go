package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StaffInvitation is a single-use token letting an invited staff member
// set their password.
type StaffInvitation struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// InvitationRepository manages staff invitation persistence.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *StaffInvitation) error
	GetByToken(ctx context.Context, token string) (*StaffInvitation, error)
	MarkUsed(ctx context.Context, id string) error
}

type invitationRepository struct {
	pool *pgxpool.Pool
}

// NewInvitationRepository constructs repository.
func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &invitationRepository{pool: pool}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *StaffInvitation) error {
	const query = `
        INSERT INTO staff_invitations (user_id, token, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		invitation.UserID,
		invitation.Token,
		invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.CreatedAt)
}

func (r *invitationRepository) GetByToken(ctx context.Context, tokenStr string) (*StaffInvitation, error) {
	const query = `
        SELECT id, user_id, token, expires_at, used_at, created_at
        FROM staff_invitations WHERE token=$1`
	var invitation StaffInvitation
	if err := r.pool.QueryRow(ctx, query, tokenStr).Scan(
		&invitation.ID,
		&invitation.UserID,
		&invitation.Token,
		&invitation.ExpiresAt,
		&invitation.UsedAt,
		&invitation.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `
        UPDATE staff_invitations SET used_at=NOW()
        WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
