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
	"github.com/abhi91543/noqgo/internal/repository"
	apperrors "github.com/abhi91543/noqgo/pkg/util"
)

// Fee payer values accepted on venue configuration.
const (
	FeePayerVendor   = "vendor"
	FeePayerCustomer = "customer"
)

// VenueService manages venue records and their fee configuration.
type VenueService struct {
	venues                repository.VenueRepository
	dispatcher            events.Dispatcher
	logger                *zap.Logger
	defaultCommissionRate float64
}

// VenueDependencies bundles collaborators.
type VenueDependencies struct {
	VenueRepo             repository.VenueRepository
	Dispatcher            events.Dispatcher
	Logger                *zap.Logger
	DefaultCommissionRate float64
}

// NewVenueService constructs the service.
func NewVenueService(deps VenueDependencies) *VenueService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VenueService{
		venues:                deps.VenueRepo,
		dispatcher:            deps.Dispatcher,
		logger:                logger,
		defaultCommissionRate: deps.DefaultCommissionRate,
	}
}

// CreateVenueInput carries a new venue's attributes.
type CreateVenueInput struct {
	Name         string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters *int32
}

// CreateVenue registers a venue for an owner, seeded with the platform
// default commission and the vendor paying fees.
func (s *VenueService) CreateVenue(ctx context.Context, actor *domain.User, input CreateVenueInput) (*domain.Venue, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleOwner && actor.Role != domain.RoleSuperadmin {
		return nil, apperrors.NewForbidden("only owners can create venues")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("venue name required", nil)
	}

	venue := &domain.Venue{
		OwnerID:        actor.ID,
		Name:           input.Name,
		FeePayer:       FeePayerVendor,
		CommissionRate: s.defaultCommissionRate,
		VendorStatus:   domain.VendorStatusNotConnected,
		OnboardingStep: domain.OnboardingStepNone,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		RadiusMeters:   input.RadiusMeters,
	}
	if err := s.venues.Create(ctx, venue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("venue created",
		zap.String("venue_id", venue.ID),
		zap.String("owner_id", actor.ID),
	)
	return venue, nil
}

// GetVenue fetches one venue. The record is public enough for customers
// placing orders, so no ownership check applies.
func (s *VenueService) GetVenue(ctx context.Context, venueID string) (*domain.Venue, error) {
	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("venue", map[string]any{"venue_id": venueID})
		}
		return nil, apperrors.MapError(err)
	}
	return venue, nil
}

// ListOwnerVenues returns the caller's venues.
func (s *VenueService) ListOwnerVenues(ctx context.Context, actor *domain.User) ([]domain.Venue, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	venues, err := s.venues.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return venues, nil
}

// UpdateFeeConfiguration changes who pays fees and the commission rate.
func (s *VenueService) UpdateFeeConfiguration(ctx context.Context, actor *domain.User, venueID, feePayer string, commissionRate float64) (*domain.Venue, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("venue", map[string]any{"venue_id": venueID})
		}
		return nil, apperrors.MapError(err)
	}
	if venue.OwnerID != actor.ID && actor.Role != domain.RoleSuperadmin {
		return nil, apperrors.NewForbidden("only the venue owner can change fee configuration")
	}

	feePayer = strings.ToLower(strings.TrimSpace(feePayer))
	if feePayer != FeePayerVendor && feePayer != FeePayerCustomer {
		return nil, apperrors.NewValidationError("fee payer must be vendor or customer", nil)
	}
	if commissionRate < 0 || commissionRate > 100 {
		return nil, apperrors.NewValidationError("commission rate must be between 0 and 100", nil)
	}

	if err := s.venues.UpdateFeeConfiguration(ctx, venueID, feePayer, commissionRate); err != nil {
		return nil, apperrors.MapError(err)
	}
	venue.FeePayer = feePayer
	venue.CommissionRate = commissionRate

	if s.dispatcher != nil {
		actorID := actor.ID
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventFeeConfigUpdated,
			ActorID:   &actorID,
			Timestamp: time.Now(),
			Payload: events.FeeConfigUpdatedPayload{
				VenueID:        venueID,
				FeePayer:       feePayer,
				CommissionRate: commissionRate,
			},
		})
	}
	return venue, nil
}
