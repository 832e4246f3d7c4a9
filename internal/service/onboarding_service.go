package service

import (
	"context"
	"errors"
	"regexp"
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

var nonDigits = regexp.MustCompile(`\D`)

// OnboardingService drives a venue's payment sub-account through the
// ordered provisioning steps. Each step persists its outcome in a single
// venue-row update, so an abandoned workflow can be resumed and an
// already-completed step re-invoked without repeating remote side
// effects where the state machine can tell they happened.
type OnboardingService struct {
	venues     repository.VenueRepository
	users      repository.UserRepository
	provider   payments.Provider
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// OnboardingDependencies bundles collaborators.
type OnboardingDependencies struct {
	VenueRepo  repository.VenueRepository
	UserRepo   repository.UserRepository
	Provider   payments.Provider
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewOnboardingService creates the service.
func NewOnboardingService(deps OnboardingDependencies) *OnboardingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingService{
		venues:     deps.VenueRepo,
		users:      deps.UserRepo,
		provider:   deps.Provider,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateLinkedAccount provisions the routed sub-account for a venue.
// All precondition checks run before the external call; a venue that
// already carries an account id is rejected so a second remote account
// can never be created.
func (s *OnboardingService) CreateLinkedAccount(ctx context.Context, callerID, venueID string) (string, error) {
	if strings.TrimSpace(venueID) == "" {
		return "", apperrors.NewValidationError("venue id required", nil)
	}

	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("venue", map[string]any{"venue_id": venueID})
		}
		return "", apperrors.MapError(err)
	}
	if venue.OwnerID != callerID {
		return "", apperrors.NewForbidden("only the venue owner can connect a payment account")
	}
	if venue.VendorAccountID != nil {
		return "", apperrors.NewPreconditionFailed("venue already has a linked account", map[string]any{
			"account_id": *venue.VendorAccountID,
		})
	}

	owner, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if !owner.HasCompleteBusinessProfile() {
		return "", apperrors.NewPreconditionFailed("owner profile must carry name, email, phone and business type", nil)
	}

	businessName := venue.Name
	if strings.TrimSpace(businessName) == "" {
		businessName = owner.Name
	}
	account, err := s.provider.CreateSubAccount(ctx, payments.SubAccountRequest{
		Email:             owner.Email,
		Phone:             lastTenDigits(owner.Phone),
		BusinessName:      businessName,
		LegalBusinessName: businessName,
		BusinessType:      "proprietorship",
	})
	if err != nil {
		return "", providerError(err)
	}

	if err := s.venues.ClaimVendorAccount(ctx, venueID, account.ID); err != nil {
		// the remote account exists; surface the mismatch instead of
		// dropping it silently
		s.logger.Error("sub-account created but venue update failed",
			zap.String("venue_id", venueID),
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
		return "", apperrors.NewInternalError(err)
	}

	s.logger.Info("linked account created",
		zap.String("venue_id", venueID),
		zap.String("account_id", account.ID),
	)
	s.publish(ctx, callerID, events.OnboardingAdvancedPayload{
		VenueID:      venueID,
		AccountID:    account.ID,
		VendorStatus: domain.VendorStatusCreated,
		Step:         domain.OnboardingStepAccountCreated,
	})
	return account.ID, nil
}

// CreateStakeholder registers the beneficial owner for a linked account.
func (s *OnboardingService) CreateStakeholder(ctx context.Context, callerID, accountID, name, email, taxID string) error {
	if anyEmpty(accountID, name, email, taxID) {
		return apperrors.NewValidationError("account id, name, email and tax id are required", nil)
	}

	venue, err := s.venues.GetByVendorAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("linked account", map[string]any{"account_id": accountID})
		}
		return apperrors.MapError(err)
	}

	if _, err := s.provider.CreateStakeholder(ctx, accountID, payments.StakeholderRequest{
		Name:  name,
		Email: email,
		TaxID: taxID,
	}); err != nil && !payments.IsAlreadyDone(err) {
		return providerError(err)
	}

	advanced, err := s.venues.AdvanceOnboarding(ctx, venue.ID, venue.VendorStatus, domain.OnboardingStepStakeholderAdded)
	if err != nil {
		s.logger.Error("stakeholder registered but step update failed",
			zap.String("venue_id", venue.ID),
			zap.Error(err),
		)
		return apperrors.NewInternalError(err)
	}
	if !advanced {
		// replayed call, the venue is already at or past this step
		s.logger.Info("stakeholder step already recorded", zap.String("venue_id", venue.ID))
		return nil
	}

	s.logger.Info("stakeholder registered", zap.String("account_id", accountID))
	s.publish(ctx, callerID, events.OnboardingAdvancedPayload{
		VenueID:      venue.ID,
		AccountID:    accountID,
		VendorStatus: venue.VendorStatus,
		Step:         domain.OnboardingStepStakeholderAdded,
	})
	return nil
}

// RequestProductActivation asks the provider to begin activation review.
// An "already requested" response from the provider counts as success.
func (s *OnboardingService) RequestProductActivation(ctx context.Context, callerID, accountID string) error {
	if strings.TrimSpace(accountID) == "" {
		return apperrors.NewValidationError("account id required", nil)
	}

	venue, err := s.venues.GetByVendorAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("linked account", map[string]any{"account_id": accountID})
		}
		return apperrors.MapError(err)
	}

	if _, err := s.provider.RequestProductActivation(ctx, accountID); err != nil && !payments.IsAlreadyDone(err) {
		return providerError(err)
	}

	advanced, err := s.venues.AdvanceOnboarding(ctx, venue.ID, venue.VendorStatus, domain.OnboardingStepProductRequested)
	if err != nil {
		s.logger.Error("activation requested but step update failed",
			zap.String("venue_id", venue.ID),
			zap.Error(err),
		)
		return apperrors.NewInternalError(err)
	}
	if !advanced {
		s.logger.Info("product activation step already recorded", zap.String("venue_id", venue.ID))
		return nil
	}

	s.logger.Info("product activation requested", zap.String("account_id", accountID))
	s.publish(ctx, callerID, events.OnboardingAdvancedPayload{
		VenueID:      venue.ID,
		AccountID:    accountID,
		VendorStatus: venue.VendorStatus,
		Step:         domain.OnboardingStepProductRequested,
	})
	return nil
}

// SubmitSettlementDetails supplies the payout bank account and, when a
// matching venue exists, activates it. A successful remote submission
// with no matching venue is still reported as success; the local state
// is left untouched and the mismatch logged for reconciliation.
func (s *OnboardingService) SubmitSettlementDetails(ctx context.Context, callerID, accountID, beneficiaryName, accountNumber, routingCode string) error {
	if anyEmpty(accountID, beneficiaryName, accountNumber, routingCode) {
		return apperrors.NewValidationError("account id, beneficiary name, account number and routing code are required", nil)
	}

	if err := s.provider.SubmitSettlementDetails(ctx, accountID, payments.SettlementDetails{
		BeneficiaryName: beneficiaryName,
		AccountNumber:   accountNumber,
		RoutingCode:     routingCode,
	}); err != nil && !payments.IsAlreadyDone(err) {
		return providerError(err)
	}

	venue, err := s.venues.GetByVendorAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("settlement details accepted for account with no matching venue",
				zap.String("account_id", accountID),
			)
			return nil
		}
		return apperrors.MapError(err)
	}

	advanced, err := s.venues.AdvanceOnboarding(ctx, venue.ID, domain.VendorStatusActivated, domain.OnboardingStepSettlementSubmitted)
	if err != nil {
		s.logger.Error("settlement submitted but activation update failed",
			zap.String("venue_id", venue.ID),
			zap.Error(err),
		)
		return apperrors.NewInternalError(err)
	}
	if !advanced {
		s.logger.Info("settlement step already recorded", zap.String("venue_id", venue.ID))
		return nil
	}

	s.logger.Info("venue activated",
		zap.String("venue_id", venue.ID),
		zap.String("account_id", accountID),
	)
	s.publish(ctx, callerID, events.OnboardingAdvancedPayload{
		VenueID:      venue.ID,
		AccountID:    accountID,
		VendorStatus: domain.VendorStatusActivated,
		Step:         domain.OnboardingStepSettlementSubmitted,
	})
	return nil
}

func (s *OnboardingService) publish(ctx context.Context, actorID string, payload events.OnboardingAdvancedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventOnboardingAdvanced,
		ActorID:   &actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func providerError(err error) error {
	var pe *payments.Error
	if errors.As(err, &pe) {
		return apperrors.NewProviderError(pe.Code, pe.Description)
	}
	return apperrors.MapError(err)
}

func anyEmpty(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func lastTenDigits(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}
