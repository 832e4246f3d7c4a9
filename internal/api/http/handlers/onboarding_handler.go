package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/abhi91543/noqgo/internal/api/dto"
	"github.com/abhi91543/noqgo/internal/auth"
	"github.com/abhi91543/noqgo/internal/service"
	apperrors "github.com/abhi91543/noqgo/pkg/util"
)

// OnboardingHandler exposes the vendor onboarding steps.
type OnboardingHandler struct {
	onboarding *service.OnboardingService
}

// NewOnboardingHandler constructs handler.
func NewOnboardingHandler(onboarding *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

// CreateLinkedAccount handles POST /onboarding/accounts.
func (h *OnboardingHandler) CreateLinkedAccount(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateLinkedAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	accountID, err := h.onboarding.CreateLinkedAccount(c.Context(), principal.ID, req.VenueID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"account_id": accountID}})
}

// CreateStakeholder handles POST /onboarding/stakeholders.
func (h *OnboardingHandler) CreateStakeholder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateStakeholderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.onboarding.CreateStakeholder(c.Context(), principal.ID, req.AccountID, req.Name, req.Email, req.TaxID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"account_id": req.AccountID}})
}

// RequestProductActivation handles POST /onboarding/products.
func (h *OnboardingHandler) RequestProductActivation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.RequestProductActivationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.onboarding.RequestProductActivation(c.Context(), principal.ID, req.AccountID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"account_id": req.AccountID}})
}

// SubmitSettlementDetails handles POST /onboarding/settlement.
func (h *OnboardingHandler) SubmitSettlementDetails(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SettlementDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.onboarding.SubmitSettlementDetails(c.Context(), principal.ID, req.AccountID, req.BeneficiaryName, req.AccountNumber, req.RoutingCode); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"account_id": req.AccountID}})
}
