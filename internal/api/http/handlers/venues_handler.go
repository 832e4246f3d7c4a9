package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/abhi91543/noqgo/internal/api/dto"
	"github.com/abhi91543/noqgo/internal/auth"
	"github.com/abhi91543/noqgo/internal/service"
	apperrors "github.com/abhi91543/noqgo/pkg/util"
)

// VenuesHandler exposes venue management endpoints.
type VenuesHandler struct {
	venues *service.VenueService
}

// NewVenuesHandler constructs handler.
func NewVenuesHandler(venues *service.VenueService) *VenuesHandler {
	return &VenuesHandler{venues: venues}
}

// Create handles POST /venues.
func (h *VenuesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateVenueRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	venue, err := h.venues.CreateVenue(c.Context(), principal, service.CreateVenueInput{
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewVenueResponse(venue)})
}

// Get handles GET /venues/:id.
func (h *VenuesHandler) Get(c *fiber.Ctx) error {
	venue, err := h.venues.GetVenue(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVenueResponse(venue)})
}

// ListMine handles GET /venues.
func (h *VenuesHandler) ListMine(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	venues, err := h.venues.ListOwnerVenues(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVenueListResponse(venues)})
}

// UpdateFeeConfiguration handles PATCH /venues/:id/fees.
func (h *VenuesHandler) UpdateFeeConfiguration(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.FeeConfigurationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	venue, err := h.venues.UpdateFeeConfiguration(c.Context(), principal, c.Params("id"), req.FeePayer, req.CommissionRate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVenueResponse(venue)})
}
