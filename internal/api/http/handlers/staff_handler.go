package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/abhi91543/noqgo/internal/api/dto"
	"github.com/abhi91543/noqgo/internal/auth"
	"github.com/abhi91543/noqgo/internal/domain"
	"github.com/abhi91543/noqgo/internal/service"
	apperrors "github.com/abhi91543/noqgo/pkg/util"
)

// StaffHandler exposes staff roster endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// Invite handles POST /staff.
func (h *StaffHandler) Invite(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.InviteStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.staff.InviteOrPromote(c.Context(), principal, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// List handles GET /staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	staff, err := h.staff.ListStaff(c.Context(), principal, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	result := make([]dto.UserResponse, 0, len(staff))
	for i := range staff {
		result = append(result, dto.NewUserResponse(&staff[i]))
	}
	return c.JSON(fiber.Map{"data": result})
}

// Update handles PATCH /staff/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.staff.UpdateStaff(c.Context(), principal, c.Params("id"), req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Remove handles DELETE /staff/:id.
func (h *StaffHandler) Remove(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	if err := h.staff.RemoveStaff(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetAvailability handles PATCH /staff/:id/availability.
func (h *StaffHandler) SetAvailability(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	availability := domain.Availability(strings.ToUpper(strings.TrimSpace(req.Availability)))

	if err := h.staff.SetAvailability(c.Context(), principal, c.Params("id"), availability); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"availability": availability}})
}
