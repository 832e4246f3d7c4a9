package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/abhi91543/noqgo/internal/api/dto"
	"github.com/abhi91543/noqgo/internal/auth"
	"github.com/abhi91543/noqgo/internal/domain"
	"github.com/abhi91543/noqgo/internal/repository"
	"github.com/abhi91543/noqgo/internal/service"
	apperrors "github.com/abhi91543/noqgo/pkg/util"
)

// OrdersHandler exposes order intake and fulfilment endpoints.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	items := make([]service.CreateOrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItemInput{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	email := req.CustomerEmail
	if email == "" {
		email = principal.Email
	}

	order, err := h.orders.CreateOrder(c.Context(), service.CreateOrderInput{
		VenueID:       req.VenueID,
		CustomerID:    principal.ID,
		CustomerEmail: email,
		Location:      req.Location,
		Items:         items,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// Get handles GET /orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	order, err := h.orders.GetOrder(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// ListByVenue handles GET /venues/:id/orders.
func (h *OrdersHandler) ListByVenue(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	filter := repository.OrderFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.OrderStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if staffID := c.Query("assigned_staff_id"); staffID != "" {
		filter.AssignedStaffID = &staffID
	}

	orders, err := h.orders.ListVenueOrders(c.Context(), principal, c.Params("id"), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderListResponse(orders)})
}

// UpdateStatus handles PATCH /orders/:id/status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	next := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if next == "" {
		return fiber.NewError(http.StatusBadRequest, "status required")
	}

	order, err := h.orders.UpdateStatus(c.Context(), principal, c.Params("id"), next)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}
