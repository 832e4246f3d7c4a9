package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/abhi91543/noqgo/internal/api/http/handlers"
	"github.com/abhi91543/noqgo/internal/auth"
	"github.com/abhi91543/noqgo/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Orders         *handlers.OrdersHandler
	Venues         *handlers.VenuesHandler
	Onboarding     *handlers.OnboardingHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/invitations/accept", cfg.Users.AcceptInvitation)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/me", cfg.Users.Me)
	users.Patch("/me/business-profile", cfg.Users.UpdateBusinessProfile)

	venues := app.Group("/venues")
	venues.Get("/:id", cfg.Venues.Get)
	venues.Use(cfg.AuthMiddleware.Handle)
	venues.Post("/", auth.RequireRole(domain.RoleOwner, domain.RoleSuperadmin), cfg.Venues.Create)
	venues.Get("/", cfg.Venues.ListMine)
	venues.Patch("/:id/fees", auth.RequireRole(domain.RoleOwner, domain.RoleSuperadmin), cfg.Venues.UpdateFeeConfiguration)
	venues.Get("/:id/orders", cfg.Orders.ListByVenue)

	orders := app.Group("/orders", cfg.AuthMiddleware.Handle)
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Patch("/:id/status", cfg.Orders.UpdateStatus)

	onboarding := app.Group("/onboarding", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOwner, domain.RoleSuperadmin))
	onboarding.Post("/accounts", cfg.Onboarding.CreateLinkedAccount)
	onboarding.Post("/stakeholders", cfg.Onboarding.CreateStakeholder)
	onboarding.Post("/products", cfg.Onboarding.RequestProductActivation)
	onboarding.Post("/settlement", cfg.Onboarding.SubmitSettlementDetails)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle)
	staff.Post("/", auth.RequireRole(domain.RoleOwner, domain.RoleSuperadmin), cfg.Staff.Invite)
	staff.Get("/", auth.RequireRole(domain.RoleOwner, domain.RoleSuperadmin), cfg.Staff.List)
	staff.Patch("/:id", auth.RequireRole(domain.RoleOwner, domain.RoleSuperadmin), cfg.Staff.Update)
	staff.Delete("/:id", auth.RequireRole(domain.RoleOwner, domain.RoleSuperadmin), cfg.Staff.Remove)
	staff.Patch("/:id/availability", cfg.Staff.SetAvailability)
}
