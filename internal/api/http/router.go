package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/logistics-kit/delivery-service/internal/api/http/handlers"
	"github.com/logistics-kit/delivery-service/internal/auth"
	"github.com/logistics-kit/delivery-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Deliveries     *handlers.DeliveriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/drivers", auth.RequireRole(domain.RoleAdmin), cfg.Users.ListDrivers)

	deliveries := app.Group("/deliveries", cfg.AuthMiddleware.Handle)
	deliveries.Post("", auth.RequireRole(domain.RoleBusinessUser), cfg.Deliveries.CreateDelivery)
	deliveries.Get("", cfg.Deliveries.ListDeliveries)
	deliveries.Get("/:id", cfg.Deliveries.GetDelivery)
	deliveries.Get("/:id/history", cfg.Deliveries.GetHistory)
	deliveries.Put("/:id/assign-driver/:driverId", auth.RequireRole(domain.RoleAdmin), cfg.Deliveries.AssignDriver)
	deliveries.Put("/:id/status", auth.RequireRole(domain.RoleDriver, domain.RoleAdmin), cfg.Deliveries.UpdateStatus)
}
