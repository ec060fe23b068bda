package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/api/http/handlers"
	"github.com/solarcare/inverter-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Customers      *handlers.CustomerHandler
	Devices        *handlers.DeviceHandler
	Tickets        *handlers.TicketHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every path answers unsupported methods with 405.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	api.Post("/auth/register", cfg.AuthMiddleware.Optional, cfg.Auth.Register)
	api.Post("/auth/login", cfg.Auth.Login)
	api.Post("/auth/logout", cfg.Auth.Logout)
	api.Post("/auth/forgot-password", cfg.Auth.ForgotPassword)
	api.Put("/auth/forgot-password", cfg.Auth.ResetPassword)

	authn := cfg.AuthMiddleware.Handle
	admin := auth.RequireAdmin()

	api.Post("/device", authn, cfg.Devices.Register)
	api.Get("/device", authn, cfg.Devices.List)
	api.Patch("/device", authn, cfg.Devices.Update)
	api.Delete("/device", authn, cfg.Devices.Delete)

	// Ticket routes precede /customer/:id so the literal segment wins.
	api.Post("/customer/ticket", authn, cfg.Tickets.Create)
	api.Get("/customer/ticket", authn, cfg.Tickets.List)
	api.Put("/customer/ticket", authn, cfg.Tickets.Replace)
	api.Patch("/customer/ticket", authn, cfg.Tickets.Patch)
	api.Delete("/customer/ticket", authn, cfg.Tickets.Delete)

	api.Get("/customers", authn, cfg.Customers.List)
	api.Get("/customers/dashboard", authn, cfg.Customers.Dashboard)
	api.Get("/customer", authn, cfg.Customers.List)
	api.Patch("/customer", authn, cfg.Customers.Update)
	api.Delete("/customer", authn, admin, cfg.Customers.Delete)
	api.Patch("/customer/:id", authn, cfg.Customers.Update)
	api.Delete("/customer/:id", authn, admin, cfg.Customers.Delete)

	api.Get("/users", authn, admin, cfg.Users.ListByRole)

	for _, path := range []string{
		"/health/live", "/health/ready", "/health/metrics",
		"/api/auth/register", "/api/auth/login", "/api/auth/logout", "/api/auth/forgot-password",
		"/api/customers", "/api/customers/dashboard", "/api/customer", "/api/customer/:id",
		"/api/device", "/api/customer/ticket", "/api/users",
	} {
		app.All(path, methodNotAllowed)
	}
}
