package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fidelipromo/loyalty-service/internal/api/http/handlers"
	"github.com/fidelipromo/loyalty-service/internal/auth"
	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/session"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Team           *handlers.TeamHandler
	Business       *handlers.BusinessHandler
	Customer       *handlers.CustomerHandler
	AuthMiddleware *auth.AuthMiddleware
	Sessions       session.Store
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.RegisterCustomer)
	authGroup.Post("/register/business", cfg.Auth.RegisterBusiness)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authed := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authed.Post("/logout", cfg.Auth.Logout)
	authed.Get("/session", cfg.Auth.Session)
	authed.Post("/context/select", cfg.Auth.SelectContext)

	// Merchant endpoints act on the session's selected business context.
	business := app.Group("/business", cfg.AuthMiddleware.Handle)
	anyRole := auth.RequireBusinessContext(cfg.Sessions)
	adminOnly := auth.RequireBusinessContext(cfg.Sessions, domain.BusinessRoleAdmin)

	business.Get("/", anyRole, cfg.Business.Get)
	business.Get("/customers", anyRole, cfg.Business.ListCustomers)
	business.Post("/transactions", anyRole, cfg.Business.RecordTransaction)
	business.Get("/team", anyRole, cfg.Team.List)
	business.Post("/team/invite", adminOnly, cfg.Team.Invite)
	business.Delete("/team/:userID", adminOnly, cfg.Team.Remove)

	customer := app.Group("/customer", cfg.AuthMiddleware.Handle, auth.RequireCustomerContext(cfg.Sessions))
	customer.Get("/profile", cfg.Customer.Profile)
	customer.Get("/balances", cfg.Customer.Balances)
	customer.Get("/transactions", cfg.Customer.Transactions)
	customer.Get("/referrals", cfg.Customer.Referrals)
}
