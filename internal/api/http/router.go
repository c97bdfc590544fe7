package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/casekit/case-gateway/internal/access"
	"github.com/casekit/case-gateway/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Dashboard   *handlers.DashboardHandler
	Cases       *handlers.CasesHandler
	Preferences *handlers.PreferencesHandler
	Session     *access.SessionMiddleware
	Policy      *access.Evaluator
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	protected := authGroup.Group("", cfg.Session.Handle)
	protected.Post("/refresh", cfg.Auth.Refresh)
	protected.Get("/session", cfg.Auth.Session)
	protected.Put("/profile", cfg.Auth.UpdateProfile)

	dashboard := app.Group("/dashboard", cfg.Session.Handle,
		access.RequirePermission(cfg.Policy, "dashboard:read"))
	dashboard.Get("/stats", cfg.Dashboard.Stats)

	cases := app.Group("/cases", cfg.Session.Handle,
		access.RequirePermission(cfg.Policy, "cases:read"))
	cases.Get("/", cfg.Cases.List)
	cases.Get("/:id", cfg.Cases.Get)

	prefs := app.Group("/preferences", cfg.Session.Handle)
	prefs.Get("/:key", cfg.Preferences.Get)
	prefs.Put("/:key", cfg.Preferences.Put)
}
