package handler

import (
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth    *AuthHandler
	Session *SessionHandler
	User    *UserHandler
	Health  *HealthHandler
	JWKS    *JWKSHandler
	Page    *PageHandler
	Metrics fiber.Handler
}

// SetupRoutes registers every route. authenticate attaches claims to all
// requests; guard gates the page routes and skips its excluded prefixes.
func SetupRoutes(
	app *fiber.App,
	h Handlers,
	authenticate fiber.Handler,
	requireAuth fiber.Handler,
	guard fiber.Handler,
) {
	app.Use(authenticate)
	app.Use(guard)

	// Health checks (public)
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)
	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics)
	}
	if h.JWKS != nil {
		app.Get("/.well-known/jwks.json", h.JWKS.GetJWKS)
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", h.Auth.Signup)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/logout", h.Auth.Logout)
	auth.Post("/session-tracking", h.Session.Start)
	auth.Delete("/session-tracking", h.Session.End)

	users := api.Group("/users", requireAuth)
	users.Get("/:id", h.User.GetUser)

	// Pages (guarded)
	app.Get("/", h.Page.Home)
	app.Get("/dashboard", h.Page.Dashboard)
	app.Get("/auth/login", h.Page.Login)
	app.Get("/auth/signup", h.Page.Signup)
}
