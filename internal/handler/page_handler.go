package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/auth-portal/internal/handler/middleware"
)

// PageHandler answers the guarded page routes with placeholders. Rendering
// belongs to the frontend.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Home
// GET /
func (h *PageHandler) Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "home", "user": pageUser(c)})
}

// Dashboard
// GET /dashboard
func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "dashboard", "user": pageUser(c)})
}

// Login
// GET /auth/login
func (h *PageHandler) Login(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":        "login",
		"callbackUrl": c.Query("callbackUrl", "/"),
	})
}

// Signup
// GET /auth/signup
func (h *PageHandler) Signup(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "signup"})
}

func pageUser(c *fiber.Ctx) fiber.Map {
	claims := middleware.Claims(c)
	if claims == nil {
		return nil
	}
	return fiber.Map{
		"id":       claims.UserID,
		"email":    claims.Email,
		"username": claims.Username,
		"name":     claims.Name,
	}
}
