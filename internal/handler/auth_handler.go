package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/config"
	"github.com/andressep95/auth-portal/internal/handler/middleware"
	"github.com/andressep95/auth-portal/internal/metrics"
	"github.com/andressep95/auth-portal/internal/service"
)

type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
	cookie      config.AuthConfig
	recorder    metrics.Recorder
	logger      *zap.Logger
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService, cookie config.AuthConfig, recorder metrics.Recorder, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		cookie:      cookie,
		recorder:    recorder,
		logger:      logger.Named("auth_handler"),
	}
}

// Signup registers a new user
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req service.SignupRequest
	if err := parseBody(c, &req); err != nil {
		h.recorder.RecordSignup("bad_request")
		return invalidBody(c)
	}

	user, err := h.userService.Signup(c.UserContext(), req)
	h.recorder.RecordSignup(outcome(err))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": user,
	})
}

// Login verifies credentials, sets the session cookie and returns the token
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := parseBody(c, &req); err != nil {
		h.recorder.RecordLogin("bad_request")
		return invalidBody(c)
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	h.recorder.RecordLogin(outcome(err))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.CookieName,
		Value:    resp.Token.AccessToken,
		Path:     "/",
		Expires:  resp.Token.ExpiresAt,
		Secure:   h.cookie.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Logout revokes the attached token, if any, and clears the cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.Claims(c)); err != nil {
		return writeError(c, h.logger, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   h.cookie.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
