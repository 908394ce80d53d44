package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/domain"
)

// ClaimsKey is the fiber.Locals key holding verified *domain.Claims.
const ClaimsKey = "claims"

// TokenVerifier turns a raw bearer token into verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*domain.Claims, error)
}

// ExtractToken returns the bearer token from the Authorization header, or
// from the named cookie when no header is sent.
func ExtractToken(c *fiber.Ctx, cookieName string) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	return c.Cookies(cookieName)
}

// Authenticate attaches verified claims to the request when a valid token is
// present. It never rejects; use RequireAuth for that.
func Authenticate(verifier TokenVerifier, cookieName string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c, cookieName)
		if token == "" {
			return c.Next()
		}

		claims, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			logger.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
			return c.Next()
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// RequireAuth answers 401 unless Authenticate attached claims.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Claims(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}

// Claims returns the verified claims of the request, or nil.
func Claims(c *fiber.Ctx) *domain.Claims {
	claims, _ := c.Locals(ClaimsKey).(*domain.Claims)
	return claims
}
