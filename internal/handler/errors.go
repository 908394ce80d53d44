package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/domain"
)

const msgInternal = "Internal Server Error"

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict, domain.KindAuthToken:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized
	case domain.KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as {error, details?}. Unexpected errors are logged
// with their cause; the client only sees the generic message.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		derr = domain.NewUnexpectedError(msgInternal, err)
	}

	if derr.Kind == domain.KindUnexpected {
		logger.Error(derr.Message,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(derr.Err),
		)
	}

	body := fiber.Map{"error": derr.Message}
	if len(derr.Details) > 0 {
		body["details"] = derr.Details
	}
	return c.Status(statusFor(derr.Kind)).JSON(body)
}

// outcome labels err for metrics.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return domain.KindOf(err).String()
}

// parseBody decodes the request body into out. A body sent without a
// Content-Type is read as JSON.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Request().Header.ContentType()) == 0 {
		return c.App().Config().JSONDecoder(c.Body(), out)
	}
	return c.BodyParser(out)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}

// ErrorHandler is the fiber.Config error handler for errors returned by
// routes and middleware.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		return writeError(c, logger, err)
	}
}
