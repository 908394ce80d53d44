package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/handler/middleware"
	"github.com/andressep95/auth-portal/internal/metrics"
	"github.com/andressep95/auth-portal/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
	recorder       metrics.Recorder
	logger         *zap.Logger
}

func NewSessionHandler(sessionService *service.SessionService, recorder metrics.Recorder, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		recorder:       recorder,
		logger:         logger.Named("session_handler"),
	}
}

// Start creates or refreshes the session of the attached token
// POST /api/auth/session-tracking
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	session, err := h.sessionService.Start(c.UserContext(), middleware.Claims(c))
	h.recorder.RecordSessionEvent("start", outcome(err))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(session)
}

// End deletes the session of the attached token
// DELETE /api/auth/session-tracking
func (h *SessionHandler) End(c *fiber.Ctx) error {
	err := h.sessionService.End(c.UserContext(), middleware.Claims(c))
	h.recorder.RecordSessionEvent("end", outcome(err))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
