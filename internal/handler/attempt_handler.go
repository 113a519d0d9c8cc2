package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/service"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/utils"
)

// AttemptHandler wires attempt lifecycle HTTP routes.
type AttemptHandler struct {
	service service.AttemptService
	logger  zerolog.Logger
}

// NewAttemptHandler constructs the handler.
func NewAttemptHandler(service service.AttemptService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service: service,
		logger:  logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches attempt endpoints to the router group.
func (h *AttemptHandler) Register(router fiber.Router) {
	router.Post("/:id/answers", h.recordAnswer)
	router.Post("/:id/submit", h.submit)
	router.Get("/:id/result", h.result)
}

// RegisterAssignmentRoutes attaches the assignment-scoped start endpoint.
func (h *AttemptHandler) RegisterAssignmentRoutes(router fiber.Router) {
	router.Post("/:id/attempts", h.start)
}

func (h *AttemptHandler) start(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Start(c.Context(), assignmentID, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt started", response)
}

func (h *AttemptHandler) recordAnswer(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RecordAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.RecordAnswer(c.Context(), attemptID, requesterFromContext(c), payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "answer recorded", response)
}

func (h *AttemptHandler) submit(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Submit(c.Context(), attemptID, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "attempt submitted", response)
}

func (h *AttemptHandler) result(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.GetResult(c.Context(), attemptID, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "attempt result retrieved", response)
}
