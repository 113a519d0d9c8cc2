package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/service"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/utils"
)

// ClassroomHandler wires classroom HTTP routes.
type ClassroomHandler struct {
	service service.ClassroomService
	logger  zerolog.Logger
}

// NewClassroomHandler constructs the handler.
func NewClassroomHandler(service service.ClassroomService, logger zerolog.Logger) *ClassroomHandler {
	return &ClassroomHandler{
		service: service,
		logger:  logger.With().Str("component", "classroom_handler").Logger(),
	}
}

// Register attaches classroom endpoints to the router group.
func (h *ClassroomHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/join", h.join)
	router.Get("/:id", h.get)
}

func (h *ClassroomHandler) list(c *fiber.Ctx) error {
	classrooms, err := h.service.ListMine(c.Context(), requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classrooms retrieved", classrooms)
}

func (h *ClassroomHandler) create(c *fiber.Ctx) error {
	var payload dto.ClassroomCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	classroom, err := h.service.Create(c.Context(), payload, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "classroom created", classroom)
}

func (h *ClassroomHandler) join(c *fiber.Ctx) error {
	var payload dto.JoinClassroomRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Join(c.Context(), payload, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classroom joined", result)
}

func (h *ClassroomHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	classroom, err := h.service.Get(c.Context(), id, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "classroom retrieved", classroom)
}
