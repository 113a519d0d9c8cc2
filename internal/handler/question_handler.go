package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/service"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/utils"
)

// QuestionHandler wires question bank HTTP routes. All routes are
// teacher-only; role enforcement happens in the service layer as well.
type QuestionHandler struct {
	service     service.QuestionService
	maxUploadMB int
	logger      zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(service service.QuestionService, maxUploadMB int, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service:     service,
		maxUploadMB: maxUploadMB,
		logger:      logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register attaches question endpoints to the router group.
func (h *QuestionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/images", h.uploadImage)
}

// RegisterAssignmentRoutes attaches the assignment-scoped listing endpoint.
func (h *QuestionHandler) RegisterAssignmentRoutes(router fiber.Router) {
	router.Get("/:id/questions", h.listByAssignment)
}

func (h *QuestionHandler) create(c *fiber.Ctx) error {
	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.service.Create(c.Context(), payload, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question created", question)
}

func (h *QuestionHandler) listByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.service.ListByAssignment(c.Context(), assignmentID, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *QuestionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.service.Update(c.Context(), id, payload, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "question updated", question)
}

func (h *QuestionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, requesterFromContext(c)); err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "question deleted", fiber.Map{"id": id})
}

func (h *QuestionHandler) uploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	if h.maxUploadMB > 0 && file.Size > int64(h.maxUploadMB)*1024*1024 {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds upload limit")
	}

	opened, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}
	defer opened.Close()

	content, err := io.ReadAll(opened)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}

	result, err := h.service.UploadImage(c.Context(), file.Filename, content, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "image uploaded", result)
}
