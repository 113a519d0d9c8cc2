package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/service"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/utils"
)

// ResultHandler wires teacher-facing analytics, export and activity routes.
type ResultHandler struct {
	analytics service.AnalyticsService
	exports   service.ExportService
	activity  service.ActivityService
	logger    zerolog.Logger
}

// NewResultHandler constructs the handler.
func NewResultHandler(analytics service.AnalyticsService, exports service.ExportService, activity service.ActivityService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		analytics: analytics,
		exports:   exports,
		activity:  activity,
		logger:    logger.With().Str("component", "result_handler").Logger(),
	}
}

// Register attaches result endpoints to the router group.
func (h *ResultHandler) Register(router fiber.Router) {
	router.Get("/assignments/:id", h.assignmentResults)
	router.Get("/assignments/:id/statistics", h.assignmentStatistics)
	router.Get("/assignments/:id/export", h.exportResults)
	router.Get("/assignments/:id/questions/export", h.exportQuestionStatistics)
	router.Get("/classrooms/:id/export", h.exportClassroomSummary)
	router.Get("/activity", h.recentActivity)
}

func (h *ResultHandler) assignmentResults(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	results, err := h.analytics.AssignmentResults(c.Context(), assignmentID, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment results retrieved", results)
}

func (h *ResultHandler) assignmentStatistics(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.analytics.AssignmentStatistics(c.Context(), assignmentID, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment statistics retrieved", stats)
}

func (h *ResultHandler) exportResults(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	content, err := h.exports.AssignmentResultsCSV(c.Context(), assignmentID, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return sendCSV(c, fmt.Sprintf("assignment-%d-results.csv", assignmentID), content)
}

func (h *ResultHandler) exportQuestionStatistics(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	content, err := h.exports.QuestionStatisticsCSV(c.Context(), assignmentID, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return sendCSV(c, fmt.Sprintf("assignment-%d-questions.csv", assignmentID), content)
}

func (h *ResultHandler) exportClassroomSummary(c *fiber.Ctx) error {
	classroomID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	content, err := h.exports.ClassroomSummaryCSV(c.Context(), classroomID, requesterFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return sendCSV(c, fmt.Sprintf("classroom-%d-summary.csv", classroomID), content)
}

func (h *ResultHandler) recentActivity(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit parameter")
	}

	entries, err := h.activity.ListRecent(c.Context(), limit)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}

func sendCSV(c *fiber.Ctx, filename string, content []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	return c.Send(content)
}
