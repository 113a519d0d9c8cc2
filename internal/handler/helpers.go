package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/middleware"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/service"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}

	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func requesterFromContext(c *fiber.Ctx) dto.Requester {
	return dto.Requester{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// statusForKind maps the domain error taxonomy onto HTTP status codes.
func statusForKind(kind string) int {
	switch kind {
	case "NotFound":
		return fiber.StatusNotFound
	case "Forbidden":
		return fiber.StatusForbidden
	case "InvalidCredentials":
		return fiber.StatusUnauthorized
	case "AlreadyCompleted", "InvalidAttemptState", "AssignmentClosed", "EmailTaken", "QuestionBankFrozen":
		return fiber.StatusConflict
	case "QuestionMismatch", "InvalidOption", "InvalidWindow":
		return fiber.StatusUnprocessableEntity
	case "UnsupportedImage":
		return fiber.StatusUnsupportedMediaType
	default:
		return fiber.StatusInternalServerError
	}
}

// handleDomainError translates service errors into HTTP responses. Anything
// outside the domain taxonomy is logged and reported as a 500.
func handleDomainError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendErrorKind(c, fiber.StatusBadRequest, "ValidationError", validationErrors.Error())
	}

	if kind := service.ErrorKind(err); kind != "" {
		return utils.SendErrorKind(c, statusForKind(kind), kind, err.Error())
	}

	requestLogger(logger, c).Error().Err(err).
		Str("path", c.Path()).
		Msg("unexpected error handling request")

	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
