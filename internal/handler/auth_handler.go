package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/dto"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/service"
	"github.com/AnasSAV/Quest-Learn-Backend/internal/utils"
)

// AuthHandler wires authentication HTTP routes.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public auth endpoints to the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/refresh", h.refresh)
}

// RegisterProtected attaches endpoints that require authentication.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/me", h.profile)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.service.Register(c.Context(), payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account registered", profile)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Login(c.Context(), payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	var payload dto.RefreshRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	pair, err := h.service.Refresh(c.Context(), payload)
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "token refreshed", pair)
}

func (h *AuthHandler) profile(c *fiber.Ctx) error {
	profile, err := h.service.Profile(c.Context(), userIDFromContext(c))
	if err != nil {
		return handleDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}
