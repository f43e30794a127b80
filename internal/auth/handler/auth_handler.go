package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chris743/db-api/internal/auth/dto"
	"github.com/chris743/db-api/internal/auth/service"
	autherror "github.com/chris743/db-api/internal/errors"
)

type AuthHandler struct {
	authService    *service.AuthService
	userService    *service.UserService
	sessionService *service.SessionService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, sessionService *service.SessionService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userService:    userService,
		sessionService: sessionService,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if input.Username == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}

	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	resp, err := h.authService.Login(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Logout always answers 200: an unknown or already-inactive token discloses
// nothing and a second logout is a no-op.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input dto.LogoutInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.authService.Logout(c.UserContext(), input); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	resp, err := h.authService.Refresh(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Verify echoes back the identity claims attached by the authentication
// middleware.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	identity := IdentityFromCtx(c)
	if identity == nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	return c.Status(fiber.StatusOK).JSON(dto.VerifyResponse{
		UserID:   identity.UserID,
		Username: identity.Username,
		Role:     identity.Role,
	})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity := IdentityFromCtx(c)
	if identity == nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var input dto.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if input.CurrentPassword == "" || input.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "current and new password are required"})
	}

	if err := h.userService.ChangePassword(c.UserContext(), identity.UserID, input); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// BindSessionKey attaches an externally minted session key to a local user.
// Admin only; routed behind RequireRole.
func (h *AuthHandler) BindSessionKey(c *fiber.Ctx) error {
	var input dto.BindSessionKeyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if input.SessionKey == "" || input.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_key and user_id are required"})
	}

	if _, err := h.sessionService.BindSessionKey(c.UserContext(), input.SessionKey, input.UserID); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// writeError maps service sentinels onto HTTP statuses. Anything unexpected
// (store connectivity and the like) becomes a generic 500 so internals never
// leak to the caller.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrInvalidToken),
		errors.Is(err, autherror.ErrRefreshTokenNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrAccountLocked):
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrUsernameTaken),
		errors.Is(err, autherror.ErrEmailTaken),
		errors.Is(err, autherror.ErrInvalidRole):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
