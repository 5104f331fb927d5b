package handlers

import (
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/middleware"
	"github.com/aydinemrecan/scamradar-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	resp, needsVerification, err := h.auth.Register(&req)
	if err != nil {
		return respondError(c, err)
	}
	if needsVerification {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":               "verification code sent",
			"requires_verification": true,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.auth.Login(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.auth.Refresh(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.auth.VerifyEmail(c.IP(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req dto.ResendVerificationRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.auth.ResendVerification(c.IP(), &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "verification code sent"})
}

// Logout exists for client symmetry. Tokens are stateless, so the client
// discards them; nothing is revoked server-side.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(dto.UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Bio:           user.Bio,
		Role:          user.Role,
		RiskTier:      user.RiskTier,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
		LastLogin:     user.LastLogin,
	})
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user := middleware.CurrentUser(c)
	resp, err := h.auth.UpdateProfile(user.ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user := middleware.CurrentUser(c)
	if err := h.auth.ChangePassword(user.ID, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "password updated"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	var req dto.DeleteAccountRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user := middleware.CurrentUser(c)
	if err := h.auth.DeleteAccount(user.ID, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "account deleted"})
}
