package handlers

import (
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/middleware"
	"github.com/aydinemrecan/scamradar-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LearnHandler struct {
	learn *services.LearnService
}

func NewLearnHandler(learn *services.LearnService) *LearnHandler {
	return &LearnHandler{learn: learn}
}

func (h *LearnHandler) Modules(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	modules, err := h.learn.Modules(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"modules": modules})
}

func (h *LearnHandler) UpdateProgress(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrModuleNotFound)
	}
	var req dto.UpdateProgressRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user := middleware.CurrentUser(c)
	resp, err := h.learn.UpdateProgress(user.ID, uint(id), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
