package handlers

import (
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.chat.Answer(c.Context(), req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
