package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			return fiber.NewError(fiber.StatusBadRequest, "invalid field: "+field)
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

// respondError maps service errors to wire responses. Unknown errors become
// an opaque 500 and are logged with the request id.
func respondError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{Error: fiberErr.Message})
	}

	status := fiber.StatusInternalServerError
	resp := dto.ErrorResponse{Error: err.Error()}

	switch {
	case errors.Is(err, services.ErrEmailTaken):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrAccountDeactivated),
		errors.Is(err, services.ErrNotAllowed):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrEmailNotVerified):
		status = fiber.StatusForbidden
		resp.RequiresVerification = true
	case errors.Is(err, services.ErrCodeInvalid):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrRateLimited):
		status = fiber.StatusTooManyRequests
		resp.RetryAfterSeconds = 60
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrMediaNotFound),
		errors.Is(err, services.ErrAlertNotFound),
		errors.Is(err, services.ErrModuleNotFound),
		errors.Is(err, services.ErrForwardTokenUnknown):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUnsupportedMedia):
		status = fiber.StatusUnsupportedMediaType
	case errors.Is(err, services.ErrMediaLimit):
		status = fiber.StatusBadRequest
	default:
		slog.Error("request failed",
			"request_id", c.Locals("requestid"),
			"path", c.Path(),
			"error", err)
		resp.Error = "internal server error"
	}

	return c.Status(status).JSON(resp)
}
