package handlers

import (
	"github.com/aydinemrecan/scamradar-backend/internal/classifier"
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/middleware"
	"github.com/aydinemrecan/scamradar-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ScanHandler struct {
	scans *services.ScanService
	auth  *services.AuthService
}

func NewScanHandler(scans *services.ScanService, auth *services.AuthService) *ScanHandler {
	return &ScanHandler{scans: scans, auth: auth}
}

func (h *ScanHandler) AnalyzeText(c *fiber.Ctx) error {
	var req dto.AnalyzeTextRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user := middleware.CurrentUser(c)
	scan, result, err := h.scans.AnalyzeText(user.ID, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AnalyzeTextResponse{ScanID: int(scan.ID), Result: result})
}

// AnalyzeLinks scores URLs without persisting anything. URLs come either as
// an explicit list or are extracted from free text.
func (h *ScanHandler) AnalyzeLinks(c *fiber.Ctx) error {
	var req dto.AnalyzeLinksRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(classifier.AnalyzeLinks(req.Text, req.URLs))
}

func (h *ScanHandler) RecentScans(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	scans, err := h.scans.RecentScans(user.ID, c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"scans": scans})
}

// ForwardingAddress mints the per-user scan-by-email address on first call.
func (h *ScanHandler) ForwardingAddress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	token, err := h.auth.EnsureForwardToken(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ForwardingAddressResponse{Address: h.scans.ForwardingAddress(token)})
}

// InboundEmail is the provider webhook for forwarded mail. It is deliberately
// unauthenticated; the opaque token in the payload is the credential.
func (h *ScanHandler) InboundEmail(c *fiber.Ctx) error {
	var req dto.InboundEmailRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	scan, result, err := h.scans.InboundEmail(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.InboundEmailResponse{
		ScanID:    scan.ID,
		RiskLevel: result.RiskLevel,
		RiskScore: result.ScorePercent(),
	})
}
