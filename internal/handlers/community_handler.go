package handlers

import (
	"io"

	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/middleware"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"github.com/aydinemrecan/scamradar-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CommunityHandler struct {
	cfg        *config.Config
	reports    *services.ReportService
	reputation *services.ReputationService
}

func NewCommunityHandler(cfg *config.Config, reports *services.ReportService, reputation *services.ReputationService) *CommunityHandler {
	return &CommunityHandler{cfg: cfg, reports: reports, reputation: reputation}
}

func (h *CommunityHandler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user := middleware.CurrentUser(c)
	resp, err := h.reports.Create(user.ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CommunityHandler) ListReports(c *fiber.Ctx) error {
	var q dto.ListReportsQuery
	if err := c.QueryParser(&q); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid query parameters"))
	}

	user := middleware.CurrentUser(c)
	resp, err := h.reports.List(user.ID, user.IsModerator(), &q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *CommunityHandler) GetReport(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrReportNotFound)
	}

	user := middleware.CurrentUser(c)
	resp, err := h.reports.Get(user.ID, user.IsModerator(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *CommunityHandler) DeleteReport(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrReportNotFound)
	}

	if err := h.reports.Delete(middleware.CurrentUser(c), uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "report deleted"})
}

func (h *CommunityHandler) Vote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrReportNotFound)
	}
	var req dto.VoteRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user := middleware.CurrentUser(c)
	resp, err := h.reports.Vote(user.ID, uint(id), req.Direction)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Verify marks a report verified, crediting the reporter. Behind
// RequireModerator; repeat calls award nothing.
func (h *CommunityHandler) Verify(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrReportNotFound)
	}

	report, err := h.reports.SetStatus(uint(id), models.ReportVerified)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":       report.ID,
		"status":   report.Status,
		"verified": report.Verified,
	})
}

// SetStatus is the general moderation endpoint behind RequireModerator.
func (h *CommunityHandler) SetStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrReportNotFound)
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=pending approved verified rejected"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	report, err := h.reports.SetStatus(uint(id), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":       report.ID,
		"status":   report.Status,
		"verified": report.Verified,
	})
}

// AddMedia accepts either a JSON body carrying an already-hosted URL or a
// multipart upload under the "file" field.
func (h *CommunityHandler) AddMedia(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrReportNotFound)
	}
	user := middleware.CurrentUser(c)

	if file, err := c.FormFile("file"); err == nil {
		if file.Size > int64(h.cfg.MaxUploadBytes) {
			return respondError(c, fiber.NewError(fiber.StatusRequestEntityTooLarge, "file too large"))
		}
		src, err := file.Open()
		if err != nil {
			return respondError(c, err)
		}
		defer src.Close()
		data, err := io.ReadAll(src)
		if err != nil {
			return respondError(c, err)
		}

		resp, err := h.reports.UploadMedia(user, uint(id), file.Filename, data)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}

	var req dto.AddMediaRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.MediaURL == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "media_url or file is required"))
	}

	resp, err := h.reports.AddMediaURL(user, uint(id), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CommunityHandler) DeleteMedia(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	mediaID, err2 := c.ParamsInt("mediaId")
	if err != nil || err2 != nil || id < 1 || mediaID < 1 {
		return respondError(c, services.ErrMediaNotFound)
	}

	if err := h.reports.DeleteMedia(middleware.CurrentUser(c), uint(id), uint(mediaID)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "media deleted"})
}

func (h *CommunityHandler) ListComments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrReportNotFound)
	}

	comments, total, err := h.reports.ListComments(uint(id), c.QueryInt("page", 1), c.QueryInt("per_page", 20))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments, "total": total})
}

func (h *CommunityHandler) CreateComment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrReportNotFound)
	}
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user := middleware.CurrentUser(c)
	resp, err := h.reports.CreateComment(user.ID, uint(id), req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CommunityHandler) DeleteComment(c *fiber.Ctx) error {
	commentID, err := c.ParamsInt("commentId")
	if err != nil || commentID < 1 {
		return respondError(c, services.ErrCommentNotFound)
	}

	if err := h.reports.DeleteComment(middleware.CurrentUser(c), uint(commentID)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "comment deleted"})
}

func (h *CommunityHandler) Trending(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reports, err := h.reports.Trending(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

func (h *CommunityHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reports.Stats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *CommunityHandler) Leaderboard(c *fiber.Ctx) error {
	period := c.Query("period", "90d")
	if period != "90d" && period != "all" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "period must be 90d or all"))
	}

	entries, err := h.reputation.Leaderboard(period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"period": period, "leaderboard": entries})
}

func (h *CommunityHandler) MyStats(c *fiber.Ctx) error {
	period := c.Query("period", "all")
	if period != "90d" && period != "all" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "period must be 90d or all"))
	}

	user := middleware.CurrentUser(c)
	stats, err := h.reputation.MyStats(user.ID, period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// CreateAlert publishes a community alert. Behind RequireAdmin.
func (h *CommunityHandler) CreateAlert(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title" validate:"required,max=255"`
		Body     string `json:"body" validate:"required,max=5000"`
		Severity string `json:"severity" validate:"omitempty,oneof=low medium high"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	alert, err := h.reports.CreateAlert(req.Title, req.Body, req.Severity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(alert)
}

// DeactivateAlert retires an alert. Behind RequireAdmin.
func (h *CommunityHandler) DeactivateAlert(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return respondError(c, services.ErrAlertNotFound)
	}
	if err := h.reports.DeactivateAlert(uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "alert deactivated"})
}

// CreateThreat records a curated threat-intel entry. Behind RequireAdmin.
func (h *CommunityHandler) CreateThreat(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name" validate:"required,max=255"`
		Category    string `json:"category" validate:"max=100"`
		Description string `json:"description" validate:"max=5000"`
		Severity    string `json:"severity" validate:"omitempty,oneof=low medium high"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	threat, err := h.reports.CreateThreat(req.Name, req.Category, req.Description, req.Severity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(threat)
}

// Alerts lists active community alerts, newest first.
func (h *CommunityHandler) Alerts(c *fiber.Ctx) error {
	alerts, err := h.reports.ActiveAlerts(20)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"alerts": alerts})
}
