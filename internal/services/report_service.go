package services

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/cache"
	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"github.com/aydinemrecan/scamradar-backend/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrReportNotFound   = errors.New("report not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrMediaNotFound    = errors.New("media not found")
	ErrAlertNotFound    = errors.New("alert not found")
	ErrNotAllowed       = errors.New("not allowed")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaLimit       = errors.New("media limit reached for this report")
)

// Points awarded when a moderator verifies a report.
const (
	pointsVerifiedReport = 10
	pointsWithEvidence   = 5
)

const (
	maxMediaPerReport  = 5
	recentCommentCount = 3
	defaultPageSize    = 20
	maxPageSize        = 50
)

type ReportService struct {
	db         *gorm.DB
	cfg        *config.Config
	limits     *cache.Cache
	reputation *ReputationService
	objects    storage.ObjectStore
	local      *storage.LocalStore
}

func NewReportService(db *gorm.DB, cfg *config.Config, limits *cache.Cache, reputation *ReputationService, objects storage.ObjectStore, local *storage.LocalStore) *ReportService {
	return &ReportService{db: db, cfg: cfg, limits: limits, reputation: reputation, objects: objects, local: local}
}

// Create submits a new pending report. Limits: 5/minute and 20 per 5 minutes
// per user.
func (s *ReportService) Create(userID uint, req *dto.CreateReportRequest) (*dto.ReportResponse, error) {
	if n, err := s.limits.Incr(fmt.Sprintf("report:min:%d", userID), time.Minute); err == nil && n > 5 {
		return nil, ErrRateLimited
	}
	if n, err := s.limits.Incr(fmt.Sprintf("report:5min:%d", userID), 5*time.Minute); err == nil && n > 20 {
		return nil, ErrRateLimited
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyMedium
	}

	report := models.Report{
		UserID:      userID,
		ThreatType:  strings.TrimSpace(req.ThreatType),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Urgency:     urgency,
		Status:      models.ReportPending,
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	resp, err := s.buildResponse(&report, userID)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// List pages through reports. By default only approved and verified reports
// are visible; a status filter narrows to that status (non-moderators still
// only see their own pending and rejected reports), include_own adds the
// caller's own regardless of status, and include_all (moderators) lifts the
// status filter entirely.
func (s *ReportService) List(callerID uint, isModerator bool, q *dto.ListReportsQuery) (*dto.ReportListResponse, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = defaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	query := s.db.Model(&models.Report{})

	switch {
	case q.Status != "":
		query = query.Where("status = ?", q.Status)
		if !isModerator && q.Status != models.ReportApproved && q.Status != models.ReportVerified {
			// Pending and rejected reports stay visible to their owner only.
			query = query.Where("user_id = ?", callerID)
		}
	case q.IncludeAll && isModerator:
		// No status restriction.
	case q.IncludeOwn:
		query = query.Where("status IN ? OR user_id = ?",
			[]string{models.ReportApproved, models.ReportVerified}, callerID)
	default:
		query = query.Where("status IN ?", []string{models.ReportApproved, models.ReportVerified})
	}

	if q.ThreatType != "" {
		query = query.Where("threat_type = ?", q.ThreatType)
	}
	if q.Urgency != "" {
		query = query.Where("urgency = ?", q.Urgency)
	}
	if q.VerifiedOnly {
		query = query.Where("verified = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	switch q.Sort {
	case "top":
		query = query.Order("(upvotes - downvotes) DESC, created_at DESC")
	case "verified":
		query = query.Order("verified DESC, created_at DESC")
	default:
		query = query.Order("created_at DESC, id DESC")
	}

	var reports []models.Report
	err := query.Offset((page - 1) * perPage).Limit(perPage).Find(&reports).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		resp, err := s.buildResponse(&reports[i], callerID)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}

	return &dto.ReportListResponse{Reports: out, Page: page, PerPage: perPage, Total: total}, nil
}

// Get returns one report with its media, recent comments and the caller's
// vote. Pending and rejected reports are only visible to their owner and to
// moderators.
func (s *ReportService) Get(callerID uint, isModerator bool, reportID uint) (*dto.ReportResponse, error) {
	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		return nil, ErrReportNotFound
	}
	if report.Status != models.ReportApproved && report.Status != models.ReportVerified &&
		report.UserID != callerID && !isModerator {
		return nil, ErrReportNotFound
	}
	return s.buildResponse(&report, callerID)
}

// Vote applies an up or down vote. Voting the same direction again undoes the
// vote; voting the other direction flips it. Counters are adjusted under a
// row lock so they always match the vote rows.
func (s *ReportService) Vote(userID, reportID uint, direction string) (*dto.VoteResponse, error) {
	var resp dto.VoteResponse

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var report models.Report
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&report, reportID).Error; err != nil {
			return ErrReportNotFound
		}

		var existing models.ReportVote
		err := tx.Where("report_id = ? AND user_id = ?", reportID, userID).First(&existing).Error
		switch {
		case err == nil && existing.Direction == direction:
			// Undo.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			adjust(&report, direction, -1)
			resp.MyVote = ""
		case err == nil:
			// Flip. Update writes the new value back into existing, so the
			// old direction has to be captured first.
			old := existing.Direction
			if err := tx.Model(&existing).Update("direction", direction).Error; err != nil {
				return err
			}
			adjust(&report, old, -1)
			adjust(&report, direction, +1)
			resp.MyVote = direction
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.ReportVote{ReportID: reportID, UserID: userID, Direction: direction}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			adjust(&report, direction, +1)
			resp.MyVote = direction
		default:
			return err
		}

		if err := tx.Model(&models.Report{}).Where("id = ?", reportID).
			Updates(map[string]interface{}{"upvotes": report.Upvotes, "downvotes": report.Downvotes}).Error; err != nil {
			return err
		}
		resp.Upvotes = report.Upvotes
		resp.Downvotes = report.Downvotes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func adjust(report *models.Report, direction string, delta int) {
	if direction == models.VoteUp {
		report.Upvotes += delta
		if report.Upvotes < 0 {
			report.Upvotes = 0
		}
	} else {
		report.Downvotes += delta
		if report.Downvotes < 0 {
			report.Downvotes = 0
		}
	}
}

// SetStatus is the moderation action. Verifying awards reputation to the
// reporter inside the same transaction; re-verifying an already verified
// report awards nothing.
func (s *ReportService) SetStatus(reportID uint, status string) (*models.Report, error) {
	var report models.Report

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, reportID).Error; err != nil {
			return ErrReportNotFound
		}

		verifying := status == models.ReportVerified && !report.Verified

		updates := map[string]interface{}{"status": status}
		if status == models.ReportVerified {
			updates["verified"] = true
		}
		if err := tx.Model(&report).Updates(updates).Error; err != nil {
			return err
		}
		report.Status = status

		if !verifying {
			return nil
		}
		report.Verified = true

		if _, err := s.reputation.Award(tx, report.UserID, &report.ID, pointsVerifiedReport, "verified report"); err != nil {
			return err
		}

		var mediaCount int64
		if err := tx.Model(&models.ReportMedia{}).Where("report_id = ?", report.ID).Count(&mediaCount).Error; err != nil {
			return err
		}
		if mediaCount > 0 {
			if _, err := s.reputation.Award(tx, report.UserID, &report.ID, pointsWithEvidence, "verified report with evidence"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Delete removes a report and everything hanging off it. Only the owner or an
// admin may delete. Stored media objects are cleaned up best-effort after the
// database transaction commits.
func (s *ReportService) Delete(caller *models.User, reportID uint) error {
	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		return ErrReportNotFound
	}
	if report.UserID != caller.ID && !caller.HasAdminAccess() {
		return ErrNotAllowed
	}

	var media []models.ReportMedia
	if err := s.db.Where("report_id = ?", reportID).Find(&media).Error; err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.PointLogEntry{}, &models.ReportComment{}, &models.ReportMedia{}, &models.ReportVote{},
		} {
			if err := tx.Where("report_id = ?", reportID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&report).Error
	})
	if err != nil {
		return err
	}

	for _, m := range media {
		s.removeStoredMedia(m.URL)
	}
	return nil
}

// AddMediaURL attaches an already-hosted media URL to a report.
func (s *ReportService) AddMediaURL(caller *models.User, reportID uint, req *dto.AddMediaRequest) (*dto.MediaResponse, error) {
	report, err := s.mediaTarget(caller, reportID)
	if err != nil {
		return nil, err
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "image"
	}
	return s.insertMedia(report.ID, req.MediaURL, mediaType)
}

// UploadMedia stores raw bytes (multipart upload) and attaches the result.
// The object store is preferred; local disk is the fallback.
func (s *ReportService) UploadMedia(caller *models.User, reportID uint, filename string, data []byte) (*dto.MediaResponse, error) {
	report, err := s.mediaTarget(caller, reportID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	allowed := false
	for _, e := range s.cfg.AllowedExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrUnsupportedMedia
	}

	store := storage.ObjectStore(s.local)
	if s.objects != nil {
		store = s.objects
	}
	put, err := store.Put(data, storage.UploadFolder, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store media: %w", err)
	}

	resp, err := s.insertMedia(report.ID, put.URL, put.ResourceType)
	if err != nil {
		s.removeStoredMedia(put.URL)
		return nil, err
	}
	return resp, nil
}

// DeleteMedia removes one attachment. Admin only; the URL shape decides
// whether the object store or local disk holds the bytes.
func (s *ReportService) DeleteMedia(caller *models.User, reportID, mediaID uint) error {
	if !caller.HasAdminAccess() {
		return ErrNotAllowed
	}
	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		return ErrReportNotFound
	}

	var media models.ReportMedia
	if err := s.db.Where("id = ? AND report_id = ?", mediaID, reportID).First(&media).Error; err != nil {
		return ErrMediaNotFound
	}
	if err := s.db.Delete(&media).Error; err != nil {
		return err
	}
	s.removeStoredMedia(media.URL)
	return nil
}

// ListComments pages through a report's comments, newest first.
func (s *ReportService) ListComments(reportID uint, page, perPage int) ([]dto.CommentResponse, int64, error) {
	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		return nil, 0, ErrReportNotFound
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPageSize {
		perPage = defaultPageSize
	}

	var total int64
	if err := s.db.Model(&models.ReportComment{}).Where("report_id = ?", reportID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.ReportComment
	err := s.db.Preload("User").
		Where("report_id = ?", reportID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, s.commentResponse(&comments[i]))
	}
	return out, total, nil
}

func (s *ReportService) CreateComment(userID, reportID uint, body string) (*dto.CommentResponse, error) {
	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		return nil, ErrReportNotFound
	}

	comment := models.ReportComment{
		ReportID: reportID,
		UserID:   userID,
		Body:     strings.TrimSpace(body),
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	resp := s.commentResponse(&comment)
	return &resp, nil
}

// DeleteComment allows the author or an admin.
func (s *ReportService) DeleteComment(caller *models.User, commentID uint) error {
	var comment models.ReportComment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		return ErrCommentNotFound
	}
	if comment.UserID != caller.ID && !caller.HasAdminAccess() {
		return ErrNotAllowed
	}
	return s.db.Delete(&comment).Error
}

// Trending returns the highest net-voted approved or verified reports from
// the last 7 days.
func (s *ReportService) Trending(callerID uint) ([]dto.ReportResponse, error) {
	var reports []models.Report
	err := s.db.Where("status IN ? AND created_at >= ?",
		[]string{models.ReportApproved, models.ReportVerified},
		time.Now().UTC().AddDate(0, 0, -7)).
		Order("(upvotes - downvotes) DESC, created_at DESC").
		Limit(10).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		resp, err := s.buildResponse(&reports[i], callerID)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// CreateAlert publishes a community alert. Admin only, enforced at the route.
func (s *ReportService) CreateAlert(title, body, severity string) (*models.CommunityAlert, error) {
	if severity == "" {
		severity = models.UrgencyMedium
	}
	alert := models.CommunityAlert{
		Title:    strings.TrimSpace(title),
		Body:     strings.TrimSpace(body),
		Severity: severity,
		Active:   true,
	}
	if err := s.db.Create(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// DeactivateAlert retires an alert from the feed without deleting it.
func (s *ReportService) DeactivateAlert(alertID uint) error {
	result := s.db.Model(&models.CommunityAlert{}).Where("id = ?", alertID).Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// CreateThreat records a curated threat-intel entry.
func (s *ReportService) CreateThreat(name, category, description, severity string) (*models.Threat, error) {
	if severity == "" {
		severity = models.UrgencyMedium
	}
	threat := models.Threat{
		Name:        strings.TrimSpace(name),
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		Severity:    severity,
	}
	if err := s.db.Create(&threat).Error; err != nil {
		return nil, err
	}
	return &threat, nil
}

// ActiveAlerts lists the newest active community alerts.
func (s *ReportService) ActiveAlerts(limit int) ([]models.CommunityAlert, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var alerts []models.CommunityAlert
	err := s.db.Where("active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

// Stats aggregates community-wide counters for the dashboard.
func (s *ReportService) Stats() (*dto.CommunityStatsResponse, error) {
	stats := &dto.CommunityStatsResponse{ReportsByStatus: map[string]int64{}}

	if err := s.db.Model(&models.Report{}).Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		N      int64
	}
	if err := s.db.Model(&models.Report{}).Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ReportsByStatus[row.Status] = row.N
	}

	if err := s.db.Model(&models.Report{}).Where("verified = ?", true).Count(&stats.VerifiedReports).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Scan{}).Count(&stats.TotalScans).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Scan{}).Where("risk_level = ?", "SCAM").Count(&stats.ScamsDetected).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Threat{}).Count(&stats.KnownThreats).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.CommunityAlert{}).Where("active = ?", true).Count(&stats.ActiveAlerts).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *ReportService) mediaTarget(caller *models.User, reportID uint) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		return nil, ErrReportNotFound
	}
	if report.UserID != caller.ID && !caller.HasAdminAccess() {
		return nil, ErrNotAllowed
	}
	return &report, nil
}

func (s *ReportService) insertMedia(reportID uint, url, mediaType string) (*dto.MediaResponse, error) {
	var count int64
	if err := s.db.Model(&models.ReportMedia{}).Where("report_id = ?", reportID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count >= maxMediaPerReport {
		return nil, ErrMediaLimit
	}

	media := models.ReportMedia{ReportID: reportID, URL: url, MediaType: mediaType}
	if err := s.db.Create(&media).Error; err != nil {
		return nil, err
	}
	return &dto.MediaResponse{
		ID:        media.ID,
		URL:       media.URL,
		MediaType: media.MediaType,
		CreatedAt: media.CreatedAt,
	}, nil
}

func (s *ReportService) removeStoredMedia(url string) {
	var err error
	switch {
	case storage.IsLocalURL(url):
		if s.local != nil {
			err = s.local.Delete(storage.LocalFilename(url))
		}
	case s.objects != nil:
		if publicID := storage.ParsePublicID(url); publicID != "" {
			err = s.objects.Delete(publicID)
		}
	}
	if err != nil {
		slog.Warn("failed to remove stored media", "url", url, "error", err)
	}
}

func (s *ReportService) buildResponse(report *models.Report, callerID uint) (*dto.ReportResponse, error) {
	var reporter models.User
	if err := s.db.First(&reporter, report.UserID).Error; err != nil {
		return nil, err
	}
	points, err := s.reputation.Points(reporter.ID)
	if err != nil {
		return nil, err
	}

	var media []models.ReportMedia
	if err := s.db.Where("report_id = ?", report.ID).Order("created_at ASC, id ASC").Find(&media).Error; err != nil {
		return nil, err
	}
	mediaOut := make([]dto.MediaResponse, 0, len(media))
	for _, m := range media {
		mediaOut = append(mediaOut, dto.MediaResponse{
			ID: m.ID, URL: m.URL, MediaType: m.MediaType, CreatedAt: m.CreatedAt,
		})
	}

	var comments []models.ReportComment
	err = s.db.Preload("User").
		Where("report_id = ?", report.ID).
		Order("created_at DESC, id DESC").
		Limit(recentCommentCount).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	commentsOut := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		commentsOut = append(commentsOut, s.commentResponse(&comments[i]))
	}

	myVote := ""
	if callerID != 0 {
		var vote models.ReportVote
		if err := s.db.Where("report_id = ? AND user_id = ?", report.ID, callerID).First(&vote).Error; err == nil {
			myVote = vote.Direction
		}
	}

	return &dto.ReportResponse{
		ID:          report.ID,
		ThreatType:  report.ThreatType,
		Description: report.Description,
		Location:    report.Location,
		Urgency:     report.Urgency,
		Status:      report.Status,
		Verified:    report.Verified,
		Upvotes:     report.Upvotes,
		Downvotes:   report.Downvotes,
		CreatedAt:   report.CreatedAt,
		Reporter: dto.ReporterSummary{
			ID:          reporter.ID,
			DisplayName: reporter.DisplayName(),
			Tier:        TierFor(points),
		},
		Media:    mediaOut,
		Comments: commentsOut,
		MyVote:   myVote,
	}, nil
}

func (s *ReportService) commentResponse(c *models.ReportComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:       c.ID,
		ReportID: c.ReportID,
		Author: dto.ReporterSummary{
			ID:          c.User.ID,
			DisplayName: c.User.DisplayName(),
		},
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}
