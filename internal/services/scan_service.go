package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aydinemrecan/scamradar-backend/internal/classifier"
	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrForwardTokenUnknown = errors.New("unknown forwarding token")

// Stored message text is truncated to this many characters.
const maxStoredMessageLen = 10000

type ScanService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewScanService(db *gorm.DB, cfg *config.Config) *ScanService {
	return &ScanService{db: db, cfg: cfg}
}

// AnalyzeText classifies the text and persists a scan row for the user.
func (s *ScanService) AnalyzeText(userID uint, text string) (*models.Scan, classifier.Result, error) {
	result := classifier.Classify(text)

	scan, err := s.persist(s.db, userID, text, result)
	if err != nil {
		return nil, result, err
	}
	return scan, result, nil
}

// InboundEmail handles the forwarded-email webhook: the token resolves the
// user, subject and body are classified together, and the scan is stored in
// one transaction.
func (s *ScanService) InboundEmail(req *dto.InboundEmailRequest) (*models.Scan, classifier.Result, error) {
	var user models.User
	err := s.db.Where("forward_token = ? AND is_active = ?", req.Token, true).First(&user).Error
	if err != nil {
		return nil, classifier.Result{}, ErrForwardTokenUnknown
	}

	body := req.Text
	if body == "" && req.HTML != "" {
		body = classifier.StripHTML(req.HTML)
	}

	text := strings.TrimSpace(req.Subject + "\n\n" + body)
	result := classifier.Classify(text)

	var scan *models.Scan
	err = s.db.Transaction(func(tx *gorm.DB) error {
		scan, err = s.persist(tx, user.ID, text, result)
		return err
	})
	if err != nil {
		return nil, result, err
	}
	return scan, result, nil
}

// RecentScans returns the user's latest scans, newest first.
func (s *ScanService) RecentScans(userID uint, limit int) ([]dto.ScanResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var scans []models.Scan
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&scans).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.ScanResponse, 0, len(scans))
	for _, scan := range scans {
		out = append(out, dto.ScanResponse{
			ID:         scan.ID,
			Message:    scan.Message,
			RiskLevel:  scan.RiskLevel,
			RiskScore:  scan.RiskScore,
			ThreatType: scan.ThreatType,
			CreatedAt:  scan.CreatedAt,
		})
	}
	return out, nil
}

// ForwardingAddress renders the user's scan-by-email address.
func (s *ScanService) ForwardingAddress(token string) string {
	return fmt.Sprintf("forward+%s@%s", token, s.cfg.ForwardDomain)
}

func (s *ScanService) persist(tx *gorm.DB, userID uint, text string, result classifier.Result) (*models.Scan, error) {
	message := text
	if runes := []rune(message); len(runes) > maxStoredMessageLen {
		message = string(runes[:maxStoredMessageLen])
	}

	analysis, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}

	scan := models.Scan{
		UserID:     userID,
		Message:    message,
		RiskLevel:  result.RiskLevel,
		RiskScore:  result.ScorePercent(),
		ThreatType: result.PrimaryThreat(),
		Analysis:   datatypes.JSON(analysis),
	}
	if err := tx.Create(&scan).Error; err != nil {
		return nil, fmt.Errorf("failed to store scan: %w", err)
	}
	return &scan, nil
}
