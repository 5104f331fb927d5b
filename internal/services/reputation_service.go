package services

import (
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"gorm.io/gorm"
)

// Daily reputation cap. Points past the cap are silently clamped.
const dailyPointCap = 120

// Tier thresholds on lifetime points.
const (
	tierAllyAt     = 100
	tierChampionAt = 250
	tierGuardianAt = 500
)

const (
	TierHelper   = "Helper"
	TierAlly     = "Ally"
	TierChampion = "Champion"
	TierGuardian = "Guardian"
)

type ReputationService struct {
	db *gorm.DB
}

func NewReputationService(db *gorm.DB) *ReputationService {
	return &ReputationService{db: db}
}

// TierFor maps lifetime points to a display tier.
func TierFor(points int) string {
	switch {
	case points >= tierGuardianAt:
		return TierGuardian
	case points >= tierChampionAt:
		return TierChampion
	case points >= tierAllyAt:
		return TierAlly
	default:
		return TierHelper
	}
}

// Award appends a ledger row for up to `points`, clamped so the user's UTC-day
// total never exceeds the cap. A fully clamped award writes nothing. It runs
// on the handle it is given so callers can keep it inside their transaction.
func (s *ReputationService) Award(tx *gorm.DB, userID uint, reportID *uint, points int, reason string) (int, error) {
	if points <= 0 {
		return 0, nil
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)

	var earnedToday int64
	err := tx.Model(&models.PointLogEntry{}).
		Where("user_id = ? AND created_at >= ?", userID, startOfDay).
		Select("COALESCE(SUM(points), 0)").
		Scan(&earnedToday).Error
	if err != nil {
		return 0, err
	}

	remaining := dailyPointCap - int(earnedToday)
	if remaining <= 0 {
		return 0, nil
	}
	if points > remaining {
		points = remaining
	}

	entry := models.PointLogEntry{
		UserID:   userID,
		ReportID: reportID,
		Points:   points,
		Reason:   reason,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}
	return points, nil
}

// Points sums the user's full ledger.
func (s *ReputationService) Points(userID uint) (int, error) {
	return s.pointsSince(userID, time.Time{})
}

func (s *ReputationService) pointsSince(userID uint, since time.Time) (int, error) {
	q := s.db.Model(&models.PointLogEntry{}).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	var total int64
	err := q.Select("COALESCE(SUM(points), 0)").Scan(&total).Error
	return int(total), err
}

// Leaderboard returns the top 20 earners. period is "90d" or "all".
func (s *ReputationService) Leaderboard(period string) ([]dto.LeaderboardEntry, error) {
	q := s.db.Model(&models.PointLogEntry{}).
		Select("user_point_log.user_id, COALESCE(SUM(user_point_log.points), 0) AS points").
		Joins("JOIN users ON users.id = user_point_log.user_id AND users.account_status = ?", models.AccountActive).
		Group("user_point_log.user_id").
		Order("points DESC, user_point_log.user_id ASC").
		Limit(20)
	if period != "all" {
		q = q.Where("user_point_log.created_at >= ?", time.Now().UTC().AddDate(0, 0, -90))
	}

	var rows []struct {
		UserID uint
		Points int
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		var user models.User
		if err := s.db.First(&user, row.UserID).Error; err != nil {
			continue
		}
		entries = append(entries, dto.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      row.UserID,
			DisplayName: user.DisplayName(),
			Points:      row.Points,
			Tier:        TierFor(row.Points),
		})
	}
	return entries, nil
}

// MyStats returns the user's report breakdown, points, tier and rank. Points
// and rank respect the period ("90d" or "all"); the tier is always lifetime.
func (s *ReputationService) MyStats(userID uint, period string) (*dto.MyStatsResponse, error) {
	var since time.Time
	if period == "90d" {
		since = time.Now().UTC().AddDate(0, 0, -90)
	}

	points, err := s.pointsSince(userID, since)
	if err != nil {
		return nil, err
	}
	lifetime, err := s.Points(userID)
	if err != nil {
		return nil, err
	}

	byStatus := map[string]int64{}
	var statusRows []struct {
		Status string
		N      int64
	}
	err = s.db.Model(&models.Report{}).
		Select("status, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		byStatus[row.Status] = row.N
	}

	// Rank = 1 + number of users with strictly more points in the period.
	sub := s.db.Model(&models.PointLogEntry{}).
		Select("user_id, SUM(points) AS total").
		Group("user_id")
	if !since.IsZero() {
		sub = sub.Where("created_at >= ?", since)
	}
	var ahead int64
	err = s.db.Table("(?) AS totals", sub).
		Where("total > ?", points).
		Count(&ahead).Error
	if err != nil {
		return nil, err
	}

	return &dto.MyStatsResponse{
		ReportsByStatus: byStatus,
		Points:          points,
		Tier:            TierFor(lifetime),
		Rank:            int(ahead) + 1,
	}, nil
}
