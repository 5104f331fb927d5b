package services

import (
	"testing"
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		points int
		want   string
	}{
		{0, TierHelper},
		{99, TierHelper},
		{100, TierAlly},
		{249, TierAlly},
		{250, TierChampion},
		{499, TierChampion},
		{500, TierGuardian},
		{10000, TierGuardian},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.points), "points=%d", tt.points)
	}
}

func TestAwardRespectsDailyCap(t *testing.T) {
	db := newTestDB(t)
	svc := NewReputationService(db)
	user := createUser(t, db, "earner@example.com")

	// 118 already earned today, so a 10-point award clamps to 2.
	require.NoError(t, db.Create(&models.PointLogEntry{
		UserID: user.ID, Points: 118, Reason: "verified report",
	}).Error)

	awarded, err := svc.Award(db, user.ID, nil, 10, "verified report")
	require.NoError(t, err)
	assert.Equal(t, 2, awarded)

	// At the cap nothing is written at all.
	awarded, err = svc.Award(db, user.ID, nil, 10, "verified report")
	require.NoError(t, err)
	assert.Zero(t, awarded)

	var rows int64
	require.NoError(t, db.Model(&models.PointLogEntry{}).Where("user_id = ?", user.ID).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)

	points, err := svc.Points(user.ID)
	require.NoError(t, err)
	assert.Equal(t, dailyPointCap, points)
}

func TestAwardIgnoresYesterday(t *testing.T) {
	db := newTestDB(t)
	svc := NewReputationService(db)
	user := createUser(t, db, "earner@example.com")

	yesterday := time.Now().UTC().Add(-36 * time.Hour)
	require.NoError(t, db.Create(&models.PointLogEntry{
		UserID: user.ID, Points: dailyPointCap, Reason: "verified report", CreatedAt: yesterday,
	}).Error)

	awarded, err := svc.Award(db, user.ID, nil, 10, "verified report")
	require.NoError(t, err)
	assert.Equal(t, 10, awarded)
}

func TestLeaderboardRanksAndFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewReputationService(db)

	first := createUser(t, db, "first@example.com")
	second := createUser(t, db, "second@example.com")
	old := createUser(t, db, "old@example.com")
	deleted := createUser(t, db, "deleted@example.com")
	require.NoError(t, db.Model(deleted).Update("account_status", models.AccountDeleted).Error)

	require.NoError(t, db.Create(&models.PointLogEntry{UserID: first.ID, Points: 50, Reason: "verified report"}).Error)
	require.NoError(t, db.Create(&models.PointLogEntry{UserID: second.ID, Points: 30, Reason: "verified report"}).Error)
	require.NoError(t, db.Create(&models.PointLogEntry{UserID: deleted.ID, Points: 99, Reason: "verified report"}).Error)
	require.NoError(t, db.Create(&models.PointLogEntry{
		UserID: old.ID, Points: 500, Reason: "verified report",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -120),
	}).Error)

	recent, err := svc.Leaderboard("90d")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, first.ID, recent[0].UserID)
	assert.Equal(t, 1, recent[0].Rank)
	assert.Equal(t, second.ID, recent[1].UserID)
	assert.Equal(t, 2, recent[1].Rank)

	all, err := svc.Leaderboard("all")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, old.ID, all[0].UserID)
	assert.Equal(t, TierGuardian, all[0].Tier)
}

func TestMyStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewReputationService(db)
	user := createUser(t, db, "stats@example.com")
	rival := createUser(t, db, "rival@example.com")

	report := createReport(t, db, user.ID)
	require.NoError(t, db.Model(report).Update("status", models.ReportVerified).Error)
	createReport(t, db, user.ID)

	require.NoError(t, db.Create(&models.PointLogEntry{UserID: user.ID, Points: 15, Reason: "verified report"}).Error)
	require.NoError(t, db.Create(&models.PointLogEntry{UserID: rival.ID, Points: 40, Reason: "verified report"}).Error)

	stats, err := svc.MyStats(user.ID, "all")
	require.NoError(t, err)
	assert.Equal(t, 15, stats.Points)
	assert.Equal(t, TierHelper, stats.Tier)
	assert.Equal(t, 2, stats.Rank)
	assert.Equal(t, int64(1), stats.ReportsByStatus[models.ReportVerified])
	assert.Equal(t, int64(1), stats.ReportsByStatus[models.ReportApproved])
}

func TestMyStatsPeriodWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewReputationService(db)
	user := createUser(t, db, "veteran@example.com")

	require.NoError(t, db.Create(&models.PointLogEntry{
		UserID: user.ID, Points: 300, Reason: "verified report",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -120),
	}).Error)
	require.NoError(t, db.Create(&models.PointLogEntry{
		UserID: user.ID, Points: 20, Reason: "verified report",
	}).Error)

	recent, err := svc.MyStats(user.ID, "90d")
	require.NoError(t, err)
	assert.Equal(t, 20, recent.Points)
	// Tier is lifetime even when the period window filters points.
	assert.Equal(t, TierChampion, recent.Tier)

	all, err := svc.MyStats(user.ID, "all")
	require.NoError(t, err)
	assert.Equal(t, 320, all.Points)
}
