package services

import (
	"testing"
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/cache"
	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/mailer"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Scan{},
		&models.Report{},
		&models.ReportVote{},
		&models.ReportMedia{},
		&models.ReportComment{},
		&models.PointLogEntry{},
		&models.LearningModule{},
		&models.LearningProgress{},
		&models.CommunityAlert{},
		&models.Threat{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		JWTAccessExpiry:   time.Hour,
		JWTRefreshExpiry:  720 * time.Hour,
		AllowedExtensions: []string{"jpg", "png", "mp4"},
		ForwardDomain:     "scan.example.test",
		MailFrom:          "no-reply@example.test",
	}
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func newTestAuth(t *testing.T, db *gorm.DB, cfg *config.Config) *AuthService {
	t.Helper()
	return NewAuthService(db, cfg, &mailer.LogMailer{}, newTestCache(t))
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:         email,
		Password:      "x",
		FirstName:     "Test",
		LastName:      "User",
		Role:          models.RoleUser,
		IsActive:      true,
		AccountStatus: models.AccountActive,
		EmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createReport(t *testing.T, db *gorm.DB, userID uint) *models.Report {
	t.Helper()
	report := &models.Report{
		UserID:      userID,
		ThreatType:  "phishing",
		Description: "Fake bank SMS doing the rounds",
		Urgency:     models.UrgencyMedium,
		Status:      models.ReportApproved,
	}
	require.NoError(t, db.Create(report).Error)
	return report
}
