package database

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return db, nil
}

// Migrate runs AutoMigrate for all models. Column introductions are additive
// only; AutoMigrate never drops or rewrites existing data.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.ReportVote{},
		&models.ReportMedia{},
		&models.ReportComment{},
		&models.PointLogEntry{},
		&models.Scan{},
		&models.LearningModule{},
		&models.LearningProgress{},
		&models.CommunityAlert{},
		&models.Threat{},
		&models.SystemLog{},
	)
}

// indexStatements covers the hot filters. Each runs in its own transaction so
// a failure (for example a column missing on an older schema) is rolled back
// and logged without leaving the connection aborted or blocking startup.
var indexStatements = []string{
	"CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (lower(email))",
	"CREATE INDEX IF NOT EXISTS idx_users_is_admin ON users (is_admin)",
	"CREATE INDEX IF NOT EXISTS idx_reports_status_created ON community_reports (status, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_reports_urgency ON community_reports (urgency)",
	"CREATE INDEX IF NOT EXISTS idx_scans_risk_level ON user_scans (risk_level)",
	"CREATE INDEX IF NOT EXISTS idx_scans_user_created ON user_scans (user_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_point_log_user_created ON user_point_log (user_id, created_at)",
	"CREATE INDEX IF NOT EXISTS idx_learning_progress_user_module ON learning_progress (user_id, module_id)",
}

// EnsureIndexes is idempotent and best-effort: index failures are logged,
// never fatal.
func EnsureIndexes(db *gorm.DB) {
	for _, stmt := range indexStatements {
		if err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Exec(stmt).Error
		}); err != nil {
			slog.Warn("index ensure failed", "statement", stmt, "error", err)
		}
	}
}

// EnsureAdmin guarantees an administrative account exists. An existing user
// with the configured email is upgraded in place; otherwise one is created
// with the configured password or, in dev, a generated secret logged once.
func EnsureAdmin(db *gorm.DB, cfg *config.Config) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		err := tx.Where("lower(email) = lower(?)", cfg.AdminEmail).First(&admin).Error
		if err == nil {
			if admin.HasAdminAccess() {
				return nil
			}
			return tx.Model(&admin).Updates(map[string]interface{}{
				"is_admin": true,
				"role":     models.RoleAdmin,
			}).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		password := cfg.AdminPassword
		if password == "" {
			raw := make([]byte, 24)
			if _, err := rand.Read(raw); err != nil {
				return fmt.Errorf("failed to generate admin password: %w", err)
			}
			password = base64.URLEncoding.EncodeToString(raw)
			slog.Warn("no ADMIN_PASSWORD configured, generated one-time admin credential",
				"email", cfg.AdminEmail, "password", password)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		admin = models.User{
			Email:         cfg.AdminEmail,
			Password:      string(hash),
			FirstName:     "Admin",
			Role:          models.RoleAdmin,
			IsAdmin:       true,
			IsActive:      true,
			EmailVerified: true,
			AccountStatus: models.AccountActive,
		}
		return tx.Create(&admin).Error
	})
}

// SeedLearningModules inserts the starter curriculum when the table is empty.
func SeedLearningModules(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.LearningModule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	modules := []models.LearningModule{
		{Title: "Spotting phishing emails", Category: "email", Difficulty: "beginner", Position: 1,
			Description: "Learn the telltale signs of phishing: urgency, mismatched senders, and suspicious links."},
		{Title: "Safe links and URLs", Category: "web", Difficulty: "beginner", Position: 2,
			Description: "How to read a URL, spot look-alike domains, and check before you click."},
		{Title: "Romance scam red flags", Category: "social", Difficulty: "intermediate", Position: 3,
			Description: "Recognise grooming patterns and money-request escalation in online relationships."},
		{Title: "Tech support scams", Category: "phone", Difficulty: "intermediate", Position: 4,
			Description: "Nobody legitimate cold-calls about a virus. What to do when they do."},
		{Title: "Protecting your accounts", Category: "identity", Difficulty: "advanced", Position: 5,
			Description: "Password managers, multi-factor authentication, and breach response."},
	}
	return db.Create(&modules).Error
}
