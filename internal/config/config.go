package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSSLMode          string
	DBStatementTimeout time.Duration

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Email verification
	RequireVerification bool

	// Admin bootstrap
	AdminEmail    string
	AdminPassword string

	// Mail (SMTP)
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Object store (Cloudinary-compatible)
	CloudName      string
	CloudAPIKey    string
	CloudAPISecret string

	// Local uploads
	UploadDir         string
	AllowedExtensions []string
	MaxUploadBytes    int

	// Inbound mail forwarding
	ForwardDomain string

	// Rate-limit cache
	CacheDir string

	// Chat fallback
	OpenAIAPIKey string
	OpenAIModel  string
	AITimeout    time.Duration

	// RSS proxy
	FeedHost string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "scamradar_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DBStatementTimeout: parseDuration(getEnv("DB_STATEMENT_TIMEOUT", "30s"), 30*time.Second),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "1h"), time.Hour),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "720h"), 720*time.Hour),

		RequireVerification: parseBool(getEnv("REQUIRE_EMAIL_VERIFICATION", "false")),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@scamradar.app"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: parseInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "no-reply@scamradar.app"),

		CloudName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		AllowedExtensions: parseCSV(getEnv("ALLOWED_EXTENSIONS", "jpg,jpeg,png,gif,webp,mp4,mov")),
		MaxUploadBytes:    parseInt(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10<<20),

		ForwardDomain: getEnv("FORWARD_DOMAIN", "scan.scamradar.app"),

		CacheDir: getEnv("CACHE_DIR", "ratelimit-cache"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:    parseDuration(getEnv("AI_TIMEOUT", "10s"), 10*time.Second),

		FeedHost: getEnv("FEED_HOST", "www.scamwatch.gov.au"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

// DSN builds the keyword/value connection string. statement_timeout is a
// server runtime parameter and takes milliseconds.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC" +
		" statement_timeout=" + strconv.FormatInt(c.DBStatementTimeout.Milliseconds(), 10)
}

// ObjectStoreConfigured reports whether remote media storage credentials are present.
func (c *Config) ObjectStoreConfigured() bool {
	return c.CloudName != "" && c.CloudAPIKey != "" && c.CloudAPISecret != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
