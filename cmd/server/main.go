package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/aydinemrecan/scamradar-backend/internal/cache"
	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/database"
	"github.com/aydinemrecan/scamradar-backend/internal/handlers"
	"github.com/aydinemrecan/scamradar-backend/internal/logging"
	"github.com/aydinemrecan/scamradar-backend/internal/mailer"
	"github.com/aydinemrecan/scamradar-backend/internal/middleware"
	"github.com/aydinemrecan/scamradar-backend/internal/routes"
	"github.com/aydinemrecan/scamradar-backend/internal/services"
	"github.com/aydinemrecan/scamradar-backend/internal/storage"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	database.EnsureIndexes(db)

	if err := database.EnsureAdmin(db, cfg); err != nil {
		slog.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}
	if err := database.SeedLearningModules(db); err != nil {
		slog.Warn("learning module seed failed", "error", err)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cleanupDone)

	// Rate-limit counters; a broken cache disables limiting, never the API
	limits, err := cache.New(cfg.CacheDir)
	if err != nil {
		slog.Warn("rate-limit cache unavailable, limits disabled", "dir", cfg.CacheDir, "error", err)
	}

	// Media storage: remote object store when configured, disk otherwise
	local, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		slog.Error("upload dir unavailable", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}
	var objects storage.ObjectStore
	if cfg.ObjectStoreConfigured() {
		objects = storage.NewCloudinaryStore(cfg.CloudName, cfg.CloudAPIKey, cfg.CloudAPISecret)
		slog.Info("object store configured", "cloud", cfg.CloudName)
	}

	outbound := mailer.New(cfg)

	// Services
	authService := services.NewAuthService(db, cfg, outbound, limits)
	scanService := services.NewScanService(db, cfg)
	reputationService := services.NewReputationService(db)
	reportService := services.NewReportService(db, cfg, limits, reputationService, objects, local)
	learnService := services.NewLearnService(db)
	chatService := services.NewChatService(cfg)

	// Handlers
	h := &routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Scan:      handlers.NewScanHandler(scanService, authService),
		Community: handlers.NewCommunityHandler(cfg, reportService, reputationService),
		Learn:     handlers.NewLearnHandler(learnService),
		Chat:      handlers.NewChatHandler(chatService),
		Feed:      handlers.NewFeedHandler(cfg),
		Health:    handlers.NewHealthHandler(db),
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxUploadBytes + 1024*1024,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, db, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	limits.Close()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose details for client errors, never for 5xx
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "internal server error"
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
