package routes

import (
	"time"

	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/handlers"
	"github.com/aydinemrecan/scamradar-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Scan      *handlers.ScanHandler
	Community *handlers.CommunityHandler
	Learn     *handlers.LearnHandler
	Chat      *handlers.ChatHandler
	Feed      *handlers.FeedHandler
	Health    *handlers.HealthHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h *Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Health)

	// Credential endpoints get a stricter 10 req/min per-IP limit
	authLimiter := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	api.Post("/auth/register", authLimiter, h.Auth.Register)
	api.Post("/auth/login", authLimiter, h.Auth.Login)
	api.Post("/auth/refresh", authLimiter, h.Auth.Refresh)
	api.Post("/auth/verify-email", authLimiter, h.Auth.VerifyEmail)
	api.Post("/auth/resend-verification", authLimiter, h.Auth.ResendVerification)

	// Inbound-mail webhook: the payload token is the credential, no JWT
	api.Post("/enhanced-scam/inbound-email", h.Scan.InboundEmail)

	// Public content
	api.Get("/feed/news", h.Feed.News)

	// Local media uploads (read-only)
	app.Static("/api/community/uploads", cfg.UploadDir, fiber.Static{
		Browse:   false,
		Download: false,
		MaxAge:   3600,
	})

	// Everything below requires a valid access token
	protected := middleware.Protected(db, cfg)

	// Account routes share the /auth prefix with the public credential
	// endpoints, so the JWT chain is attached per route rather than on a
	// group (group middleware would also guard login and register).
	api.Post("/auth/logout", append(protected, h.Auth.Logout)...)
	api.Get("/auth/profile", append(protected, h.Auth.Me)...)
	api.Put("/auth/profile", append(protected, h.Auth.UpdateProfile)...)
	api.Post("/auth/change-password", append(protected, h.Auth.ChangePassword)...)
	api.Post("/auth/profile/delete-account", append(protected, h.Auth.DeleteAccount)...)

	// The /enhanced-scam prefix also hosts the public webhook above, so
	// these are registered per route as well.
	api.Post("/enhanced-scam/analyze", append(protected, h.Scan.AnalyzeText)...)
	api.Get("/enhanced-scam/recent-scans", append(protected, h.Scan.RecentScans)...)
	api.Get("/enhanced-scam/forwarding-address", append(protected, h.Scan.ForwardingAddress)...)
	api.Post("/link/analyze", append(protected, h.Scan.AnalyzeLinks)...)

	community := api.Group("/community", protected...)
	community.Post("/reports", h.Community.CreateReport)
	community.Get("/reports", h.Community.ListReports)
	community.Get("/trending", h.Community.Trending)
	community.Get("/reports/:id", h.Community.GetReport)
	community.Delete("/reports/:id", h.Community.DeleteReport)
	community.Post("/reports/:id/vote", h.Community.Vote)
	community.Post("/reports/:id/media", h.Community.AddMedia)
	community.Delete("/reports/:id/media/:mediaId", middleware.RequireAdmin(), h.Community.DeleteMedia)
	community.Get("/reports/:id/comments", h.Community.ListComments)
	community.Post("/reports/:id/comments", h.Community.CreateComment)
	community.Delete("/comments/:commentId", h.Community.DeleteComment)
	community.Get("/stats", h.Community.Stats)
	community.Get("/leaderboard", h.Community.Leaderboard)
	community.Get("/my-stats", h.Community.MyStats)
	community.Get("/alerts", h.Community.Alerts)

	// Moderation
	community.Post("/reports/:id/verify", middleware.RequireModerator(), h.Community.Verify)
	community.Put("/reports/:id/status", middleware.RequireModerator(), h.Community.SetStatus)

	// Admin content management
	admin := api.Group("/admin", append(protected, middleware.RequireAdmin())...)
	admin.Post("/alerts", h.Community.CreateAlert)
	admin.Delete("/alerts/:id", h.Community.DeactivateAlert)
	admin.Post("/threats", h.Community.CreateThreat)

	learn := api.Group("/learn", protected...)
	learn.Get("/modules", h.Learn.Modules)
	learn.Post("/modules/:id/progress", h.Learn.UpdateProgress)

	chat := api.Group("/chat", protected...)
	chat.Post("/", h.Chat.Ask)
}
