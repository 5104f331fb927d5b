package routes

import (
	"testing"

	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// Registers the full route table without hitting any backing service and
// checks the paths the mobile client depends on.
func TestSetupRegistersExpectedPaths(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", UploadDir: t.TempDir()}
	h := &Handlers{
		Auth:      &handlers.AuthHandler{},
		Scan:      &handlers.ScanHandler{},
		Community: &handlers.CommunityHandler{},
		Learn:     &handlers.LearnHandler{},
		Chat:      &handlers.ChatHandler{},
		Feed:      &handlers.FeedHandler{},
		Health:    &handlers.HealthHandler{},
	}

	app := fiber.New()
	Setup(app, cfg, nil, h)

	registered := make(map[string]bool)
	for _, stack := range app.Stack() {
		for _, route := range stack {
			registered[route.Method+" "+route.Path] = true
		}
	}

	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"GET /api/auth/profile",
		"POST /api/enhanced-scam/analyze",
		"POST /api/enhanced-scam/inbound-email",
		"POST /api/link/analyze",
		"GET /api/community/reports",
		"GET /api/community/trending",
		"POST /api/community/reports/:id/vote",
		"GET /api/community/leaderboard",
		"GET /api/community/my-stats",
		"GET /api/learn/modules",
		"GET /api/feed/news",
		"GET /api/health",
	} {
		assert.True(t, registered[want], want)
	}

	assert.False(t, registered["GET /api/community/reports/trending"])
}
