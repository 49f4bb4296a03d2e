package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/wanderlust-app/wanderlust/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: position samples arrive about once a second, so 300
	// per minute leaves room for map and stats traffic on top.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Post("/track/position", timeout.NewWithContext(TrackPositionHandler(deps), 15*time.Second))
	v1.Post("/track/start", timeout.NewWithContext(StartTrackingHandler(deps), 15*time.Second))
	v1.Post("/track/stop", timeout.NewWithContext(StopTrackingHandler(deps), 15*time.Second))
	v1.Get("/streets/nearby", timeout.NewWithContext(NearbyStreetsHandler(deps), 15*time.Second))
	v1.Get("/exploration/stats", timeout.NewWithContext(ExplorationStatsHandler(deps), 15*time.Second))
	v1.Get("/exploration/segments", timeout.NewWithContext(DiscoveredSegmentsHandler(deps), 15*time.Second))
	v1.Post("/exploration/reset", timeout.NewWithContext(ResetExplorationHandler(deps), 15*time.Second))
	v1.Get("/routes/suggest", timeout.NewWithContext(SuggestRouteHandler(deps), 15*time.Second))
	v1.Get("/routes/history", timeout.NewWithContext(RouteHistoryHandler(deps), 15*time.Second))
	v1.Delete("/routes/history", timeout.NewWithContext(ClearRouteHistoryHandler(deps), 15*time.Second))
	v1.Get("/achievements", timeout.NewWithContext(AchievementsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
