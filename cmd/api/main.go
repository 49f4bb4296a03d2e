package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/wanderlust-app/wanderlust/internal/adapters/http"
	natsadapter "github.com/wanderlust-app/wanderlust/internal/adapters/nats"
	"github.com/wanderlust-app/wanderlust/internal/adapters/overpass"
	"github.com/wanderlust-app/wanderlust/internal/adapters/postgres"
	"github.com/wanderlust-app/wanderlust/internal/adapters/valkey"
	"github.com/wanderlust-app/wanderlust/internal/core/ports"
	"github.com/wanderlust-app/wanderlust/internal/core/usecases"
	"github.com/wanderlust-app/wanderlust/internal/pkg/config"
	"github.com/wanderlust-app/wanderlust/internal/pkg/logging"
	"github.com/wanderlust-app/wanderlust/internal/pkg/metrics"
	"github.com/wanderlust-app/wanderlust/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("wanderlust-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Street data provider
	provider := overpass.New(cfg.Overpass.Endpoint, time.Duration(cfg.Overpass.TimeoutSeconds)*time.Second)

	// State store
	store := postgres.NewStateRepo(db)

	// Use cases
	ledger := usecases.NewExplorationService(ctx, store)
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	streets := usecases.NewStreetGraphService(provider, ledger, cacheSvc, usecases.StreetGraphConfig{
		HighwayClasses:  cfg.Overpass.HighwayClasses,
		BufferFraction:  cfg.Tracking.BufferFraction,
		CacheTTLSeconds: cfg.Overpass.CacheTTL,
	})
	achievements := usecases.NewAchievementService(ctx, store)
	history := usecases.NewHistoryService(store)
	var events ports.EventPublisher
	if publisher != nil {
		events = publisher
	}
	tracker := usecases.NewTrackingService(ctx, streets, ledger, achievements, history, store, events, usecases.TrackingConfig{
		SnapThresholdMeters: cfg.Tracking.SnapThresholdMeters,
		SegmentBiasMeters:   cfg.Tracking.SegmentBiasMeters,
		SearchRadiusMeters:  cfg.Tracking.SearchRadiusMeters,
		XPPerMeter:          cfg.Tracking.XPPerMeter,
	})
	suggestions := usecases.NewRouteSuggestionService(streets, cfg.Tracking.XPPerMeter)

	deps := &http.Dependencies{
		Tracker:      tracker,
		Streets:      streets,
		Ledger:       ledger,
		Suggestions:  suggestions,
		Achievements: achievements,
		History:      history,
		Events:       events,
		NATS:         natsConn,
		DB:           db,
		Cache:        cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Wanderlust API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.wanderlust.app",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Feed pool stats to the db gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
