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

	natsadapter "github.com/wanderlust-app/wanderlust/internal/adapters/nats"
	"github.com/wanderlust-app/wanderlust/internal/adapters/overpass"
	"github.com/wanderlust-app/wanderlust/internal/adapters/postgres"
	"github.com/wanderlust-app/wanderlust/internal/adapters/valkey"
	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/ports"
	"github.com/wanderlust-app/wanderlust/internal/core/usecases"
	"github.com/wanderlust-app/wanderlust/internal/pkg/config"
	"github.com/wanderlust-app/wanderlust/internal/pkg/logging"
	"github.com/wanderlust-app/wanderlust/internal/pkg/metrics"
)

// The tracker worker consumes GPS samples from the WALK_POSITIONS stream
// and runs them through the exploration pipeline, so position ingestion
// keeps working when samples arrive over NATS instead of HTTP.
func main() {
	cfg, err := config.Load("wanderlust-tracker")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// NATS publisher for snap and discovery events
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	// Street data provider
	provider := overpass.New(cfg.Overpass.Endpoint, time.Duration(cfg.Overpass.TimeoutSeconds)*time.Second)

	store := postgres.NewStateRepo(db)

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
	tracker := usecases.NewTrackingService(ctx, streets, ledger, achievements, history, store, publisher, usecases.TrackingConfig{
		SnapThresholdMeters: cfg.Tracking.SnapThresholdMeters,
		SegmentBiasMeters:   cfg.Tracking.SegmentBiasMeters,
		SearchRadiusMeters:  cfg.Tracking.SearchRadiusMeters,
		XPPerMeter:          cfg.Tracking.XPPerMeter,
	})

	// The worker owns one long-lived session so walked routes get saved.
	if err := tracker.Start(ctx); err != nil {
		slog.Warn("could not open tracking session", "error", err)
	}

	// Durable consumer on the position stream
	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	err = subscriber.SubscribePositions(ctx, func(ctx context.Context, p domain.Position) error {
		result, err := tracker.HandlePosition(ctx, p)
		if err != nil {
			metrics.PositionsProcessed.WithLabelValues("error").Inc()
			return err
		}

		outcome := "snapped"
		if result.Snap.OffRoad {
			outcome = "off_road"
		}
		metrics.PositionsProcessed.WithLabelValues(outcome).Inc()
		if result.NewSegment {
			metrics.SegmentsDiscovered.Inc()
			slog.Info("segment discovered",
				"segment", result.Snap.SegmentID,
				"street", result.Snap.StreetName,
				"xp", result.XPAwarded,
			)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe positions: %v", err)
	}

	// Prometheus scrape endpoint for the worker
	metricsApp := fiber.New(fiber.Config{DisableStartupMessage: true})
	metricsApp.Get("/metrics", metrics.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("metrics server starting", "addr", addr)
		if err := metricsApp.Listen(addr); err != nil {
			slog.Error("metrics listen", "error", err)
		}
	}()

	slog.Info("tracker worker started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig.String())
	cancel()

	// Close the session so the walked route is persisted.
	if tracker.IsTracking() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if _, _, err := tracker.Stop(stopCtx); err != nil {
			slog.Error("failed to close tracking session", "error", err)
		}
	}

	slog.Info("tracker stopped")
}
