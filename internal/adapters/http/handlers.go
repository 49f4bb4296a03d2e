package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/usecases"
	"github.com/wanderlust-app/wanderlust/internal/pkg/metrics"
)

// positionRequest is the body of a GPS sample submission.
type positionRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (r positionRequest) validate() error {
	if r.Lat < -90 || r.Lat > 90 {
		return errors.New("lat must be between -90 and 90")
	}
	if r.Lon < -180 || r.Lon > 180 {
		return errors.New("lon must be between -180 and 180")
	}
	return nil
}

// TrackPositionHandler feeds one GPS sample through the exploration
// pipeline and returns the snap result, discovery, and XP state.
func TrackPositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req positionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := req.validate(); err != nil {
			return errBadRequest(c, err.Error())
		}

		result, err := deps.Tracker.HandlePosition(c.Context(), domain.Position{Lat: req.Lat, Lon: req.Lon})
		if err != nil {
			return errInternal(c, err.Error())
		}

		outcome := "snapped"
		if result.Snap.OffRoad {
			outcome = "off_road"
		}
		metrics.PositionsProcessed.WithLabelValues(outcome).Inc()
		if result.NewSegment {
			metrics.SegmentsDiscovered.Inc()
		}
		if result.XPAwarded > 0 {
			metrics.XPAwarded.Add(float64(result.XPAwarded))
		}

		return c.JSON(fiber.Map{
			"result": result,
			"route":  deps.Tracker.CurrentRoute(),
		})
	}
}

// StartTrackingHandler begins a tracking session.
func StartTrackingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Tracker.IsTracking() {
			return errConflict(c, "a tracking session is already active")
		}
		if err := deps.Tracker.Start(c.Context()); err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"tracking": true})
	}
}

// StopTrackingHandler ends the session and saves the walked route.
func StopTrackingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !deps.Tracker.IsTracking() {
			return errConflict(c, "no tracking session is active")
		}
		saved, sessionXP, err := deps.Tracker.Stop(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		resp := fiber.Map{
			"tracking":   false,
			"session_xp": sessionXP,
		}
		if saved != nil {
			resp["saved_route"] = saved
		}
		return c.JSON(resp)
	}
}

// NearbyStreetsHandler returns the street graph around a position, with
// explored flags stamped from the ledger.
func NearbyStreetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 200)

		if lat == 0 && lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 5000 {
			return errBadRequest(c, "radius must be between 1 and 5000 meters")
		}

		streets := deps.Streets.EnsureLoaded(c.Context(), domain.Position{Lat: lat, Lon: lon}, radius)
		return c.JSON(fiber.Map{
			"streets": streets,
			"count":   len(streets),
		})
	}
}

// ExplorationStatsHandler returns ledger and XP statistics.
func ExplorationStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Tracker.Stats())
	}
}

// DiscoveredSegmentsHandler returns discovered segment geometry for
// rendering, paginated.
func DiscoveredSegmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		segments := deps.Ledger.DiscoveredSegments()

		page, pg := paginate(c, segments, 500, 2000)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// ResetExplorationHandler wipes all exploration progress.
func ResetExplorationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Tracker.ResetAll(c.Context()); err != nil {
			return errInternal(c, err.Error())
		}
		slog.Info("exploration progress reset")

		// Tell connected clients to drop their rendered progress.
		if deps.Events != nil {
			if err := deps.Events.PublishBroadcast(c.Context(), []byte(`{"event":"progress_reset"}`)); err != nil {
				slog.Warn("failed to broadcast reset", "error", err)
			}
		}
		return c.JSON(fiber.Map{"reset": true})
	}
}

// SuggestRouteHandler builds a walking route over undiscovered streets.
// Expected failures (nothing nearby, everything explored, no viable
// route) come back as success=false so clients can show the message
// verbatim.
func SuggestRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radiusKm := c.QueryFloat("radius_km", 2)
		targetKm := c.QueryFloat("target_km", 2)

		if lat == 0 && lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radiusKm <= 0 || radiusKm > 10 {
			return errBadRequest(c, "radius_km must be between 0 and 10")
		}
		if targetKm <= 0 || targetKm > 50 {
			return errBadRequest(c, "target_km must be between 0 and 50")
		}

		pos := domain.Position{Lat: lat, Lon: lon}
		route, err := deps.Suggestions.Suggest(c.Context(), pos, radiusKm, targetKm)
		if err != nil {
			if errors.Is(err, usecases.ErrNoStreetsFound) ||
				errors.Is(err, usecases.ErrNoUndiscovered) ||
				errors.Is(err, usecases.ErrNoSuitableRoute) {
				return c.JSON(fiber.Map{"success": false, "error": err.Error()})
			}
			return errInternal(c, err.Error())
		}

		if deps.Events != nil {
			if err := deps.Events.PublishRouteSuggested(c.Context(), route); err != nil {
				slog.Warn("failed to publish suggested route", "error", err)
			}
		}

		return c.JSON(fiber.Map{
			"success": true,
			"route":   route,
			"stats": fiber.Map{
				"total_distance_km":  route.TotalDistanceKm,
				"segment_count":      route.SegmentCount,
				"estimated_xp":       route.EstimatedXP,
				"estimated_duration": usecases.EstimateDuration(route.TotalDistanceKm),
			},
		})
	}
}

// RouteHistoryHandler lists saved walking routes, newest first.
func RouteHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		routes, err := deps.History.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, routes, 20, 100)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// ClearRouteHistoryHandler deletes all saved routes.
func ClearRouteHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.History.Clear(c.Context()); err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"cleared": true})
	}
}

// AchievementsHandler returns the catalogue with unlock state and
// progress toward each entry.
func AchievementsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		progress := deps.Achievements.Progress(deps.Tracker.Stats())

		unlocked := 0
		for _, p := range progress {
			if p.Unlocked {
				unlocked++
			}
		}
		return c.JSON(fiber.Map{
			"achievements": progress,
			"unlocked":     unlocked,
			"total":        len(progress),
		})
	}
}
