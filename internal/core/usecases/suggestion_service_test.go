package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/usecases"
)

func newSuggestionService(t *testing.T, ways []domain.RawWay) (*usecases.RouteSuggestionService, *usecases.ExplorationService) {
	t.Helper()
	ctx := context.Background()
	provider := &mockWayProvider{
		fetchFn: func(ctx context.Context, bounds domain.Bounds, classes []string) ([]domain.RawWay, error) {
			return ways, nil
		},
	}
	ledger := usecases.NewExplorationService(ctx, newMemStore())
	streets := usecases.NewStreetGraphService(provider, ledger, nil, usecases.StreetGraphConfig{})
	return usecases.NewRouteSuggestionService(streets, 0), ledger
}

func TestRouteSuggestionService_NoStreets(t *testing.T) {
	svc, _ := newSuggestionService(t, nil)

	_, err := svc.Suggest(context.Background(), marketStreetPos, 2, 2)
	if !errors.Is(err, usecases.ErrNoStreetsFound) {
		t.Errorf("expected ErrNoStreetsFound, got %v", err)
	}
}

func TestRouteSuggestionService_AllDiscovered(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newSuggestionService(t, downtownWays())

	for _, way := range downtownWays() {
		street := domain.DecomposeWay(way)
		for _, seg := range street.Segments {
			if _, err := ledger.MarkDiscovered(ctx, domain.DiscoveredSegment{
				ID: seg.ID, Start: seg.Start, End: seg.End, StreetName: street.Name,
			}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	}

	_, err := svc.Suggest(ctx, marketStreetPos, 2, 2)
	if !errors.Is(err, usecases.ErrNoUndiscovered) {
		t.Errorf("expected ErrNoUndiscovered, got %v", err)
	}
}

func TestRouteSuggestionService_BuildsRoute(t *testing.T) {
	svc, _ := newSuggestionService(t, downtownWays())

	route, err := svc.Suggest(context.Background(), marketStreetPos, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.SegmentCount == 0 || route.SegmentCount != len(route.Segments) {
		t.Errorf("inconsistent segment count: %d vs %d segments", route.SegmentCount, len(route.Segments))
	}
	if route.TotalDistanceKm <= 0 {
		t.Errorf("expected positive distance, got %.3f", route.TotalDistanceKm)
	}
	if route.EstimatedXP <= 0 {
		t.Errorf("expected positive XP estimate, got %.1f", route.EstimatedXP)
	}

	if len(route.Waypoints) < 2 {
		t.Fatalf("expected at least start and one instruction, got %d waypoints", len(route.Waypoints))
	}
	if route.Waypoints[0].Kind != domain.WaypointStart {
		t.Errorf("first waypoint must be the start, got %s", route.Waypoints[0].Kind)
	}
	for _, wp := range route.Waypoints {
		if wp.Instruction == "" {
			t.Error("every waypoint needs an instruction")
		}
	}

	// Suggested segments must all be undiscovered.
	for _, seg := range route.Segments {
		if seg.Explored {
			t.Errorf("segment %s is already explored", seg.ID)
		}
	}
}

func TestRouteSuggestionService_RouteShrinksWithTarget(t *testing.T) {
	svc, _ := newSuggestionService(t, downtownWays())

	short, err := svc.Suggest(context.Background(), marketStreetPos, 2, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long, err := svc.Suggest(context.Background(), marketStreetPos, 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if short.TotalDistanceKm > long.TotalDistanceKm {
		t.Errorf("short target produced a longer route: %.3f > %.3f",
			short.TotalDistanceKm, long.TotalDistanceKm)
	}
}

func TestEstimateDuration(t *testing.T) {
	if got := usecases.EstimateDuration(2); got != "24 min" {
		t.Errorf("expected 24 min, got %q", got)
	}
	if got := usecases.EstimateDuration(6); got != "1h 12min" {
		t.Errorf("expected 1h 12min, got %q", got)
	}
}
