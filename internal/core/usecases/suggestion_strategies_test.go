package usecases

import (
	"math"
	"testing"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/pkg/geospatial"
)

// Strategy-level tests poke the unexported route builders directly, so the
// fixtures can steer a single strategy without fighting the scoring pass.

var strategyOrigin = domain.Position{Lat: 37.7749, Lon: -122.4194}

// northboundStreet is two contiguous segments heading due north from the
// origin, roughly 111 m each.
func northboundStreet() domain.Street {
	return domain.Street{
		WayID:   100,
		Name:    "Market Street",
		Highway: "primary",
		Segments: []domain.StreetSegment{
			{
				ID:    domain.SegmentID(100, 0),
				Start: domain.Position{Lat: 37.7749, Lon: -122.4194},
				End:   domain.Position{Lat: 37.7759, Lon: -122.4194},
			},
			{
				ID:    domain.SegmentID(100, 1),
				Start: domain.Position{Lat: 37.7759, Lon: -122.4194},
				End:   domain.Position{Lat: 37.7769, Lon: -122.4194},
			},
		},
	}
}

func TestLinearRoute_EndsAtOrigin(t *testing.T) {
	svc := NewRouteSuggestionService(nil, 0)
	candidates := buildCandidates([]domain.Street{northboundStreet()}, strategyOrigin, 5000)

	route := svc.linearRoute(candidates, strategyOrigin, 2000)
	if route == nil {
		t.Fatal("expected a route")
	}

	last := route.Waypoints[len(route.Waypoints)-1]
	if last.Kind != domain.WaypointReturn {
		t.Fatalf("route must close at the origin, last waypoint is %s", last.Kind)
	}
	if last.Position != strategyOrigin {
		t.Errorf("closing waypoint should be the origin, got %+v", last.Position)
	}

	// Both segments fit the budget, so the walk is two legs out plus the
	// straight leg home.
	segs := northboundStreet().Segments
	outbound := geospatial.Haversine(segs[0].Start, segs[0].End) +
		geospatial.Haversine(segs[1].Start, segs[1].End)
	want := outbound + geospatial.Haversine(segs[1].End, strategyOrigin)
	if got := route.TotalDistanceKm * 1000; math.Abs(got-want) > 0.5 {
		t.Errorf("total distance %.1fm, want %.1fm including the closing leg", got, want)
	}
}

func TestOutAndBackRoute_ReturnsDirectly(t *testing.T) {
	svc := NewRouteSuggestionService(nil, 0)

	// The outbound path bends northeast, so the straight leg home is
	// shorter than walking the same path back.
	bent := domain.Street{
		WayID:   200,
		Name:    "Mission Street",
		Highway: "secondary",
		Segments: []domain.StreetSegment{
			{
				ID:    domain.SegmentID(200, 0),
				Start: domain.Position{Lat: 37.7749, Lon: -122.4194},
				End:   domain.Position{Lat: 37.7759, Lon: -122.4194},
			},
			{
				ID:    domain.SegmentID(200, 1),
				Start: domain.Position{Lat: 37.7759, Lon: -122.4194},
				End:   domain.Position{Lat: 37.7769, Lon: -122.4184},
			},
		},
	}
	candidates := buildCandidates([]domain.Street{bent}, strategyOrigin, 5000)

	route := svc.outAndBackRoute(candidates, strategyOrigin, 4000)
	if route == nil {
		t.Fatal("expected a route")
	}

	last := route.Waypoints[len(route.Waypoints)-1]
	if last.Kind != domain.WaypointReturn || last.Position != strategyOrigin {
		t.Fatalf("route must end back at the origin, got %s at %+v", last.Kind, last.Position)
	}

	outbound := geospatial.Haversine(bent.Segments[0].Start, bent.Segments[0].End) +
		geospatial.Haversine(bent.Segments[1].Start, bent.Segments[1].End)
	want := outbound + geospatial.Haversine(bent.Segments[1].End, strategyOrigin)
	got := route.TotalDistanceKm * 1000
	if math.Abs(got-want) > 0.5 {
		t.Errorf("total distance %.1fm, want %.1fm (outbound plus straight leg home)", got, want)
	}
	if got >= 2*outbound {
		t.Errorf("total %.1fm counts a retraced path, the return should be direct", got)
	}
}

func TestScoreRoute_RewardsDenseRoutes(t *testing.T) {
	rich := &domain.RouteSuggestion{TotalDistanceKm: 2, SegmentCount: 12, EstimatedXP: 120}
	poor := &domain.RouteSuggestion{TotalDistanceKm: 2, SegmentCount: 11, EstimatedXP: 110}

	// Both hit the distance target exactly, so only the segment and XP
	// terms separate them. They keep growing past 10 segments and 100 XP.
	if scoreRoute(rich, 2) <= scoreRoute(poor, 2) {
		t.Errorf("richer route should outscore: %.3f vs %.3f", scoreRoute(rich, 2), scoreRoute(poor, 2))
	}
	if got, want := scoreRoute(rich, 2), 0.4*1+0.4*1.2+0.2*1.2; math.Abs(got-want) > 1e-9 {
		t.Errorf("score = %.4f, want %.4f", got, want)
	}
}
