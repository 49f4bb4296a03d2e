package usecases_test

import (
	"math"
	"testing"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/usecases"
)

// Two parallel north-south segments 11.1 m apart in the planar metric.
func parallelStreets() []domain.Street {
	return []domain.Street{
		domain.DecomposeWay(domain.RawWay{
			ID: 1, Name: "West Lane",
			Geometry: []domain.Position{{Lat: 0, Lon: 0}, {Lat: 0.001, Lon: 0}},
		}),
		domain.DecomposeWay(domain.RawWay{
			ID: 2, Name: "East Lane",
			Geometry: []domain.Position{{Lat: 0, Lon: 0.0001}, {Lat: 0.001, Lon: 0.0001}},
		}),
	}
}

func TestFindClosestSegment_PicksNearest(t *testing.T) {
	streets := parallelStreets()

	// Clearly nearer to East Lane.
	p := domain.Position{Lat: 0.0005, Lon: 0.00009}
	match := usecases.FindClosestSegment(p, streets, "", 5)
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Segment.ID != "2-0" {
		t.Errorf("expected segment 2-0, got %s", match.Segment.ID)
	}
	if match.SnapPoint.Lon != 0.0001 {
		t.Errorf("snap point should lie on the segment, got %+v", match.SnapPoint)
	}
}

func TestFindClosestSegment_HysteresisBias(t *testing.T) {
	streets := parallelStreets()

	// 6.66 m from West Lane, 4.44 m from East Lane. Without a current
	// segment the nearer one wins; while already on West Lane the bias
	// keeps the walker there.
	p := domain.Position{Lat: 0.0005, Lon: 0.00006}

	free := usecases.FindClosestSegment(p, streets, "", 5)
	if free.Segment.ID != "2-0" {
		t.Errorf("unbiased match should be 2-0, got %s", free.Segment.ID)
	}

	biased := usecases.FindClosestSegment(p, streets, "1-0", 5)
	if biased.Segment.ID != "1-0" {
		t.Errorf("bias should keep the current segment, got %s", biased.Segment.ID)
	}
	// The reported distance stays honest even when the bias decided.
	if math.Abs(biased.Distance-6.66) > 0.1 {
		t.Errorf("expected true distance ~6.66m, got %.2f", biased.Distance)
	}
}

func TestFindClosestSegment_BiasDoesNotOverpowerRealMoves(t *testing.T) {
	streets := parallelStreets()

	// Right on top of East Lane; a 5 m bias on West Lane must not hold.
	p := domain.Position{Lat: 0.0005, Lon: 0.0001}
	match := usecases.FindClosestSegment(p, streets, "1-0", 5)
	if match.Segment.ID != "2-0" {
		t.Errorf("expected switch to 2-0, got %s", match.Segment.ID)
	}
}

func TestFindClosestSegment_Empty(t *testing.T) {
	if match := usecases.FindClosestSegment(domain.Position{}, nil, "", 5); match != nil {
		t.Errorf("expected nil for no streets, got %+v", match)
	}
}
