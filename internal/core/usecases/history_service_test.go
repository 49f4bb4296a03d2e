package usecases_test

import (
	"context"
	"testing"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/usecases"
)

func TestHistoryService_SaveAndList(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewHistoryService(newMemStore())

	points := []domain.Position{
		{Lat: 37.7749, Lon: -122.4194},
		{Lat: 37.7759, Lon: -122.4194},
	}
	first, err := svc.Save(ctx, points, 111)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == "" {
		t.Error("saved route needs an id")
	}

	second, err := svc.Save(ctx, points, 222)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	routes, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].ID != second.ID {
		t.Errorf("newest route should come first, got %s", routes[0].ID)
	}
	if routes[1].DistanceMeters != 111 {
		t.Errorf("expected 111m, got %.0f", routes[1].DistanceMeters)
	}
}

func TestHistoryService_Clear(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewHistoryService(newMemStore())

	if _, err := svc.Save(ctx, []domain.Position{{Lat: 1, Lon: 1}}, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	routes, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("expected empty history, got %d routes", len(routes))
	}
}
