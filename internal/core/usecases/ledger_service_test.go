package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/usecases"
)

func testSegment() domain.DiscoveredSegment {
	return domain.DiscoveredSegment{
		ID:         "100-0",
		Start:      domain.Position{Lat: 37.7749, Lon: -122.4194},
		End:        domain.Position{Lat: 37.7759, Lon: -122.4194},
		StreetName: "Market Street",
	}
}

func TestExplorationService_MarkDiscovered_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewExplorationService(ctx, newMemStore())

	reward, err := svc.MarkDiscovered(ctx, testSegment())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 0.001° of latitude is roughly 111 m.
	if math.Abs(reward-111) > 1 {
		t.Errorf("expected ~111m reward, got %.2f", reward)
	}
	if !svc.IsDiscovered("100-0") {
		t.Error("segment should be discovered")
	}

	again, err := svc.MarkDiscovered(ctx, testSegment())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != 0 {
		t.Errorf("rediscovery must award 0, got %.2f", again)
	}
	if svc.Count() != 1 {
		t.Errorf("expected 1 segment, got %d", svc.Count())
	}
}

func TestExplorationService_FailedPersistRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := usecases.NewExplorationService(ctx, store)

	store.setErr = errors.New("write refused")
	if _, err := svc.MarkDiscovered(ctx, testSegment()); err == nil {
		t.Fatal("expected the persist failure to surface")
	}
	// The segment never made it to the store, so it must stay
	// discoverable and rewardable on a later pass.
	if svc.IsDiscovered("100-0") {
		t.Error("failed persist should not mark the segment discovered")
	}
	if svc.Count() != 0 {
		t.Errorf("expected an empty ledger, got %d", svc.Count())
	}

	store.setErr = nil
	reward, err := svc.MarkDiscovered(ctx, testSegment())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reward <= 0 {
		t.Errorf("retry after a failed persist must still award, got %.2f", reward)
	}
}

func TestExplorationService_PersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	first := usecases.NewExplorationService(ctx, store)
	if _, err := first.MarkDiscovered(ctx, testSegment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := usecases.NewExplorationService(ctx, store)
	if !second.IsDiscovered("100-0") {
		t.Error("discovery should survive a restart")
	}
	segs := second.DiscoveredSegments()
	if len(segs) != 1 || segs[0].StreetName != "Market Street" {
		t.Errorf("unexpected geometry after reload: %+v", segs)
	}
}

func TestExplorationService_CorruptStateResets(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.data["wanderlust:explored_segments"] = []byte("{not json")

	svc := usecases.NewExplorationService(ctx, store)
	if svc.Count() != 0 {
		t.Errorf("corrupt state should start an empty ledger, got %d", svc.Count())
	}
}

func TestExplorationService_Reset(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := usecases.NewExplorationService(ctx, store)

	if _, err := svc.MarkDiscovered(ctx, testSegment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Count() != 0 {
		t.Error("reset should empty the ledger")
	}

	reloaded := usecases.NewExplorationService(ctx, store)
	if reloaded.Count() != 0 {
		t.Error("reset should also clear the store")
	}
}

func TestExplorationService_TotalDistance(t *testing.T) {
	ctx := context.Background()
	svc := usecases.NewExplorationService(ctx, newMemStore())

	if _, err := svc.MarkDiscovered(ctx, testSegment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.TotalDistanceMeters(); math.Abs(got-111) > 1 {
		t.Errorf("expected ~111m total, got %.2f", got)
	}
}
