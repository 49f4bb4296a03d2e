package usecases_test

import (
	"context"
	"testing"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/usecases"
)

type trackingFixture struct {
	svc       *usecases.TrackingService
	ledger    *usecases.ExplorationService
	history   *usecases.HistoryService
	publisher *mockPublisher
	store     *memStore
}

func newTrackingFixture(t *testing.T) *trackingFixture {
	t.Helper()
	ctx := context.Background()
	store := newMemStore()
	provider := &mockWayProvider{
		fetchFn: func(ctx context.Context, bounds domain.Bounds, classes []string) ([]domain.RawWay, error) {
			return downtownWays(), nil
		},
	}
	ledger := usecases.NewExplorationService(ctx, store)
	streets := usecases.NewStreetGraphService(provider, ledger, nil, usecases.StreetGraphConfig{})
	achievements := usecases.NewAchievementService(ctx, store)
	history := usecases.NewHistoryService(store)
	publisher := &mockPublisher{}

	svc := usecases.NewTrackingService(ctx, streets, ledger, achievements, history, store, publisher, usecases.TrackingConfig{})
	return &trackingFixture{svc: svc, ledger: ledger, history: history, publisher: publisher, store: store}
}

func TestTrackingService_DiscoveryAwardsOnce(t *testing.T) {
	ctx := context.Background()
	f := newTrackingFixture(t)

	first, err := f.svc.HandlePosition(ctx, marketStreetPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.NewSegment {
		t.Fatal("first visit should discover the segment")
	}
	if first.XPAwarded <= 0 {
		t.Errorf("expected XP for a discovery, got %d", first.XPAwarded)
	}
	if first.Snap.OffRoad {
		t.Error("a position on the street must not be off-road")
	}
	if first.Snap.StreetName != "Market Street" {
		t.Errorf("expected Market Street, got %s", first.Snap.StreetName)
	}
	if first.Status != "New street discovered!" {
		t.Errorf("unexpected status %q", first.Status)
	}

	// Same sample replayed: nothing new, nothing awarded.
	second, err := f.svc.HandlePosition(ctx, marketStreetPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.NewSegment || second.XPAwarded != 0 {
		t.Errorf("replay must award nothing, got %+v", second)
	}
	if f.ledger.Count() != 1 {
		t.Errorf("expected 1 discovered segment, got %d", f.ledger.Count())
	}

	if len(f.publisher.discoveries) != 1 {
		t.Errorf("expected 1 discovery event, got %d", len(f.publisher.discoveries))
	}
	if len(f.publisher.snaps) != 2 {
		t.Errorf("expected 2 snap events, got %d", len(f.publisher.snaps))
	}
}

func TestTrackingService_OffRoadBeyondThreshold(t *testing.T) {
	ctx := context.Background()
	f := newTrackingFixture(t)

	// ~44 m west of Valencia Street, beyond the 25 m snap threshold.
	offRoad := domain.Position{Lat: 37.7755, Lon: -122.4218}
	res, err := f.svc.HandlePosition(ctx, offRoad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Snap.OffRoad {
		t.Error("expected off-road result")
	}
	if res.NewSegment || res.XPAwarded != 0 {
		t.Errorf("off-road sample must not discover anything, got %+v", res)
	}
	if res.Snap.Snapped != nil {
		t.Errorf("off-road sample must not be snapped, got %+v", res.Snap.Snapped)
	}
}

func TestTrackingService_FirstDiscoveryUnlocksAchievement(t *testing.T) {
	ctx := context.Background()
	f := newTrackingFixture(t)

	res, err := f.svc.HandlePosition(ctx, marketStreetPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, a := range res.NewAchievements {
		if a.ID == "first_steps" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected first_steps unlock, got %+v", res.NewAchievements)
	}
	// The unlock bonus lands on top of the discovery XP.
	if res.TotalXP <= res.XPAwarded {
		t.Errorf("expected achievement bonus in total, got total %d award %d", res.TotalXP, res.XPAwarded)
	}
}

func TestTrackingService_SessionSavesRoute(t *testing.T) {
	ctx := context.Background()
	f := newTrackingFixture(t)

	if err := f.svc.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.svc.IsTracking() {
		t.Fatal("expected active session")
	}

	positions := []domain.Position{
		{Lat: 37.7749, Lon: -122.4194},
		{Lat: 37.7754, Lon: -122.4194},
		{Lat: 37.7759, Lon: -122.4194},
	}
	for _, p := range positions {
		if _, err := f.svc.HandlePosition(ctx, p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	saved, sessionXP, err := f.svc.Stop(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected a saved route")
	}
	if len(saved.Points) != 3 {
		t.Errorf("expected 3 route points, got %d", len(saved.Points))
	}
	if saved.DistanceMeters <= 0 {
		t.Errorf("expected positive distance, got %.2f", saved.DistanceMeters)
	}
	if sessionXP <= 0 {
		t.Errorf("expected session XP, got %d", sessionXP)
	}

	routes, err := f.history.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 1 || routes[0].ID != saved.ID {
		t.Errorf("route should be in the history, got %+v", routes)
	}
}

func TestTrackingService_StopWithoutMovement(t *testing.T) {
	ctx := context.Background()
	f := newTrackingFixture(t)

	if err := f.svc.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved, _, err := f.svc.Stop(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != nil {
		t.Errorf("empty session must not save a route, got %+v", saved)
	}
}

func TestTrackingService_StatsAndReset(t *testing.T) {
	ctx := context.Background()
	f := newTrackingFixture(t)

	if err := f.svc.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.HandlePosition(ctx, marketStreetPos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := f.svc.Stats()
	if stats.SegmentsExplored != 1 {
		t.Errorf("expected 1 segment explored, got %d", stats.SegmentsExplored)
	}
	if stats.TotalXP <= 0 || stats.SessionXP <= 0 {
		t.Errorf("expected XP in stats, got %+v", stats)
	}
	if stats.CurrentLevel < 1 {
		t.Errorf("level starts at 1, got %d", stats.CurrentLevel)
	}
	if stats.ExplorationDays != 1 || stats.ConsecutiveDays != 1 {
		t.Errorf("expected one exploration day, got %+v", stats)
	}

	if err := f.svc.ResetAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats = f.svc.Stats()
	if stats.SegmentsExplored != 0 || stats.TotalXP != 0 || stats.ExplorationDays != 0 {
		t.Errorf("reset should zero the stats, got %+v", stats)
	}
}

func TestTrackingService_XPSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	f := newTrackingFixture(t)

	res, err := f.svc.HandlePosition(ctx, marketStreetPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider := &mockWayProvider{}
	ledger := usecases.NewExplorationService(ctx, f.store)
	streets := usecases.NewStreetGraphService(provider, ledger, nil, usecases.StreetGraphConfig{})
	achievements := usecases.NewAchievementService(ctx, f.store)
	reborn := usecases.NewTrackingService(ctx, streets, ledger, achievements, usecases.NewHistoryService(f.store), f.store, nil, usecases.TrackingConfig{})

	if reborn.TotalXP() != res.TotalXP {
		t.Errorf("expected %d XP after restart, got %d", res.TotalXP, reborn.TotalXP())
	}
}
