package usecases_test

import (
	"context"
	"sync"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/ports"
)

// --- Mock StateStore ---

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock WayProvider ---

type mockWayProvider struct {
	mu      sync.Mutex
	calls   int
	fetchFn func(ctx context.Context, bounds domain.Bounds, classes []string) ([]domain.RawWay, error)
}

func (m *mockWayProvider) FetchWays(ctx context.Context, bounds domain.Bounds, classes []string) ([]domain.RawWay, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, bounds, classes)
	}
	return nil, nil
}

func (m *mockWayProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu          sync.Mutex
	discoveries []domain.DiscoveryEvent
	snaps       []domain.SnapEvent
}

func (m *mockPublisher) PublishDiscovery(ctx context.Context, event *domain.DiscoveryEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discoveries = append(m.discoveries, *event)
	return nil
}

func (m *mockPublisher) PublishSnap(ctx context.Context, event *domain.SnapEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, *event)
	return nil
}

func (m *mockPublisher) PublishRouteSuggested(ctx context.Context, route *domain.RouteSuggestion) error {
	return nil
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return nil
}

// --- Fixtures ---

// downtownWays is a small grid of three parallel north-south streets
// around the Market Street test position, each split into two segments.
func downtownWays() []domain.RawWay {
	column := func(lon float64) []domain.Position {
		return []domain.Position{
			{Lat: 37.7749, Lon: lon},
			{Lat: 37.7759, Lon: lon},
			{Lat: 37.7769, Lon: lon},
		}
	}
	return []domain.RawWay{
		{ID: 100, Name: "Market Street", Highway: "primary", Geometry: column(-122.4194)},
		{ID: 200, Name: "Mission Street", Highway: "secondary", Geometry: column(-122.4204)},
		{ID: 300, Name: "Valencia Street", Highway: "residential", Geometry: column(-122.4214)},
	}
}

var marketStreetPos = domain.Position{Lat: 37.7749, Lon: -122.4194}
