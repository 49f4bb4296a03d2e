package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/ports"
)

// maxSavedRoutes bounds the history so the state blob cannot grow without
// limit; oldest routes are dropped first.
const maxSavedRoutes = 100

// HistoryService persists finished tracking sessions' walked polylines.
type HistoryService struct {
	store ports.StateStore
	mu    sync.Mutex
}

func NewHistoryService(store ports.StateStore) *HistoryService {
	return &HistoryService{store: store}
}

// Save appends a walked route to the history, newest first.
func (s *HistoryService) Save(ctx context.Context, points []domain.Position, distanceMeters float64) (domain.SavedRoute, error) {
	route := domain.SavedRoute{
		ID:             uuid.NewString(),
		Points:         points,
		DistanceMeters: distanceMeters,
		SavedAt:        time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	routes, err := s.load(ctx)
	if err != nil {
		return domain.SavedRoute{}, err
	}
	routes = append([]domain.SavedRoute{route}, routes...)
	if len(routes) > maxSavedRoutes {
		routes = routes[:maxSavedRoutes]
	}

	data, err := json.Marshal(routes)
	if err != nil {
		return domain.SavedRoute{}, err
	}
	if err := s.store.Set(ctx, stateKeyRouteHistory, data); err != nil {
		return domain.SavedRoute{}, err
	}
	return route, nil
}

// List returns saved routes, newest first.
func (s *HistoryService) List(ctx context.Context) ([]domain.SavedRoute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Clear deletes the whole history.
func (s *HistoryService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, stateKeyRouteHistory)
}

func (s *HistoryService) load(ctx context.Context) ([]domain.SavedRoute, error) {
	data, err := s.store.Get(ctx, stateKeyRouteHistory)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return []domain.SavedRoute{}, nil
	}
	if err != nil {
		return nil, err
	}
	var routes []domain.SavedRoute
	if err := json.Unmarshal(data, &routes); err != nil {
		// Corrupt history is dropped rather than wedging every save.
		return []domain.SavedRoute{}, nil
	}
	return routes, nil
}
