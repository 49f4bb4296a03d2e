package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/ports"
	"github.com/wanderlust-app/wanderlust/internal/pkg/geospatial"
)

// ExplorationService is the ledger of discovered segments. It keeps the
// authoritative set in memory and writes every mutation through to the
// state store before reporting success, so restarts never lose progress.
type ExplorationService struct {
	store ports.StateStore

	mu         sync.RWMutex
	discovered map[string]struct{}
	geometry   map[string]domain.DiscoveredSegment
}

// NewExplorationService loads the persisted ledger. Absent keys start an
// empty ledger; malformed persisted state is treated as corrupt and the
// ledger resets rather than failing startup.
func NewExplorationService(ctx context.Context, store ports.StateStore) *ExplorationService {
	s := &ExplorationService{
		store:      store,
		discovered: make(map[string]struct{}),
		geometry:   make(map[string]domain.DiscoveredSegment),
	}
	s.load(ctx)
	return s
}

func (s *ExplorationService) load(ctx context.Context) {
	ids, err := s.loadIDs(ctx)
	if err != nil {
		slog.Warn("exploration ledger unreadable, starting empty", "error", err)
		return
	}
	geoms, err := s.loadGeometry(ctx)
	if err != nil {
		slog.Warn("exploration geometry unreadable, starting empty", "error", err)
		return
	}

	for _, id := range ids {
		s.discovered[id] = struct{}{}
	}
	for _, g := range geoms {
		// Geometry for unknown segments would violate the ledger invariant.
		if _, ok := s.discovered[g.ID]; ok {
			s.geometry[g.ID] = g
		}
	}
}

func (s *ExplorationService) loadIDs(ctx context.Context) ([]string, error) {
	data, err := s.store.Get(ctx, stateKeyExploredSegments)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *ExplorationService) loadGeometry(ctx context.Context) ([]domain.DiscoveredSegment, error) {
	data, err := s.store.Get(ctx, stateKeyExploredGeometry)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var geoms []domain.DiscoveredSegment
	if err := json.Unmarshal(data, &geoms); err != nil {
		return nil, err
	}
	return geoms, nil
}

// IsDiscovered reports whether the segment is already in the ledger.
func (s *ExplorationService) IsDiscovered(segmentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.discovered[segmentID]
	return ok
}

// MarkDiscovered records a first-time discovery and returns the segment
// length in meters as the reward basis. A segment already in the ledger
// returns 0 with no side effects, so replayed samples award nothing.
func (s *ExplorationService) MarkDiscovered(ctx context.Context, seg domain.DiscoveredSegment) (float64, error) {
	s.mu.Lock()
	if _, ok := s.discovered[seg.ID]; ok {
		s.mu.Unlock()
		return 0, nil
	}
	s.discovered[seg.ID] = struct{}{}
	s.geometry[seg.ID] = seg
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		// Undo the insert: a segment the store never accepted must stay
		// discoverable, otherwise a later pass over it awards nothing.
		s.mu.Lock()
		delete(s.discovered, seg.ID)
		delete(s.geometry, seg.ID)
		s.mu.Unlock()
		return 0, err
	}
	return geospatial.Haversine(seg.Start, seg.End), nil
}

func (s *ExplorationService) persist(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.discovered))
	for id := range s.discovered {
		ids = append(ids, id)
	}
	geoms := make([]domain.DiscoveredSegment, 0, len(s.geometry))
	for _, g := range s.geometry {
		geoms = append(geoms, g)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	sort.Slice(geoms, func(i, j int) bool { return geoms[i].ID < geoms[j].ID })

	idData, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	geomData, err := json.Marshal(geoms)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, stateKeyExploredSegments, idData); err != nil {
		return err
	}
	return s.store.Set(ctx, stateKeyExploredGeometry, geomData)
}

// Count returns the number of discovered segments.
func (s *ExplorationService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.discovered)
}

// DiscoveredSegments returns the stored geometry of every discovered
// segment, sorted by ID.
func (s *ExplorationService) DiscoveredSegments() []domain.DiscoveredSegment {
	s.mu.RLock()
	geoms := make([]domain.DiscoveredSegment, 0, len(s.geometry))
	for _, g := range s.geometry {
		geoms = append(geoms, g)
	}
	s.mu.RUnlock()

	sort.Slice(geoms, func(i, j int) bool { return geoms[i].ID < geoms[j].ID })
	return geoms
}

// TotalDistanceMeters sums the length of every discovered segment.
func (s *ExplorationService) TotalDistanceMeters() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, g := range s.geometry {
		total += geospatial.Haversine(g.Start, g.End)
	}
	return total
}

// Reset wipes the ledger in memory and in the store.
func (s *ExplorationService) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.discovered = make(map[string]struct{})
	s.geometry = make(map[string]domain.DiscoveredSegment)
	s.mu.Unlock()

	if err := s.store.Delete(ctx, stateKeyExploredSegments); err != nil {
		return err
	}
	return s.store.Delete(ctx, stateKeyExploredGeometry)
}
