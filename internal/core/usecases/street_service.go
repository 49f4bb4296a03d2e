package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/ports"
	"github.com/wanderlust-app/wanderlust/internal/pkg/geospatial"
)

// DefaultHighwayClasses is the set of walkable street classes fetched from
// the way provider.
var DefaultHighwayClasses = []string{
	"residential", "tertiary", "secondary", "primary",
	"trunk", "unclassified", "living_street",
}

// DiscoveryChecker is the slice of the ledger the street cache needs to
// stamp explored flags onto served segments.
type DiscoveryChecker interface {
	IsDiscovered(segmentID string) bool
}

// StreetGraphConfig tunes the street cache.
type StreetGraphConfig struct {
	HighwayClasses  []string
	BufferFraction  float64
	CacheTTLSeconds int
}

// StreetGraphService serves decomposed street data around the walker's
// position. It fetches a bounding box from the way provider, keeps the
// result until the walker leaves the inner buffer rectangle of that box,
// and reuses previously fetched data when the provider is down.
type StreetGraphService struct {
	provider ports.WayProvider
	ledger   DiscoveryChecker
	cache    ports.CacheService
	cfg      StreetGraphConfig

	mu       sync.Mutex
	streets  []domain.Street
	region   *domain.BoundingRegion
	fetchSeq uint64
}

func NewStreetGraphService(provider ports.WayProvider, ledger DiscoveryChecker, cache ports.CacheService, cfg StreetGraphConfig) *StreetGraphService {
	if len(cfg.HighwayClasses) == 0 {
		cfg.HighwayClasses = DefaultHighwayClasses
	}
	if cfg.BufferFraction <= 0 || cfg.BufferFraction >= 1 {
		cfg.BufferFraction = 0.7
	}
	if cfg.CacheTTLSeconds <= 0 {
		cfg.CacheTTLSeconds = 600
	}
	return &StreetGraphService{
		provider: provider,
		ledger:   ledger,
		cache:    cache,
		cfg:      cfg,
	}
}

// EnsureLoaded returns street data covering pos, fetching a new bounding
// box of the given radius when the cached region no longer covers it.
// Explored flags are refreshed from the ledger on every call. Provider
// failures fall back to the previous cache, and a fetch that completes
// after a newer one has been issued is discarded, so the cache can only
// move forward. This method never fails the caller.
func (s *StreetGraphService) EnsureLoaded(ctx context.Context, pos domain.Position, radiusMeters float64) []domain.Street {
	s.mu.Lock()
	if s.region != nil && s.streets != nil && s.region.InBufferZone(pos) {
		s.refreshExploredLocked()
		streets := s.streets
		s.mu.Unlock()
		return streets
	}
	s.fetchSeq++
	token := s.fetchSeq
	s.mu.Unlock()

	bounds := geospatial.BoundingBox(pos, radiusMeters)

	ways, err := s.fetchWays(ctx, bounds)
	if err != nil {
		slog.Warn("street fetch failed, serving previous region",
			"error", err,
			"lat", pos.Lat, "lon", pos.Lon)
		return s.currentStreets()
	}

	streets := make([]domain.Street, 0, len(ways))
	for _, w := range ways {
		if street := domain.DecomposeWay(w); len(street.Segments) > 0 {
			streets = append(streets, street)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.fetchSeq {
		// A newer fetch has been issued since this one started; its result
		// wins regardless of completion order.
		slog.Debug("discarding stale street fetch", "token", token, "latest", s.fetchSeq)
		if s.streets == nil {
			return []domain.Street{}
		}
		s.refreshExploredLocked()
		return s.streets
	}

	s.streets = streets
	s.region = &domain.BoundingRegion{Bounds: bounds, Buffer: s.cfg.BufferFraction}
	s.refreshExploredLocked()
	return s.streets
}

// Invalidate drops the cached region so the next call refetches.
func (s *StreetGraphService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streets = nil
	s.region = nil
}

func (s *StreetGraphService) currentStreets() []domain.Street {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streets == nil {
		return []domain.Street{}
	}
	s.refreshExploredLocked()
	return s.streets
}

func (s *StreetGraphService) refreshExploredLocked() {
	if s.ledger == nil {
		return
	}
	for i := range s.streets {
		segs := s.streets[i].Segments
		for j := range segs {
			segs[j].Explored = s.ledger.IsDiscovered(segs[j].ID)
		}
	}
}

// fetchWays reads through the shared cache so multiple instances fetching
// the same bounding box hit the provider once per TTL.
func (s *StreetGraphService) fetchWays(ctx context.Context, bounds domain.Bounds) ([]domain.RawWay, error) {
	key := fmt.Sprintf("streets:bbox:%.5f:%.5f:%.5f:%.5f",
		bounds.South, bounds.West, bounds.North, bounds.East)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
			var ways []domain.RawWay
			if err := json.Unmarshal(data, &ways); err == nil {
				return ways, nil
			}
			slog.Warn("corrupt cached street data, refetching", "key", key)
		}
	}

	ways, err := s.provider.FetchWays(ctx, bounds, s.cfg.HighwayClasses)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(ways); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTLSeconds); err != nil {
				slog.Warn("failed to cache street data", "key", key, "error", err)
			}
		}
	}
	return ways, nil
}
