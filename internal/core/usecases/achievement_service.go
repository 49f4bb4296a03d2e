package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/ports"
)

// catalogue is the static achievement set. IDs are persisted, so entries
// must never be renamed, only added.
var catalogue = []domain.Achievement{
	{ID: "first_steps", Name: "First Steps", Description: "Discover your first street segment", Category: "discovery",
		Criteria: domain.AchievementCriteria{Type: "segments_discovered", Target: 1}, XPReward: 10},
	{ID: "street_scout", Name: "Street Scout", Description: "Discover 10 street segments", Category: "discovery",
		Criteria: domain.AchievementCriteria{Type: "segments_discovered", Target: 10}, XPReward: 25},
	{ID: "block_walker", Name: "Block Walker", Description: "Discover 50 street segments", Category: "discovery",
		Criteria: domain.AchievementCriteria{Type: "segments_discovered", Target: 50}, XPReward: 50},
	{ID: "neighborhood_navigator", Name: "Neighborhood Navigator", Description: "Discover 100 street segments", Category: "discovery",
		Criteria: domain.AchievementCriteria{Type: "segments_discovered", Target: 100}, XPReward: 100},
	{ID: "city_cartographer", Name: "City Cartographer", Description: "Discover 500 street segments", Category: "discovery",
		Criteria: domain.AchievementCriteria{Type: "segments_discovered", Target: 500}, XPReward: 250},
	{ID: "urban_legend", Name: "Urban Legend", Description: "Discover 1000 street segments", Category: "discovery",
		Criteria: domain.AchievementCriteria{Type: "segments_discovered", Target: 1000}, XPReward: 500},

	{ID: "xp_novice", Name: "XP Novice", Description: "Earn 100 total XP", Category: "xp",
		Criteria: domain.AchievementCriteria{Type: "total_xp", Target: 100}, XPReward: 20},
	{ID: "xp_adept", Name: "XP Adept", Description: "Earn 1000 total XP", Category: "xp",
		Criteria: domain.AchievementCriteria{Type: "total_xp", Target: 1000}, XPReward: 100},
	{ID: "xp_master", Name: "XP Master", Description: "Earn 10000 total XP", Category: "xp",
		Criteria: domain.AchievementCriteria{Type: "total_xp", Target: 10000}, XPReward: 500},
	{ID: "power_walker", Name: "Power Walker", Description: "Earn 200 XP in a single session", Category: "xp",
		Criteria: domain.AchievementCriteria{Type: "session_xp", Target: 200}, XPReward: 50},

	{ID: "level_5", Name: "Seasoned Wanderer", Description: "Reach level 5", Category: "level",
		Criteria: domain.AchievementCriteria{Type: "level_reached", Target: 5}, XPReward: 100},
	{ID: "level_10", Name: "Expert Explorer", Description: "Reach level 10", Category: "level",
		Criteria: domain.AchievementCriteria{Type: "level_reached", Target: 10}, XPReward: 250},

	{ID: "first_outing", Name: "First Outing", Description: "Explore on your first day", Category: "dedication",
		Criteria: domain.AchievementCriteria{Type: "exploration_days", Target: 1}, XPReward: 10},
	{ID: "regular", Name: "Regular", Description: "Explore on 7 different days", Category: "dedication",
		Criteria: domain.AchievementCriteria{Type: "exploration_days", Target: 7}, XPReward: 50},
	{ID: "devoted", Name: "Devoted", Description: "Explore on 30 different days", Category: "dedication",
		Criteria: domain.AchievementCriteria{Type: "exploration_days", Target: 30}, XPReward: 200},
	{ID: "streak_3", Name: "On a Roll", Description: "Explore 3 days in a row", Category: "dedication",
		Criteria: domain.AchievementCriteria{Type: "consecutive_days", Target: 3}, XPReward: 30},
	{ID: "streak_7", Name: "Unstoppable", Description: "Explore 7 days in a row", Category: "dedication",
		Criteria: domain.AchievementCriteria{Type: "consecutive_days", Target: 7}, XPReward: 100},
}

// AchievementService tracks which catalogue entries have been unlocked.
type AchievementService struct {
	store ports.StateStore

	mu       sync.RWMutex
	unlocked map[string]struct{}
}

func NewAchievementService(ctx context.Context, store ports.StateStore) *AchievementService {
	s := &AchievementService{
		store:    store,
		unlocked: make(map[string]struct{}),
	}

	data, err := store.Get(ctx, stateKeyAchievements)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return s
	}
	if err != nil {
		slog.Warn("achievements unreadable, starting empty", "error", err)
		return s
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		slog.Warn("achievements corrupt, starting empty", "error", err)
		return s
	}
	for _, id := range ids {
		s.unlocked[id] = struct{}{}
	}
	return s
}

// Catalogue returns the full achievement list.
func (s *AchievementService) Catalogue() []domain.Achievement {
	out := make([]domain.Achievement, len(catalogue))
	copy(out, catalogue)
	return out
}

// Check unlocks every achievement whose criteria the stats now satisfy and
// returns the newly unlocked ones. Each achievement unlocks at most once.
func (s *AchievementService) Check(ctx context.Context, stats domain.ExplorationStats) ([]domain.Achievement, error) {
	var unlocked []domain.Achievement

	s.mu.Lock()
	for _, a := range catalogue {
		if _, done := s.unlocked[a.ID]; done {
			continue
		}
		if statValue(stats, a.Criteria.Type) >= a.Criteria.Target {
			s.unlocked[a.ID] = struct{}{}
			unlocked = append(unlocked, a)
		}
	}
	s.mu.Unlock()

	if len(unlocked) == 0 {
		return nil, nil
	}
	if err := s.persist(ctx); err != nil {
		return unlocked, err
	}
	return unlocked, nil
}

// Progress reports completion state for every catalogue entry.
func (s *AchievementService) Progress(stats domain.ExplorationStats) []domain.AchievementProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AchievementProgress, 0, len(catalogue))
	for _, a := range catalogue {
		_, done := s.unlocked[a.ID]
		current := statValue(stats, a.Criteria.Type)
		progress := 1.0
		if !done {
			progress = float64(current) / float64(a.Criteria.Target)
			if progress > 1 {
				progress = 1
			}
		}
		out = append(out, domain.AchievementProgress{
			Achievement: a,
			Unlocked:    done,
			Current:     current,
			Progress:    progress,
		})
	}
	return out
}

// Reset clears all unlocks.
func (s *AchievementService) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.unlocked = make(map[string]struct{})
	s.mu.Unlock()
	return s.store.Delete(ctx, stateKeyAchievements)
}

func (s *AchievementService) persist(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.unlocked))
	for id := range s.unlocked {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, stateKeyAchievements, data)
}

func statValue(stats domain.ExplorationStats, criteriaType string) int {
	switch criteriaType {
	case "segments_discovered":
		return stats.SegmentsExplored
	case "total_xp":
		return stats.TotalXP
	case "session_xp":
		return stats.SessionXP
	case "level_reached":
		return stats.CurrentLevel
	case "exploration_days":
		return stats.ExplorationDays
	case "consecutive_days":
		return stats.ConsecutiveDays
	default:
		return 0
	}
}
