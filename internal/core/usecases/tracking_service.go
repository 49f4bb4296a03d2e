package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/core/ports"
	"github.com/wanderlust-app/wanderlust/internal/pkg/geospatial"
)

const dayFormat = "2006-01-02"

// TrackingConfig tunes the position-processing pipeline.
type TrackingConfig struct {
	SnapThresholdMeters float64
	SegmentBiasMeters   float64
	SearchRadiusMeters  float64
	XPPerMeter          float64
}

func (c *TrackingConfig) applyDefaults() {
	if c.SnapThresholdMeters <= 0 {
		c.SnapThresholdMeters = 25
	}
	if c.SegmentBiasMeters <= 0 {
		c.SegmentBiasMeters = 5
	}
	if c.SearchRadiusMeters <= 0 {
		c.SearchRadiusMeters = 200
	}
	if c.XPPerMeter <= 0 {
		c.XPPerMeter = DefaultXPPerMeter
	}
}

// TrackResult is what one processed position sample produced.
type TrackResult struct {
	Snap            domain.SnapEvent     `json:"snap"`
	NewSegment      bool                 `json:"new_segment"`
	XPAwarded       int                  `json:"xp_awarded"`
	TotalXP         int                  `json:"total_xp"`
	Status          string               `json:"status"`
	NewAchievements []domain.Achievement `json:"new_achievements,omitempty"`
}

// TrackingService runs the position pipeline: load streets around the
// sample, snap it, record first-time discoveries, award XP, and publish
// the resulting events. All ledger mutation flows through here, one
// sample at a time.
type TrackingService struct {
	streets      *StreetGraphService
	ledger       *ExplorationService
	achievements *AchievementService
	history      *HistoryService
	store        ports.StateStore
	events       ports.EventPublisher
	cfg          TrackingConfig

	mu             sync.Mutex
	tracking       bool
	route          []domain.Position
	currentSegment string
	sessionXP      int
	totalXP        int
	days           []string
}

func NewTrackingService(
	ctx context.Context,
	streets *StreetGraphService,
	ledger *ExplorationService,
	achievements *AchievementService,
	history *HistoryService,
	store ports.StateStore,
	events ports.EventPublisher,
	cfg TrackingConfig,
) *TrackingService {
	cfg.applyDefaults()
	t := &TrackingService{
		streets:      streets,
		ledger:       ledger,
		achievements: achievements,
		history:      history,
		store:        store,
		events:       events,
		cfg:          cfg,
	}
	t.loadProgress(ctx)
	return t
}

func (t *TrackingService) loadProgress(ctx context.Context) {
	if data, err := t.store.Get(ctx, stateKeyTotalXP); err == nil {
		if err := json.Unmarshal(data, &t.totalXP); err != nil {
			slog.Warn("stored XP corrupt, resetting to 0", "error", err)
			t.totalXP = 0
		}
	} else if !errors.Is(err, ports.ErrKeyNotFound) {
		slog.Warn("stored XP unreadable, starting at 0", "error", err)
	}

	if data, err := t.store.Get(ctx, stateKeyExplorationDays); err == nil {
		if err := json.Unmarshal(data, &t.days); err != nil {
			slog.Warn("exploration day log corrupt, resetting", "error", err)
			t.days = nil
		}
	} else if !errors.Is(err, ports.ErrKeyNotFound) {
		slog.Warn("exploration day log unreadable, starting empty", "error", err)
	}
}

// Start begins a tracking session and records today in the exploration
// day log.
func (t *TrackingService) Start(ctx context.Context) error {
	t.mu.Lock()
	t.tracking = true
	t.sessionXP = 0
	t.route = nil
	t.currentSegment = ""

	today := time.Now().UTC().Format(dayFormat)
	known := false
	for _, d := range t.days {
		if d == today {
			known = true
			break
		}
	}
	if !known {
		t.days = append(t.days, today)
	}
	days := make([]string, len(t.days))
	copy(days, t.days)
	t.mu.Unlock()

	if known {
		return nil
	}
	data, err := json.Marshal(days)
	if err != nil {
		return err
	}
	return t.store.Set(ctx, stateKeyExplorationDays, data)
}

// Stop ends the session. A route with at least two points is saved to the
// history; the saved route (nil otherwise) and the session XP are
// returned.
func (t *TrackingService) Stop(ctx context.Context) (*domain.SavedRoute, int, error) {
	t.mu.Lock()
	route := t.route
	sessionXP := t.sessionXP
	t.tracking = false
	t.route = nil
	t.currentSegment = ""
	t.mu.Unlock()

	if len(route) < 2 {
		return nil, sessionXP, nil
	}

	var distance float64
	for i := 1; i < len(route); i++ {
		distance += geospatial.Haversine(route[i-1], route[i])
	}
	saved, err := t.history.Save(ctx, route, distance)
	if err != nil {
		return nil, sessionXP, err
	}
	return &saved, sessionXP, nil
}

// IsTracking reports whether a session is active.
func (t *TrackingService) IsTracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracking
}

// CurrentRoute returns a copy of the walked polyline so far.
func (t *TrackingService) CurrentRoute() []domain.Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	route := make([]domain.Position, len(t.route))
	copy(route, t.route)
	return route
}

// HandlePosition processes one GPS sample through the full pipeline.
// Discovery happens whether or not a session is active; the walked route
// only accumulates during a session.
func (t *TrackingService) HandlePosition(ctx context.Context, p domain.Position) (*TrackResult, error) {
	streets := t.streets.EnsureLoaded(ctx, p, t.cfg.SearchRadiusMeters)

	res := &TrackResult{
		Snap: domain.SnapEvent{Raw: p, Distance: -1, OffRoad: true},
	}

	match := FindClosestSegment(p, streets, t.currentSegmentID(), t.cfg.SegmentBiasMeters)
	if match == nil || match.Distance >= t.cfg.SnapThresholdMeters {
		if match == nil {
			res.Status = "no streets nearby"
		} else {
			res.Snap.Distance = match.Distance
			res.Status = "off the street grid"
		}
		t.appendRoutePoint(p)
		t.publishSnap(ctx, res.Snap)
		res.TotalXP = t.TotalXP()
		return res, nil
	}

	snapped := match.SnapPoint
	res.Snap = domain.SnapEvent{
		Raw:        p,
		Snapped:    &snapped,
		SegmentID:  match.Segment.ID,
		StreetName: match.Street.Name,
		Distance:   match.Distance,
	}
	res.Status = "on " + match.Street.Name

	if match.Segment.ID != t.currentSegmentID() {
		reward, err := t.ledger.MarkDiscovered(ctx, domain.DiscoveredSegment{
			ID:         match.Segment.ID,
			Start:      match.Segment.Start,
			End:        match.Segment.End,
			StreetName: match.Street.Name,
		})
		if err != nil {
			return nil, err
		}
		if reward > 0 {
			xp := XPForLength(reward, t.cfg.XPPerMeter)
			res.NewSegment = true
			res.XPAwarded = xp
			res.Status = "New street discovered!"
			total := t.addXP(ctx, xp)
			t.publishDiscovery(ctx, &domain.DiscoveryEvent{
				SegmentID:  match.Segment.ID,
				StreetName: match.Street.Name,
				Position:   snapped,
				XPAwarded:  xp,
				TotalXP:    total,
			})
		}
		t.setCurrentSegment(match.Segment.ID)
	}

	t.appendRoutePoint(snapped)
	t.publishSnap(ctx, res.Snap)

	res.TotalXP = t.TotalXP()
	if t.achievements != nil {
		unlocked, err := t.achievements.Check(ctx, t.Stats())
		if err != nil {
			slog.Warn("failed to persist achievements", "error", err)
		}
		if len(unlocked) > 0 {
			res.NewAchievements = unlocked
			var bonus int
			for _, a := range unlocked {
				bonus += a.XPReward
			}
			res.TotalXP = t.addXP(ctx, bonus)
		}
	}
	return res, nil
}

// Stats assembles the current exploration statistics.
func (t *TrackingService) Stats() domain.ExplorationStats {
	t.mu.Lock()
	totalXP := t.totalXP
	sessionXP := t.sessionXP
	days := make([]string, len(t.days))
	copy(days, t.days)
	t.mu.Unlock()

	return domain.ExplorationStats{
		SegmentsExplored: t.ledger.Count(),
		TotalXP:          totalXP,
		SessionXP:        sessionXP,
		CurrentLevel:     LevelForXP(totalXP),
		ExplorationDays:  len(days),
		ConsecutiveDays:  consecutiveDays(days, time.Now().UTC()),
		TotalDistanceKm:  t.ledger.TotalDistanceMeters() / 1000,
	}
}

// TotalXP returns cumulative XP.
func (t *TrackingService) TotalXP() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalXP
}

// ResetAll wipes every piece of progress: ledger, achievements, history,
// XP, day log, and the cached street region.
func (t *TrackingService) ResetAll(ctx context.Context) error {
	if err := t.ledger.Reset(ctx); err != nil {
		return err
	}
	if t.achievements != nil {
		if err := t.achievements.Reset(ctx); err != nil {
			return err
		}
	}
	if t.history != nil {
		if err := t.history.Clear(ctx); err != nil {
			return err
		}
	}
	t.streets.Invalidate()

	t.mu.Lock()
	t.totalXP = 0
	t.sessionXP = 0
	t.days = nil
	t.currentSegment = ""
	t.route = nil
	t.mu.Unlock()

	if err := t.store.Delete(ctx, stateKeyTotalXP); err != nil {
		return err
	}
	return t.store.Delete(ctx, stateKeyExplorationDays)
}

func (t *TrackingService) currentSegmentID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentSegment
}

func (t *TrackingService) setCurrentSegment(id string) {
	t.mu.Lock()
	t.currentSegment = id
	t.mu.Unlock()
}

func (t *TrackingService) appendRoutePoint(p domain.Position) {
	t.mu.Lock()
	if t.tracking {
		t.route = append(t.route, p)
	}
	t.mu.Unlock()
}

// addXP bumps cumulative (and, during a session, session) XP and persists
// the new total. Persistence failures are logged, not fatal: the segment
// ledger is the durable record and XP can be rebuilt from it.
func (t *TrackingService) addXP(ctx context.Context, xp int) int {
	t.mu.Lock()
	t.totalXP += xp
	if t.tracking {
		t.sessionXP += xp
	}
	total := t.totalXP
	t.mu.Unlock()

	data, err := json.Marshal(total)
	if err == nil {
		err = t.store.Set(ctx, stateKeyTotalXP, data)
	}
	if err != nil {
		slog.Warn("failed to persist XP total", "error", err)
	}
	return total
}

func (t *TrackingService) publishSnap(ctx context.Context, event domain.SnapEvent) {
	if t.events == nil {
		return
	}
	if err := t.events.PublishSnap(ctx, &event); err != nil {
		slog.Warn("failed to publish snap event", "error", err)
	}
}

func (t *TrackingService) publishDiscovery(ctx context.Context, event *domain.DiscoveryEvent) {
	if t.events == nil {
		return
	}
	if err := t.events.PublishDiscovery(ctx, event); err != nil {
		slog.Warn("failed to publish discovery event", "error", err)
	}
}

// consecutiveDays counts the streak of calendar days ending today (or
// yesterday, so an unfinished day does not break the streak).
func consecutiveDays(days []string, now time.Time) int {
	if len(days) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		seen[d] = struct{}{}
	}

	cursor := now
	if _, ok := seen[cursor.Format(dayFormat)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
		if _, ok := seen[cursor.Format(dayFormat)]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := seen[cursor.Format(dayFormat)]; !ok {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
