package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/pkg/geospatial"
)

// Route suggestion failures the client is expected to explain to the user.
var (
	ErrNoStreetsFound  = errors.New("no streets found in the area")
	ErrNoUndiscovered  = errors.New("no undiscovered streets in the area")
	ErrNoSuitableRoute = errors.New("could not generate a suitable route")
)

const (
	// Route assembly thresholds, all in meters unless noted.
	continuationReach  = 300.0 // max gap to the next linear segment
	clusterDensityDist = 300.0 // midpoint distance that makes segments "clustered"
	clusterMaxLeg      = 200.0 // max walking gap inside a cluster route
	walkWaypointGap    = 50.0  // gaps longer than this get an explicit walk waypoint
	nearbyStartDist    = 400.0 // density radius when picking a starting segment
	outAndBackConeDeg  = 60.0
	outAndBackMaxSegs  = 4

	linearTargetShare  = 0.7
	clusterTargetShare = 0.8

	// Scoring weights.
	weightDistanceFit = 0.4
	weightSegments    = 0.4
	weightXP          = 0.2
)

// RouteSuggestionService assembles walking routes over undiscovered
// segments. Three independent strategies each propose a route and the
// best-scoring one wins.
type RouteSuggestionService struct {
	streets    *StreetGraphService
	xpPerMeter float64
}

func NewRouteSuggestionService(streets *StreetGraphService, xpPerMeter float64) *RouteSuggestionService {
	if xpPerMeter <= 0 {
		xpPerMeter = DefaultXPPerMeter
	}
	return &RouteSuggestionService{streets: streets, xpPerMeter: xpPerMeter}
}

// Suggest builds a route near pos covering roughly targetKm of walking,
// considering undiscovered segments within radiusKm.
func (s *RouteSuggestionService) Suggest(ctx context.Context, pos domain.Position, radiusKm, targetKm float64) (*domain.RouteSuggestion, error) {
	streets := s.streets.EnsureLoaded(ctx, pos, radiusKm*1000)
	if len(streets) == 0 {
		return nil, ErrNoStreetsFound
	}

	candidates := buildCandidates(streets, pos, radiusKm*1000)
	if len(candidates) == 0 {
		return nil, ErrNoUndiscovered
	}

	targetMeters := targetKm * 1000
	var best *domain.RouteSuggestion
	bestScore := math.Inf(-1)
	for _, strategy := range []func([]domain.CandidateSegment, domain.Position, float64) *domain.RouteSuggestion{
		s.linearRoute,
		s.outAndBackRoute,
		s.clusterRoute,
	} {
		route := strategy(candidates, pos, targetMeters)
		if route == nil {
			continue
		}
		if score := scoreRoute(route, targetKm); score > bestScore {
			bestScore = score
			best = route
		}
	}
	if best == nil {
		return nil, ErrNoSuitableRoute
	}
	return best, nil
}

// buildCandidates collects the undiscovered segments within maxMeters of
// the user, closest first.
func buildCandidates(streets []domain.Street, pos domain.Position, maxMeters float64) []domain.CandidateSegment {
	var candidates []domain.CandidateSegment
	for _, street := range streets {
		for _, seg := range street.Segments {
			if seg.Explored {
				continue
			}
			mid := geospatial.Midpoint(seg.Start, seg.End)
			dist := geospatial.Haversine(pos, mid)
			if dist > maxMeters {
				continue
			}
			candidates = append(candidates, domain.CandidateSegment{
				StreetSegment:    seg,
				StreetName:       street.Name,
				Midpoint:         mid,
				DistanceFromUser: dist,
				LengthMeters:     geospatial.Haversine(seg.Start, seg.End),
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceFromUser != candidates[j].DistanceFromUser {
			return candidates[i].DistanceFromUser < candidates[j].DistanceFromUser
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates
}

// linearRoute chains segments end to start, preferring continuations that
// keep the current walking direction.
func (s *RouteSuggestionService) linearRoute(candidates []domain.CandidateSegment, pos domain.Position, targetMeters float64) *domain.RouteSuggestion {
	start, startIdx := bestStartingSegment(candidates)
	if startIdx < 0 {
		return nil
	}

	remaining := make([]domain.CandidateSegment, 0, len(candidates)-1)
	remaining = append(remaining, candidates[:startIdx]...)
	remaining = append(remaining, candidates[startIdx+1:]...)

	waypoints := []domain.Waypoint{
		{Position: pos, Instruction: "Start here", Kind: domain.WaypointStart},
		{Position: start.Start, Instruction: "Walk to " + start.StreetName, Kind: domain.WaypointWalk},
	}
	total := geospatial.Haversine(pos, start.Start)
	segments := []domain.CandidateSegment{start}
	current := start

	for {
		waypoints = append(waypoints, domain.Waypoint{
			Position:    current.End,
			Instruction: "Follow " + current.StreetName,
			Kind:        domain.WaypointFollow,
		})
		total += current.LengthMeters
		if total >= linearTargetShare*targetMeters {
			break
		}

		next, nextIdx := bestContinuation(current, remaining)
		if nextIdx < 0 {
			break
		}
		if gap := geospatial.Haversine(current.End, next.Start); gap > walkWaypointGap {
			waypoints = append(waypoints, domain.Waypoint{
				Position:    next.Start,
				Instruction: "Walk to " + next.StreetName,
				Kind:        domain.WaypointWalk,
			})
			total += gap
		}
		remaining = append(remaining[:nextIdx], remaining[nextIdx+1:]...)
		segments = append(segments, next)
		current = next
	}

	total += geospatial.Haversine(current.End, pos)
	waypoints = append(waypoints, domain.Waypoint{
		Position:    pos,
		Instruction: "Return to start",
		Kind:        domain.WaypointReturn,
	})

	return s.assemble(waypoints, segments, total)
}

// bestStartingSegment favors close segments in dense areas: more
// undiscovered neighbours nearby means less backtracking later.
func bestStartingSegment(candidates []domain.CandidateSegment) (domain.CandidateSegment, int) {
	bestIdx := -1
	bestScore := -1.0
	for i, c := range candidates {
		nearby := 0
		for j, other := range candidates {
			if i == j {
				continue
			}
			if geospatial.Haversine(c.Midpoint, other.Midpoint) < nearbyStartDist {
				nearby++
			}
		}
		score := float64(nearby+1) / (c.DistanceFromUser + 100)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return domain.CandidateSegment{}, -1
	}
	return candidates[bestIdx], bestIdx
}

// bestContinuation picks the reachable segment that best keeps the
// current direction, trading it off against the size of the gap.
func bestContinuation(current domain.CandidateSegment, remaining []domain.CandidateSegment) (domain.CandidateSegment, int) {
	heading := geospatial.Bearing(current.Start, current.End)

	bestIdx := -1
	bestScore := -1.0
	for i, c := range remaining {
		gap := geospatial.Haversine(current.End, c.Start)
		if gap > continuationReach {
			continue
		}
		dirScore := 1 - angleDiff(heading, geospatial.Bearing(c.Start, c.End))/180
		proximityScore := 1 - gap/continuationReach
		score := 0.7*dirScore + 0.3*proximityScore
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return domain.CandidateSegment{}, -1
	}
	return remaining[bestIdx], bestIdx
}

// outAndBackRoute walks out along a bearing cone and comes straight back
// to the origin; half the distance budget is reserved for the outbound leg.
func (s *RouteSuggestionService) outAndBackRoute(candidates []domain.CandidateSegment, pos domain.Position, targetMeters float64) *domain.RouteSuggestion {
	base := geospatial.Bearing(pos, candidates[0].Midpoint)

	var cone []domain.CandidateSegment
	for _, c := range candidates {
		if angleDiff(base, geospatial.Bearing(pos, c.Midpoint)) <= outAndBackConeDeg {
			cone = append(cone, c)
		}
	}
	if len(cone) == 0 {
		return nil
	}

	half := targetMeters / 2
	waypoints := []domain.Waypoint{
		{Position: pos, Instruction: "Start here", Kind: domain.WaypointStart},
	}
	var segments []domain.CandidateSegment
	var total float64
	cur := pos

	for _, c := range cone {
		walk := geospatial.Haversine(cur, c.Start)
		if total+walk+c.LengthMeters > half {
			break
		}
		if walk > walkWaypointGap {
			waypoints = append(waypoints, domain.Waypoint{
				Position:    c.Start,
				Instruction: "Walk to " + c.StreetName,
				Kind:        domain.WaypointWalk,
			})
		}
		waypoints = append(waypoints, domain.Waypoint{
			Position:    c.End,
			Instruction: "Follow " + c.StreetName,
			Kind:        domain.WaypointFollow,
		})
		total += walk + c.LengthMeters
		segments = append(segments, c)
		cur = c.End
		if len(segments) >= outAndBackMaxSegs {
			break
		}
	}
	if len(segments) == 0 {
		return nil
	}

	waypoints = append(waypoints,
		domain.Waypoint{Position: cur, Instruction: "Turn around", Kind: domain.WaypointTurnaround},
		domain.Waypoint{Position: pos, Instruction: "Return to start", Kind: domain.WaypointReturn},
	)
	return s.assemble(waypoints, segments, total+geospatial.Haversine(cur, pos))
}

// clusterRoute sweeps through a dense pocket of undiscovered segments,
// skipping anything that needs a long walk between segments.
func (s *RouteSuggestionService) clusterRoute(candidates []domain.CandidateSegment, pos domain.Position, targetMeters float64) *domain.RouteSuggestion {
	var dense []domain.CandidateSegment
	for i, c := range candidates {
		for j, other := range candidates {
			if i == j {
				continue
			}
			if geospatial.Haversine(c.Midpoint, other.Midpoint) < clusterDensityDist {
				dense = append(dense, c)
				break
			}
		}
	}
	if len(dense) == 0 {
		return nil
	}

	waypoints := []domain.Waypoint{
		{Position: pos, Instruction: "Start here", Kind: domain.WaypointStart},
	}
	var segments []domain.CandidateSegment
	var total float64
	cur := pos

	for _, c := range dense {
		if total >= clusterTargetShare*targetMeters {
			break
		}
		walk := geospatial.Haversine(cur, c.Start)
		if walk > clusterMaxLeg {
			continue
		}
		if walk > walkWaypointGap {
			waypoints = append(waypoints, domain.Waypoint{
				Position:    c.Start,
				Instruction: "Walk to " + c.StreetName,
				Kind:        domain.WaypointWalk,
			})
		}
		waypoints = append(waypoints, domain.Waypoint{
			Position:    c.End,
			Instruction: "Explore " + c.StreetName,
			Kind:        domain.WaypointFollow,
		})
		total += walk + c.LengthMeters
		segments = append(segments, c)
		cur = c.End
	}
	if len(segments) == 0 {
		return nil
	}
	return s.assemble(waypoints, segments, total)
}

func (s *RouteSuggestionService) assemble(waypoints []domain.Waypoint, segments []domain.CandidateSegment, totalMeters float64) *domain.RouteSuggestion {
	var xp float64
	for _, seg := range segments {
		xp += seg.LengthMeters * s.xpPerMeter
	}
	return &domain.RouteSuggestion{
		Waypoints:       waypoints,
		Segments:        segments,
		TotalDistanceKm: totalMeters / 1000,
		SegmentCount:    len(segments),
		EstimatedXP:     xp,
	}
}

// scoreRoute rates a route by how close it lands to the distance target,
// how many segments it discovers, and how much XP it is worth.
func scoreRoute(r *domain.RouteSuggestion, targetKm float64) float64 {
	distanceFit := 1 - math.Abs(r.TotalDistanceKm-targetKm)/targetKm
	segmentScore := float64(r.SegmentCount) / 10
	xpScore := r.EstimatedXP / 100
	return weightDistanceFit*distanceFit + weightSegments*segmentScore + weightXP*xpScore
}

// EstimateDuration formats a rough walking time at about 12 minutes per
// kilometer, matching a leisurely exploration pace.
func EstimateDuration(distanceKm float64) string {
	minutes := int(math.Round(distanceKm * 12))
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %02dmin", minutes/60, minutes%60)
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
