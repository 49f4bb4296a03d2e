package usecases

import (
	"math"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/pkg/geospatial"
)

// FindClosestSegment snaps a position to the nearest street segment.
// The segment the walker is currently on (currentID, may be empty) gets a
// biasMeters head start in the comparison, which stops the snap from
// flapping between parallel streets on noisy GPS. The bias only affects
// selection; the returned Distance is the true distance.
//
// Ties go to the earlier segment in iteration order, which is stable
// because streets are served sorted by way ID. Returns nil when there are
// no segments at all.
func FindClosestSegment(p domain.Position, streets []domain.Street, currentID string, biasMeters float64) *domain.SegmentMatch {
	var best *domain.SegmentMatch
	bestScore := math.Inf(1)

	for i := range streets {
		street := streets[i]
		for _, seg := range street.Segments {
			dist := geospatial.DistanceToSegment(p, seg.Start, seg.End)

			score := dist
			if currentID != "" && seg.ID == currentID {
				score -= biasMeters
			}
			if score < bestScore {
				bestScore = score
				best = &domain.SegmentMatch{
					Segment:   seg,
					Street:    street,
					Distance:  dist,
					SnapPoint: geospatial.ProjectOntoSegment(p, seg.Start, seg.End),
				}
			}
		}
	}
	return best
}
